/*
Package ports defines the driven ports (interfaces) for the implicate engine.

These interfaces decouple the resolution engine from external implementations,
allowing it to work with various storage backends and tracing sinks.

# Key Interfaces

  - AttributeStore: Supplies and records explicit attribute values.
  - Tracer: Receives structured lifecycle events emitted during resolution.
*/
package ports
