/*
Package domain contains the core vocabulary of the implicate engine.

It defines what an attribute is, what a rule function sees while it runs, the
trace events the engine emits and the sentinel errors shared by every layer.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Key: A (type, id) pair naming a single fact about an entity.
  - Scope: The capability handed to rule functions during one implicator attempt.
  - RuleFunc: A condition or producer registered through Imply.
  - TraceAttrs: The structured payload attached to every trace event.
*/
package domain
