/*
Package observability provides tracers for monitoring the implicate engine.

Every tracer implements ports.Tracer. Nop is the default; LogTracer writes
debug records through log/slog; MetricsTracer exports Prometheus counters; and
Recorder keeps events in memory for introspection (explain) and tests.
Tracers compose with Multi.
*/
package observability
