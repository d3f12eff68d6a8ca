// Package runtime implements the resolution engine: implicator registration,
// ordered rule trial and the per-attempt scope handed to rule functions.
package runtime
