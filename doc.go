/*
Package implicate is a typed attribute store with lazy, rule-based derivation.

Callers ask for the value of a (type, id) pair. If no value was explicitly
recorded, the registry searches the derivation rules ("implicators") that can
compute it from other attributes of the same id, resolving their inputs
recursively. Derived values live only for the duration of one Get; explicit
values persist in the configured storage backend.

# Concept

An implicator declares the attribute types it reads and the types it writes.
It carries one or more rule functions: all but the last are conditions that
may Cancel the attempt, and the last is the producer that Puts outputs.
Implicators registered for the same output type are tried in registration
order and the first applicable one wins.

# Usage

	package main

	import (
		"context"
		"fmt"
		"path/filepath"

		"github.com/aretw0/implicate"
	)

	func main() {
		ctx := context.Background()
		reg := implicate.New()

		_ = reg.Put(ctx, "FilePath", "doc-1", "report.json5")

		reg.MustImply([]string{"FilePath"}, []string{"FileExt"},
			func(ctx context.Context, s implicate.Scope) error {
				path, err := s.Get("FilePath")
				if err != nil {
					return err
				}
				s.Put("FileExt", filepath.Ext(path.(string)))
				return nil
			},
		)

		ext, ok, _ := reg.Get(ctx, "FileExt", "doc-1")
		fmt.Println(ext, ok) // .json5 true
	}

Storage backends live under pkg/adapters (memory, redis, file) and compose
into delegation chains with pkg/persistence/middleware.
*/
package implicate
