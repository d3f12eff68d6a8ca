/*
Package dsl provides a fluent builder for registering implicate rules.

It keeps rule definitions readable when several conditions guard a
producer, and lets a set of rules be declared once and registered into
many registries.

Example usage:

	package main

	import (
		"context"
		"path/filepath"

		"github.com/aretw0/implicate"
		"github.com/aretw0/implicate/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Rule("extension").
			From("FilePath").
			To("FileExt").
			When(func(ctx context.Context, s implicate.Scope) error {
				if p, _ := s.Get("FilePath"); p == "" {
					s.Cancel()
				}
				return nil
			}).
			Do(func(ctx context.Context, s implicate.Scope) error {
				p, err := s.Get("FilePath")
				if err != nil {
					return err
				}
				s.Put("FileExt", filepath.Ext(p.(string)))
				return nil
			})

		reg := implicate.New()
		if _, err := b.Register(reg); err != nil {
			panic(err)
		}
	}
*/
package dsl
