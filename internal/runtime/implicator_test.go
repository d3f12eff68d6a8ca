package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/implicate/internal/runtime"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImplicator(t *testing.T) {
	noop := func(ctx context.Context, s domain.Scope) error { return nil }

	inputs := []string{"FilePath", "Owner"}
	imp, err := runtime.NewImplicator(inputs, []string{"Label"}, noop, noop, noop)
	require.NoError(t, err)

	assert.Equal(t, []string{"FilePath", "Owner"}, imp.InputTypes())
	assert.Equal(t, []string{"Label"}, imp.OutputTypes())
	assert.Equal(t, 2, imp.Conditions())
	assert.Equal(t, "[FilePath, Owner] -> [Label]", imp.String())

	// Mutating the caller's slice must not change the rule
	inputs[0] = "Changed"
	assert.Equal(t, "FilePath", imp.InputTypes()[0])

	// Nor must mutating the returned copy
	got := imp.OutputTypes()
	got[0] = "Changed"
	assert.Equal(t, "Label", imp.OutputTypes()[0])
}

func TestNewImplicator_Usage(t *testing.T) {
	noop := func(ctx context.Context, s domain.Scope) error { return nil }

	tests := []struct {
		name    string
		outputs []string
		fns     []domain.RuleFunc
	}{
		{"no outputs", nil, []domain.RuleFunc{noop}},
		{"no functions", []string{"b"}, nil},
		{"nil producer", []string{"b"}, []domain.RuleFunc{noop, nil}},
		{"nil condition", []string{"b"}, []domain.RuleFunc{nil, noop}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.NewImplicator([]string{"a"}, tt.outputs, tt.fns...)
			assert.ErrorIs(t, err, domain.ErrUsage)
		})
	}
}
