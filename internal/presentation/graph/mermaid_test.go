package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/presentation/graph"
	"github.com/aretw0/implicate/pkg/domain"
)

func sampleRules() []implicate.RuleInfo {
	return []implicate.RuleInfo{
		{Descriptor: "[FilePath] -> [FileExt]", Inputs: []string{"FilePath"}, Outputs: []string{"FileExt"}},
		{Descriptor: "[FileExt] -> [Mime-Type]", Inputs: []string{"FileExt"}, Outputs: []string{"Mime-Type"}, Conditions: 2},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		rules    []implicate.RuleInfo
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:  "Types And Rules",
			rules: sampleRules(),
			contains: []string{
				"graph LR",
				"t_FilePath[\"FilePath\"]",
				"r1[[\"[FilePath] -> [FileExt]\"]]",
				"t_FilePath --> r1",
				"r1 --> t_FileExt",
			},
		},
		{
			name:  "Sanitized IDs",
			rules: sampleRules(),
			contains: []string{
				"t_Mime_Type[\"Mime-Type\"]",
				"r2 --> t_Mime_Type",
			},
		},
		{
			name:  "Conditional Edge",
			rules: sampleRules(),
			contains: []string{
				"t_FileExt -- \"when ×2\" --> r2",
			},
		},
		{
			name:  "Types Declared Once",
			rules: sampleRules(),
			excludes: []string{
				"t_FileExt[\"FileExt\"]\n    t_FileExt[\"FileExt\"]",
			},
		},
		{
			name:  "Overlay",
			rules: sampleRules(),
			overlay: &graph.GraphOverlay{
				ResolvedTypes: []string{"FilePath", "FilePath", "FileExt"},
				AppliedRules:  []string{"[FilePath] -> [FileExt]"},
				Target:        "FileExt",
			},
			contains: []string{
				"classDef resolved",
				"class t_FilePath resolved;",
				"class r1 applied;",
				"class t_FileExt target;",
			},
			excludes: []string{
				"class t_FileExt resolved;",
				"class r2 applied;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.rules, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() unexpectedly contains %q\nGot:\n%s", unwanted, got)
				}
			}
			if strings.Count(got, "t_FileExt[\"FileExt\"]") != 1 {
				t.Errorf("type FileExt declared %d times", strings.Count(got, "t_FileExt[\"FileExt\"]"))
			}
		})
	}
}

func TestOverlayFromTrace(t *testing.T) {
	trace := []domain.TraceRecord{
		{Event: domain.EventGetInvoked, Attrs: domain.TraceAttrs{Type: "FileExt"}},
		{Event: domain.EventGetReturned, Attrs: domain.TraceAttrs{Type: "FilePath", Found: true}},
		{Event: domain.EventImplicatorApplied, Attrs: domain.TraceAttrs{Implicator: "[FilePath] -> [FileExt]"}},
		{Event: domain.EventGetReturned, Attrs: domain.TraceAttrs{Type: "Missing", Found: false}},
		{Event: domain.EventGetReturned, Attrs: domain.TraceAttrs{Type: "FileExt", Found: true}},
	}

	o := graph.OverlayFromTrace("FileExt", trace)
	if o.Target != "FileExt" {
		t.Errorf("Target = %q", o.Target)
	}
	if strings.Join(o.ResolvedTypes, ",") != "FilePath,FileExt" {
		t.Errorf("ResolvedTypes = %v", o.ResolvedTypes)
	}
	if len(o.AppliedRules) != 1 || o.AppliedRules[0] != "[FilePath] -> [FileExt]" {
		t.Errorf("AppliedRules = %v", o.AppliedRules)
	}
}
