package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/pkg/domain"
)

// GraphOverlay contains resolution data to visualize on the graph.
type GraphOverlay struct {
	ResolvedTypes []string
	AppliedRules  []string
	Target        string
}

// OverlayFromTrace collects what a resolution touched. target is the
// requested attribute type.
func OverlayFromTrace(target string, trace []domain.TraceRecord) *GraphOverlay {
	o := &GraphOverlay{Target: target}
	for _, rec := range trace {
		switch {
		case rec.Event == domain.EventGetReturned && rec.Attrs.Found:
			o.ResolvedTypes = append(o.ResolvedTypes, rec.Attrs.Type)
		case rec.Event == domain.EventImplicatorApplied:
			o.AppliedRules = append(o.AppliedRules, rec.Attrs.Implicator)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the rule graph.
// Attribute types are rectangles, implicators are [[subroutines]] with an
// edge from every input and to every output. Rules with conditions get a
// labelled edge.
func GenerateMermaid(rules []implicate.RuleInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	declared := make(map[string]bool)
	declare := func(typ string) string {
		safeID := typeID(typ)
		if !declared[safeID] {
			declared[safeID] = true
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, escapeLabel(typ)))
		}
		return safeID
	}

	ruleIDs := make(map[string][]string)
	for i, rule := range rules {
		ruleID := fmt.Sprintf("r%d", i+1)
		ruleIDs[rule.Descriptor] = append(ruleIDs[rule.Descriptor], ruleID)
		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", ruleID, escapeLabel(rule.Descriptor)))

		arrow := "-->"
		if rule.Conditions > 0 {
			arrow = fmt.Sprintf("-- \"when ×%d\" -->", rule.Conditions)
		}
		for _, in := range rule.Inputs {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", declare(in), arrow, ruleID))
		}
		for _, out := range rule.Outputs {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", ruleID, declare(out)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef resolved fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef applied fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, typ := range overlay.ResolvedTypes {
			safeID := typeID(typ)
			if declared[safeID] && !seen[safeID] && typ != overlay.Target {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s resolved;\n", safeID))
			}
		}
		for _, desc := range overlay.AppliedRules {
			for _, ruleID := range ruleIDs[desc] {
				if !seen[ruleID] {
					seen[ruleID] = true
					sb.WriteString(fmt.Sprintf("    class %s applied;\n", ruleID))
				}
			}
		}
		if overlay.Target != "" && declared[typeID(overlay.Target)] {
			sb.WriteString(fmt.Sprintf("    class %s target;\n", typeID(overlay.Target)))
		}
	}

	return sb.String()
}

func typeID(typ string) string {
	return "t_" + sanitizeMermaidID(typ)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
