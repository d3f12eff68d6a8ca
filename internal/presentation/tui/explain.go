package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/observability"
)

// ExplainMarkdown renders a resolution trace as a markdown document.
func ExplainMarkdown(key domain.Key, value any, found bool, trace []domain.TraceRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Explain `%s`\n\n", key)
	if found {
		fmt.Fprintf(&b, "**Result:** `%v`%s\n\n", observability.DescribeValue(value), sourceSuffix(trace))
	} else {
		b.WriteString("**Result:** absent\n\n")
	}

	if len(trace) == 0 {
		return b.String()
	}

	b.WriteString("| # | Event | Attribute | Implicator | Detail |\n")
	b.WriteString("|---|-------|-----------|------------|--------|\n")
	for i, rec := range trace {
		a := rec.Attrs
		attr := ""
		if a.Type != "" {
			attr = strings.Repeat("· ", a.Depth) + a.Type
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, rec.Event, escapeCell(attr), escapeCell(a.Implicator), escapeCell(detail(rec)))
	}
	return b.String()
}

// ExplainText is the plain rendering used when stdout is not a terminal.
func ExplainText(key domain.Key, value any, found bool, trace []domain.TraceRecord) string {
	var b strings.Builder
	if found {
		fmt.Fprintf(&b, "%s = %v%s\n", key, observability.DescribeValue(value), sourceSuffix(trace))
	} else {
		fmt.Fprintf(&b, "%s is absent\n", key)
	}
	for _, rec := range trace {
		a := rec.Attrs
		fmt.Fprintf(&b, "%s%s", strings.Repeat("  ", a.Depth), rec.Event)
		if a.Type != "" {
			fmt.Fprintf(&b, " %s", a.Type)
		}
		if a.Implicator != "" {
			fmt.Fprintf(&b, " %s", a.Implicator)
		}
		if d := detail(rec); d != "" {
			fmt.Fprintf(&b, ": %s", d)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// sourceSuffix reads the source of the top-level lookup from the last return event.
func sourceSuffix(trace []domain.TraceRecord) string {
	for i := len(trace) - 1; i >= 0; i-- {
		if trace[i].Event == domain.EventGetReturned && trace[i].Attrs.Depth == 0 {
			return " (" + string(trace[i].Attrs.Source) + ")"
		}
	}
	return ""
}

func detail(rec domain.TraceRecord) string {
	a := rec.Attrs
	switch {
	case a.Reason != "":
		return a.Reason
	case rec.Event == domain.EventGetReturned && !a.Found:
		return string(a.Source)
	case rec.Event == domain.EventGetReturned || rec.Event == domain.EventImplicatorPut:
		s := fmt.Sprintf("%v", observability.DescribeValue(a.Value))
		if a.Source != "" {
			s += " (" + string(a.Source) + ")"
		}
		return s
	default:
		return ""
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
