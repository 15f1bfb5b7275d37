package report

import (
	"fmt"
	"strings"
)

// Text is a plain-text projection of d, one fact per line.
func Text(d Display) string {
	var b strings.Builder
	b.WriteString(d.Title)
	if d.Date != "" {
		b.WriteString("  " + d.Date)
	}
	if d.Badge != "" {
		b.WriteString("  [" + d.Badge + "]")
	}
	b.WriteString("\n")
	for _, s := range d.Sections {
		b.WriteString("\n== " + s.Title + " ==\n")
		if s.Score != nil {
			fmt.Fprintf(&b, "%s: %s (%s)\n", s.Score.Label, s.Score.Value, s.Score.Band)
		}
		for _, st := range s.Stats {
			if st.Band != "" {
				fmt.Fprintf(&b, "%s: %s (%s)\n", st.Label, st.Value, st.Band)
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", st.Label, st.Value)
		}
		writeItems(&b, "", s.Items)
		for _, n := range s.Notes {
			if n.Label != "" {
				fmt.Fprintf(&b, "%s: %s\n", n.Label, n.Text)
				continue
			}
			b.WriteString(n.Text + "\n")
		}
		for _, a := range s.Alerts {
			fmt.Fprintf(&b, "[%s] %s: %s\n  Impact: %s\n", a.Level, a.Category, a.Description, a.Impact)
		}
		for _, c := range s.Corrections {
			fmt.Fprintf(&b, "[%s] %s\n  %s\n", c.Priority, c.Violation, c.Solution)
		}
		for _, c := range s.Cards {
			b.WriteString(c.Title + "\n")
			writeItems(&b, "  ", c.Items)
		}
		for _, l := range s.Lists {
			b.WriteString(l.Title + "\n")
			for _, e := range l.Entries {
				b.WriteString("  - " + e + "\n")
			}
		}
	}
	return b.String()
}

func writeItems(b *strings.Builder, indent string, items []Item) {
	for _, it := range items {
		fmt.Fprintf(b, "%s%s: %s\n", indent, it.Label, it.Value)
	}
}
