package plan

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Report writes a human-readable table of the mapping to w.
func (m *ResolvedMapping) Report(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s -> %s (%s to %s)\n", m.Source, m.Target, m.SourceShape, m.TargetShape)

	if m.Constructor != nil {
		fmt.Fprintf(tw, "  constructor\t%s\n", m.Constructor.Name)
	}

	if m.ReadOnly {
		fmt.Fprintf(tw, "  read-only\t\n")
	}

	if m.Transformer != nil {
		fmt.Fprintf(tw, "  value\t%s\n", m.Transformer)
	}

	if d := m.Discriminator; d != nil {
		for _, v := range d.Values() {
			fmt.Fprintf(tw, "  %s=%s\t%s\n", d.Property, v, d.Targets[v])
		}
	}

	for _, p := range m.Properties {
		if p.Ignored {
			fmt.Fprintf(tw, "  %s\tignored\t%s\n", p.Property, p.Origin)
			continue
		}

		writer := "-"
		if p.Write != nil {
			writer = p.Write.String()
		}

		if p.Argument != nil {
			writer = p.Argument.String()
		}

		fmt.Fprintf(tw, "  %s\t<- %s\t%s\t%s\t%s\n",
			p.Property, strings.Join(p.SourcePath, "."), p.Transformer, writer, p.Origin)
	}

	for _, u := range m.Unmapped {
		line := "  " + u.Property + "\tunmapped\t" + u.Reason
		if len(u.Suggestions) > 0 {
			line += "\tdid you mean " + strings.Join(u.Suggestions, ", ") + "?"
		}

		fmt.Fprintln(tw, line)
	}

	return tw.Flush()
}
