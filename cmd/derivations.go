package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/geocopy/internal/derive"
)

var derivationsCmd = &cobra.Command{
	Use:   "derivations",
	Short: "List the named derivations and their columns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var tables []derive.Table
		for _, name := range derive.Names() {
			t, err := derive.Lookup(name)
			if err != nil {
				return err
			}
			tables = append(tables, t)
		}
		formatDerivations(cmd.OutOrStdout(), tables)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(derivationsCmd)
}

// formatDerivations writes a table of derivations to out.
func formatDerivations(out io.Writer, tables []derive.Table) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTABLE\tCOLUMNS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t-----------")

	for _, t := range tables {
		cols := make([]string, len(t.Schema))
		for i, c := range t.Schema {
			cols[i] = c.Name + " " + c.Type
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Table, strings.Join(cols, ", "), t.Description)
	}
	_ = w.Flush()
}
