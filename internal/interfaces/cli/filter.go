package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/application/screening"
)

// cutoffFlags maps flag names onto descriptor names understood by
// screening.ParseKind.
var cutoffFlags = []struct{ name, usage string }{
	{"mw", "molecular weight cutoff"},
	{"logp", "LogP cutoff"},
	{"hbd", "hydrogen bond donor cutoff"},
	{"hba", "hydrogen bond acceptor cutoff"},
	{"rotb", "rotatable bond cutoff (Rule of Three only)"},
}

type filterOptions struct {
	rule    string
	grid    bool
	cutoffs map[string]*float64
}

// overrides collects the cutoff flags the user actually set.
func (o *filterOptions) overrides(cmd *cobra.Command) (screening.Cutoffs, error) {
	out := make(screening.Cutoffs)
	for _, f := range cutoffFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		kind, err := screening.ParseKind(f.name)
		if err != nil {
			return nil, err
		}
		out[kind] = *o.cutoffs[f.name]
	}
	return out, nil
}

func (o *filterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.rule, "rule", "r", string(screening.RuleFive), "rule to apply (ro5, ro3)")
	cmd.Flags().BoolVar(&o.grid, "grid", false, "print the grid columns instead of the full table")
	for _, f := range cutoffFlags {
		o.cutoffs[f.name] = cmd.Flags().Float64(f.name, 0, f.usage)
	}
}

func newFilterCmd() *cobra.Command {
	opts := &filterOptions{cutoffs: make(map[string]*float64, len(cutoffFlags))}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the compounds passing a rule",
		Long: "filter loads and annotates the dataset and prints the compounds whose every\n" +
			"descriptor lies strictly below its cutoff.  Cutoffs not given take the rule\n" +
			"defaults.",
		Example: "  druglike filter --rule ro5 --mw 400\n  druglike filter --rule ro3 --rotb 5 -o json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			name, err := screening.ParseRuleName(opts.rule)
			if err != nil {
				return err
			}
			overrides, err := opts.overrides(cmd)
			if err != nil {
				return err
			}

			app, err := newApp(cc)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			v, err := app.Service.Screen(ctx, name, overrides)
			if err != nil {
				return err
			}
			return printView(cmd, cc, v, opts.grid)
		},
	}
	opts.bind(cmd)
	return cmd
}

func printView(cmd *cobra.Command, cc *CLIContext, v *screening.View, grid bool) error {
	w := cmd.OutOrStdout()
	if cc.OutputFormat == OutputJSON {
		return printJSON(w, screening.ViewDTO(v, grid, cc.Config.Screening.ImageTemplate))
	}

	header, rows := screening.Table(v)
	if grid {
		header, rows = gridTable(v)
	}
	if cc.OutputFormat == OutputTSV {
		return printTSV(w, header, rows)
	}

	fmt.Fprintln(w, v.Title)
	fmt.Fprintf(w, "Cutoffs: %s\n", v.Cutoffs)
	if cc.Verbose {
		for _, s := range v.Steps {
			fmt.Fprintf(w, "  %s<%g: %d remaining\n", s.Kind, s.Bound, s.Remaining)
		}
	}
	fmt.Fprintf(w, "Shape: %s\n", v.ShapeString())
	_, err := fmt.Fprint(w, FormatTable(header, rows))
	return err
}

// gridTable flattens the grid into a table keyed by SMILES.
func gridTable(v *screening.View) ([]string, [][]string) {
	g := screening.BuildGrid(v, "")
	header := []string{screening.ColumnDisplaySMI}
	for _, c := range g.Columns {
		if c != screening.ColumnImage {
			header = append(header, c)
		}
	}
	rows := make([][]string, 0, len(g.Cells))
	for _, cell := range g.Cells {
		rows = append(rows, append([]string{cell.SMILES}, cell.Values...))
	}
	return header, rows
}
