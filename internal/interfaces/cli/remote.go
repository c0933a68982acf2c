package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/client"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

// clientLogger forwards SDK log lines to the CLI logger.
type clientLogger struct{ l logging.Logger }

func (c clientLogger) Debugf(format string, args ...interface{}) { c.l.Debug(fmt.Sprintf(format, args...)) }
func (c clientLogger) Infof(format string, args ...interface{})  { c.l.Info(fmt.Sprintf(format, args...)) }
func (c clientLogger) Errorf(format string, args ...interface{}) { c.l.Error(fmt.Sprintf(format, args...)) }

func newRemoteCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running druglike server",
		Long: "remote runs the same queries as filter and annotate against the HTTP API of a\n" +
			"druglike server instead of loading the dataset locally.",
	}
	cmd.PersistentFlags().StringVar(&server, "server", "", "server base URL (default: http://localhost:<server.port>)")

	connect := func(cmd *cobra.Command) (*CLIContext, *client.Client, error) {
		cc, err := GetCLIContext(cmd)
		if err != nil {
			return nil, nil, err
		}
		base := server
		if base == "" {
			base = fmt.Sprintf("http://localhost:%d", cc.Config.Server.Port)
		}
		c, err := client.NewClient(base, client.WithLogger(clientLogger{cc.Logger.Named("client")}))
		return cc, c, err
	}

	cmd.AddCommand(
		newRemoteRulesCmd(connect),
		newRemoteScreenCmd(connect),
		newRemoteDatasetCmd(connect),
	)
	return cmd
}

type connectFunc func(cmd *cobra.Command) (*CLIContext, *client.Client, error)

func newRemoteRulesCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the server's rules and their cutoff ranges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, c, err := connect(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			rules, err := c.Rules(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cc.OutputFormat == OutputJSON {
				return printJSON(w, rules)
			}
			header := []string{"RULE", "DESCRIPTOR", "MIN", "MAX", "STEP", "DEFAULT"}
			var rows [][]string
			for _, r := range rules {
				for _, s := range r.Sliders {
					rows = append(rows, []string{r.Name, s.Kind,
						fmt.Sprintf("%g", s.Min), fmt.Sprintf("%g", s.Max),
						fmt.Sprintf("%g", s.Step), fmt.Sprintf("%g", s.Default)})
				}
			}
			if cc.OutputFormat == OutputTSV {
				return printTSV(w, header, rows)
			}
			_, err = fmt.Fprint(w, FormatTable(header, rows))
			return err
		},
	}
}

func newRemoteScreenCmd(connect connectFunc) *cobra.Command {
	opts := &filterOptions{cutoffs: make(map[string]*float64, len(cutoffFlags))}
	cmd := &cobra.Command{
		Use:     "screen",
		Short:   "Apply a rule on the server",
		Example: "  druglike remote screen --server http://10.0.0.5:8080 --rule ro3 --logp 2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := screening.ParseRuleName(opts.rule)
			if err != nil {
				return err
			}
			overrides, err := opts.overrides(cmd)
			if err != nil {
				return err
			}
			cc, c, err := connect(cmd)
			if err != nil {
				return err
			}

			req := dto.ScreenRequest{Cutoffs: make(map[string]float64, len(overrides)), IncludeGrid: opts.grid}
			for k, v := range overrides {
				req.Cutoffs[string(k)] = v
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			v, err := c.Screen(ctx, string(name), req)
			if err != nil {
				return err
			}
			return printRemoteView(cmd, cc, v, opts.grid)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRemoteDatasetCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate",
		Short: "Fetch the annotated dataset from the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, c, err := connect(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			ds, err := c.Dataset(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cc.OutputFormat == OutputJSON {
				return printJSON(w, ds)
			}
			header, rows := compoundTable(ds.Columns, ds.Compounds)
			if cc.OutputFormat == OutputTSV {
				return printTSV(w, header, rows)
			}
			fmt.Fprintf(w, "Shape: (%d, %d)\n", ds.Shape[0], ds.Shape[1])
			_, err = fmt.Fprint(w, FormatTable(header, rows))
			return err
		},
	}
}

func printRemoteView(cmd *cobra.Command, cc *CLIContext, v *dto.View, grid bool) error {
	w := cmd.OutOrStdout()
	if cc.OutputFormat == OutputJSON {
		return printJSON(w, v)
	}

	header, rows := compoundTable(v.Columns, v.Compounds)
	if grid && v.Grid != nil {
		header = []string{screening.ColumnDisplaySMI}
		for _, c := range v.Grid.Columns {
			if c != screening.ColumnImage {
				header = append(header, c)
			}
		}
		rows = make([][]string, 0, len(v.Grid.Cells))
		for _, cell := range v.Grid.Cells {
			rows = append(rows, append([]string{cell.SMILES}, cell.Values...))
		}
	}
	if cc.OutputFormat == OutputTSV {
		return printTSV(w, header, rows)
	}

	fmt.Fprintln(w, v.Title)
	fmt.Fprintf(w, "Cutoffs: %s\n", wireCutoffs(v.Cutoffs))
	if cc.Verbose {
		for _, s := range v.Steps {
			fmt.Fprintf(w, "  %s<%g: %d remaining\n", s.Kind, s.Bound, s.Remaining)
		}
	}
	fmt.Fprintf(w, "Shape: (%d, %d)\n", v.Shape[0], v.Shape[1])
	_, err := fmt.Fprint(w, FormatTable(header, rows))
	return err
}

// wireCutoffs renders wire cutoffs in descriptor order, falling back to
// name order for descriptors this build does not know.
func wireCutoffs(m map[string]float64) string {
	c := make(screening.Cutoffs, len(m))
	var unknown []string
	for name, v := range m {
		k, err := screening.ParseKind(name)
		if err != nil {
			unknown = append(unknown, fmt.Sprintf("%s<%g", name, v))
			continue
		}
		c[k] = v
	}
	sort.Strings(unknown)
	return strings.TrimSpace(c.String() + " " + strings.Join(unknown, " "))
}

func compoundTable(columns []string, compounds []dto.Compound) ([]string, [][]string) {
	rows := make([][]string, 0, len(compounds))
	for _, c := range compounds {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = compoundCell(c, col)
		}
		rows = append(rows, row)
	}
	return columns, rows
}

func compoundCell(c dto.Compound, column string) string {
	if c.Descriptors != nil {
		if p, ok := descriptorValue(c.Descriptors, molecule.Kind(column)); ok {
			if p == nil {
				return "NaN"
			}
			return screening.FormatDescriptor(molecule.Kind(column), *p)
		}
	}
	return c.Fields[column]
}

func descriptorValue(d *dto.Descriptors, k molecule.Kind) (*float64, bool) {
	switch k {
	case molecule.KindMolWt:
		return d.MW, true
	case molecule.KindLogP:
		return d.LogP, true
	case molecule.KindHBondDonors:
		return d.NumHDonors, true
	case molecule.KindHBondAcceptors:
		return d.NumHAcceptors, true
	case molecule.KindRotatableBonds:
		return d.NumRotatableBonds, true
	}
	return nil, false
}
