package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/application/screening"
)

func newAnnotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "annotate",
		Short: "Print the dataset with its five descriptors",
		Long: "annotate loads the dataset and appends MW, LogP, NumHDonors, NumHAcceptors and\n" +
			"NumRotatableBonds to every compound.  Compounds whose SMILES cannot be parsed\n" +
			"show NaN.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
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
			ds, err := app.Service.Annotated(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			header, rows := screening.DatasetTable(ds)
			switch cc.OutputFormat {
			case OutputJSON:
				return printJSON(w, screening.DatasetDTO(ds))
			case OutputTSV:
				return printTSV(w, header, rows)
			}
			fmt.Fprintf(w, "Shape: (%d, %d)\n", ds.Len(), len(header))
			_, err = fmt.Fprint(w, FormatTable(header, rows))
			return err
		},
	}
}
