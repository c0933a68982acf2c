package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/interfaces/tui"
)

func newTUICmd() *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal dashboard",
		Long: "tui shows one panel per rule.  Tab switches panels, up and down pick a cutoff,\n" +
			"left and right move it by one slider step, r resets the panel and q quits.",
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

			return tui.Run(cmd.Context(), app.Service, tui.RunConfig{
				AltScreen: !inline,
				Input:     cmd.InOrStdin(),
				Output:    cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "render inline instead of in the alternate screen")
	return cmd
}
