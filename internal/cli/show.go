package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/gauntlet/internal/report"
)

func newShowCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run's report, or its full history with --history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			run, err := st.GetRun(ctx, id)
			if err != nil {
				return fmt.Errorf("load run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("run %q not found", id)
			}

			h, err := st.History(ctx, id)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if full {
				return enc.Encode(h)
			}
			return enc.Encode(map[string]any{
				"run":    run,
				"report": report.Build(h),
			})
		},
	}

	cmd.Flags().BoolVar(&full, "history", false, "Print the raw operation history instead of the report")

	return cmd
}
