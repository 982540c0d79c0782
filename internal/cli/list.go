package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(context.Background())
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Println("No runs found.")
				return nil
			}

			fmt.Printf("%-14s  %-20s  %-8s  %-8s  %-8s  %s\n", "ID", "NAME", "STATE", "WORKERS", "OPS", "CREATED")
			fmt.Printf("%-14s  %-20s  %-8s  %-8s  %-8s  %s\n", "--", "----", "-----", "-------", "---", "-------")
			for _, r := range runs {
				fmt.Printf("%-14s  %-20s  %-8s  %-8d  %-8d  %s\n",
					r.ID, r.Name, r.State, r.Workers, r.OpCount,
					r.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
