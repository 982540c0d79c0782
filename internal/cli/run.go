package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/me/gauntlet/internal/plan"
	"github.com/me/gauntlet/internal/report"
	"github.com/me/gauntlet/internal/runner"
	"github.com/me/gauntlet/pkg/model"
)

func newRunCmd() *cobra.Command {
	var workers int
	var seed int64
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <plan-file>",
		Short: "Execute a run plan and record its history",
		Long: `Loads a YAML plan, drives its generator against a fleet of workers, and
journals every operation to the run database. Prints a summary report as
JSON on completion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			if workers > 0 {
				p.Workers = workers
			}
			if seed != 0 {
				p.Seed = seed
			}

			t, g, cl, nem, err := p.Build(logger)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run := &model.Run{
				ID:        t.ID,
				Name:      t.Name,
				Workers:   t.Workers,
				Seed:      t.Seed,
				State:     model.RunStateRunning,
				CreatedAt: t.CreatedAt,
			}
			if err := st.CreateRun(ctx, run); err != nil {
				return fmt.Errorf("recording run: %w", err)
			}

			journal, err := st.OpenJournal(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}

			logger.Info("run starting", "id", t.ID, "name", t.Name,
				"workers", t.Workers, "seed", t.Seed)

			h, runErr := runner.Run(ctx, runner.Options{
				Test:    t,
				Gen:     g,
				Client:  cl,
				Nemesis: nem,
				Journal: journal,
				Logger:  logger,
			})

			state := model.RunStateDone
			if runErr != nil {
				state = model.RunStateFailed
			}
			// Finishing the record must not be cut short by the same
			// signal that ended the run.
			if err := st.FinishRun(context.Background(), t.ID, state, len(h)); err != nil {
				logger.Error("finishing run record", "error", err, "id", t.ID)
			}
			if runErr != nil {
				return fmt.Errorf("run %s: %w", t.ID, runErr)
			}

			logger.Info("run complete", "id", t.ID, "ops", len(h))
			if quiet {
				fmt.Println(t.ID)
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report.Build(h))
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override the plan's worker count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Override the plan's random seed")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Print only the run ID")

	return cmd
}
