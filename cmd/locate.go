package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/frontier"
	"github.com/frontierlabs/itemwatch/internal/item"
)

// newLocateCmd creates the 'locate' subcommand: a one-shot frontier
// discovery that prints the result and exits without touching the loop.
func newLocateCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Finds the current frontier once and prints it",
		Long: `Runs frontier discovery from the configured seed (or --seed) and prints
the highest existing ID to stdout. The checkpoint store is not written;
use this to verify connectivity and classification before watching.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			oracle, err := buildOracle(a)
			if err != nil {
				return err
			}

			seedID := item.ID(a.Cfg.Watch.SeedID)
			if seed > 0 {
				seedID = item.ID(seed)
			}

			locator := frontier.NewLocator(oracle, a.Cfg.Watch.GapBudget, a.Logger)
			found := locator.Locate(cmd.Context(), seedID)
			if found == 0 {
				a.Logger.Warn("no frontier found", zap.Stringer("seed", seedID))
			}
			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the discovery seed ID")
	return cmd
}
