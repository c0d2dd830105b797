// Package cmd defines and implements the CLI commands for the itemwatch
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frontierlabs/itemwatch/internal/app"
	"github.com/frontierlabs/itemwatch/internal/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = app.New

// newRootCmd creates and configures the root command. Configuration is
// loaded and the service container built in PersistentPreRunE so every
// subcommand gets the same wiring.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itemwatch",
		Short: "Tracks the frontier of a monotonically numbered item space.",
		Long: `itemwatch watches a numbered content space whose items are published
in increasing ID order. It discovers the highest existing ID by probing
item pages, persists it as a checkpoint, and keeps it current as new
items appear.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment used when empty)")

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newLocateCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed the error; the logger may not exist yet.
		os.Exit(1)
	}
}
