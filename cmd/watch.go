package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frontierlabs/itemwatch/internal/api"
	"github.com/frontierlabs/itemwatch/internal/app"
	"github.com/frontierlabs/itemwatch/internal/classify"
	"github.com/frontierlabs/itemwatch/internal/clock/system"
	"github.com/frontierlabs/itemwatch/internal/fetch"
	"github.com/frontierlabs/itemwatch/internal/frontier"
	"github.com/frontierlabs/itemwatch/internal/item"
	"github.com/frontierlabs/itemwatch/internal/probe"
)

// newWatchCmd creates and configures the 'watch' subcommand, the long-running
// frontier tracker.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watches the item space and tracks its frontier",
		Long: `Boots the frontier from the persisted checkpoint (or rediscovers it
from the seed), then polls for newly published items, persisting and
announcing each confirmed advance. Runs until the configured target is
reached or the process is signaled.`,

		RunE: runWatchCommand,
	}
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := a.Cfg
	logger := a.Logger

	oracle, err := buildOracle(a)
	if err != nil {
		return err
	}

	watcher := frontier.NewWatcher(
		oracle,
		frontier.NewLocator(oracle, cfg.Watch.GapBudget, logger),
		frontier.NewAdvancer(oracle, int(cfg.Watch.AdvanceWindow), cfg.Watch.GapBudget, logger),
		frontier.NewLogNotifier(frontier.NotifyConfig{
			StopAt:        item.ID(cfg.Watch.StopAt),
			SwitchAtLeft:  item.ID(cfg.Notify.SwitchAtLeft),
			Every:         item.ID(cfg.Notify.Every),
			AlwaysPerItem: cfg.Notify.AlwaysPerItem,
		}, logger),
		a.Store,
		system.NewSleeper(),
		frontier.Config{
			StartID:     item.ID(cfg.Watch.StartID),
			SeedID:      item.ID(cfg.Watch.SeedID),
			StopAt:      item.ID(cfg.Watch.StopAt),
			Interval:    cfg.Interval(),
			ForceReseed: cfg.Watch.ForceReseed,
			PollLog:     cfg.Watch.PollLog,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Enabled {
		shutdown := startStatusServer(a, watcher.Frontier)
		defer shutdown()
	}

	if err := watcher.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("watch interrupted, shutting down")
			return nil
		}
		return fmt.Errorf("run watcher: %w", err)
	}
	return nil
}

// buildOracle assembles the fetch/classify/probe pipeline shared by the
// watch and locate commands.
func buildOracle(a *app.App) (*probe.Oracle, error) {
	cfg := a.Cfg

	client, err := fetch.New(fetch.Config{
		BaseURL:        cfg.HTTP.BaseURL,
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.Timeout(),
	}, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("init fetch client: %w", err)
	}

	prober := probe.NewProber(
		client,
		classify.Default(),
		probe.NewThrottle(cfg.Throttle()),
		probe.RetryPolicy{MaxAttempts: cfg.Watch.MaxRetries},
		a.Logger,
		probe.WithProbeLog(cfg.Watch.ProbeLog),
	)
	return probe.NewOracle(prober, a.Logger), nil
}

// startStatusServer serves /healthz, /status and /metrics in the background.
// The returned func shuts the listener down and blocks until it has drained.
func startStatusServer(a *app.App, frontierFn api.FrontierFunc) func() {
	srv := api.NewServer(frontierFn, a.RunID, item.ID(a.Cfg.Watch.StopAt), a.Logger)
	httpSrv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(a.Cfg.Server.Port)),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Logger.Info("status server listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("status server failed", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("status server shutdown", zap.Error(err))
		}
		<-done
	}
}
