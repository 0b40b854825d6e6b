// Command seedfarm is a dashboard for a single-pool staking farm: it shows
// the connected wallet's balance, stake, reward and the pool APR, and submits
// approve, stake and withdraw transactions.
//
// Usage:
//
//	seedfarm setup --config seedfarm.yaml
//	seedfarm --config seedfarm.yaml          (terminal dashboard)
//	seedfarm serve --config seedfarm.yaml    (web dashboard)
//	seedfarm status --config seedfarm.yaml
//
// The wallet is read from the keystore directory named in the config, with
// the passphrase in $SEEDFARM_PASSPHRASE, or from a raw key in
// $SEEDFARM_PRIVATE_KEY.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadiminshakov/seedfarm/config"
	"github.com/vadiminshakov/seedfarm/internal"
	"github.com/vadiminshakov/seedfarm/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "seedfarm",
	Short:         "Staking farm dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to yaml config (defaults are used when empty)")
	rootCmd.AddCommand(tuiCmd, serveCmd, statusCmd, setupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type loggerFactory func(logger.LogOption) (*zap.Logger, error)

// bootstrap loads the config, builds the logger and wires the dashboard.
func bootstrap(ctx context.Context, newLogger loggerFactory) (*internal.Dashboard, config.Config, *zap.Logger, error) {
	conf, err := config.Get(configPath)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := newLogger(conf.Logger.ToLogOption())
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	d, err := internal.NewDashboard(ctx, conf, l)
	if err != nil {
		_ = l.Sync()
		return nil, config.Config{}, nil, err
	}
	return d, conf, l, nil
}
