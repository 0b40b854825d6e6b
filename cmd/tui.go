package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vadiminshakov/seedfarm/internal/tui"
	"github.com/vadiminshakov/seedfarm/pkg/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal dashboard (default)",
	Long: `Run the terminal dashboard.

Keys:
  c  connect wallet
  d  disconnect wallet
  a  approve SEED
  s  stake SEED
  x  withdraw stake and reward
  q  quit

Logs go to logger.log_dir only, the screen belongs to the dashboard.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, _, l, err := bootstrap(ctx, logger.NewFileOnly)
	if err != nil {
		return err
	}
	defer l.Sync()
	defer d.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	err = tui.Run(ctx, d.Model, d.Session, d.Controller)
	cancel()
	<-done
	return err
}
