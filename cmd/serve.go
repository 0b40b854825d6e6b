package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/seedfarm/internal/web"
	"github.com/vadiminshakov/seedfarm/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Serve the dashboard over HTTP.

Endpoints:
  GET  /view               current view as JSON
  GET  /view/stream        server-sent events, one per change
  POST /wallet/connect     connect the configured wallet
  POST /wallet/disconnect
  POST /actions/approve
  POST /actions/stake      amount=<decimal tokens>
  POST /actions/exit

With web.domains set the server obtains certificates from Let's Encrypt.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, conf, l, err := bootstrap(cmd.Context(), logger.New)
	if err != nil {
		return err
	}
	defer l.Sync()
	defer d.Close()

	server := web.NewServer(conf.Web.Addr, d.Model, d.Session, d.Controller, l.Named("web"))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return d.Run(ctx)
	})
	g.Go(func() error {
		return server.Start(ctx, conf.Web.Domains, conf.Web.CertCacheDir)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
