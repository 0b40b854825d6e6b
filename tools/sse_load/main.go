// Command sse_load opens many subscriptions to the dashboard view stream
// and reports how many views arrive and decode.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
)

type loadOptions struct {
	url         string
	connections int
	duration    time.Duration
	rampUp      time.Duration
}

type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	views       atomic.Int64
	badViews    atomic.Int64
}

func main() {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:          "sse_load",
		Short:        "Load test the dashboard view stream",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:8080/view/stream", "view stream URL")
	cmd.Flags().IntVar(&opts.connections, "conns", 500, "number of concurrent subscriptions")
	cmd.Flags().DurationVar(&opts.duration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	cmd.Flags().DurationVar(&opts.rampUp, "ramp", 0, "spread connection starts across this window")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts loadOptions) error {
	if opts.connections <= 0 {
		return fmt.Errorf("invalid conns: %d", opts.connections)
	}
	if opts.rampUp == 0 && opts.connections > 100 {
		opts.rampUp = max(time.Duration(opts.connections/500)*time.Second, time.Second)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting view stream load",
		zap.String("url", opts.url),
		zap.Int("conns", opts.connections),
		zap.Duration("duration", opts.duration),
		zap.Duration("ramp", opts.rampUp),
	)

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	client := &http.Client{Transport: &http.Transport{
		MaxConnsPerHost:     opts.connections + 100,
		MaxIdleConnsPerHost: opts.connections + 100,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}}

	var (
		c     counters
		wg    sync.WaitGroup
		start = time.Now()
	)

	go report(ctx, logger, &c, start)

	interval := opts.rampUp / time.Duration(opts.connections)
	for i := 0; i < opts.connections && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			subscribe(ctx, client, opts.url, &c)
		}()
	}
	wg.Wait()

	elapsed := max(time.Since(start), time.Millisecond)
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d views=%d bad_views=%d elapsed=%s views/s=%.2f\n",
		c.connected.Load(), c.connectErrs.Load(), c.streamErrs.Load(), c.views.Load(), c.badViews.Load(),
		elapsed.Truncate(time.Millisecond), float64(c.views.Load())/elapsed.Seconds(),
	)
	return nil
}

func subscribe(ctx context.Context, client *http.Client, url string, c *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.connectErrs.Add(1)
		return
	}
	c.connected.Add(1)

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				c.streamErrs.Add(1)
			}
			return
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var v viewmodel.View
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			c.badViews.Add(1)
			continue
		}
		c.views.Add(1)
	}
}

func report(ctx context.Context, logger *zap.Logger, c *counters, start time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("status",
				zap.Int64("connected", c.connected.Load()),
				zap.Int64("connect_errs", c.connectErrs.Load()),
				zap.Int64("stream_errs", c.streamErrs.Load()),
				zap.Int64("views", c.views.Load()),
				zap.Duration("elapsed", time.Since(start).Truncate(time.Second)),
			)
		}
	}
}
