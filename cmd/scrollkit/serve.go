package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrollkit-dev/scrollkit/pkg/inspect"
	"github.com/scrollkit-dev/scrollkit/pkg/prop"
	"github.com/scrollkit-dev/scrollkit/pkg/window"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		itemHeight int
		viewport   int
		items      int
		overscan   int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo window behind the inspection server",
		Long: `Build the virtual-scroll window graph and serve it over HTTP.

Endpoints:
  GET /graph           graph topology
  GET /props/{name}    one property's value and version
  PUT /props/{name}    write a leaf (e.g. {"value": 480} to scrollTop)
  GET /watch           WebSocket change feed
  GET /metrics         Prometheus metrics
  GET /healthz         liveness

Examples:
  scrollkit serve
  scrollkit serve --addr=:8080 --items=100000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			w, err := window.New(window.Config{
				ItemHeight:     itemHeight,
				ViewportHeight: viewport,
				ItemCount:      items,
				Overscan:       overscan,
			}, prop.WithLogger(logger))
			if err != nil {
				return err
			}

			logger.Info("window graph ready",
				"items", items, "itemHeight", itemHeight,
				"viewport", viewport, "overscan", overscan)

			s := inspect.NewServer(w.Manager(), &inspect.ServerConfig{
				Address: addr,
				Logger:  logger,
			})
			return s.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":6060", "Listen address")
	cmd.Flags().IntVar(&itemHeight, "item-height", 24, "Item height in pixels")
	cmd.Flags().IntVar(&viewport, "viewport", 600, "Viewport height in pixels")
	cmd.Flags().IntVar(&items, "items", 10_000, "Logical list length")
	cmd.Flags().IntVar(&overscan, "overscan", 4, "Extra items rendered on each side")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
