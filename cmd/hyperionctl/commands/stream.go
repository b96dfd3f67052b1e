package commands

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/hyperionctl/internal/capture"
	"github.com/danmuck/hyperionctl/internal/config"
	"github.com/danmuck/hyperionctl/internal/hyperion"
	"github.com/danmuck/hyperionctl/internal/logging"
	"github.com/danmuck/hyperionctl/internal/observability"
)

func newStreamCommand(root *rootOptions) *cobra.Command {
	var (
		source      string
		solid       string
		framerate   int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream frames at a fixed rate until interrupted",
		Long: `Stream frames from a source at the configured framerate. The source is
"pattern" (a moving hue sweep), "solid" (see --color) or an image file.
Lost connections are retried with backoff. On exit the priority is
cleared so the server falls back to the next source.`,
		Example: `  # Test pattern at 25 fps with a status server
  hyperionctl stream --framerate 25 --metrics-addr 127.0.0.1:9465

  # Loop a still image
  hyperionctl stream --source wallpaper.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.settings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("framerate") {
				cfg.Framerate = framerate
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			src, err := openSource(source, solid, cfg)
			if err != nil {
				return err
			}
			client, err := hyperion.NewClient(cfg.Client())
			if err != nil {
				return err
			}
			streamer := &capture.Streamer{
				Client:    client,
				Source:    src,
				Framerate: cfg.Framerate,
				Backoff:   cfg.Backoff,
				Address:   cfg.Address,
				Port:      cfg.Port,
				Priority:  cfg.Priority,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStream(ctx, cfg, client, streamer)
		},
	}
	cmd.Flags().StringVar(&source, "source", "pattern", `frame source: "pattern", "solid" or an image path`)
	cmd.Flags().StringVar(&solid, "color", "ffffff", "RRGGBB used by the solid source")
	cmd.Flags().IntVar(&framerate, "framerate", 0, "frames per second (default from settings)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /health and /metrics on this address")
	return cmd
}

func openSource(name, solid string, cfg config.Settings) (capture.Source, error) {
	w, h := cfg.CaptureWidth, cfg.CaptureHeight
	switch name {
	case "", "pattern":
		return capture.NewPatternSource(w, h)
	case "solid":
		r, g, b, err := parseHexColor(solid)
		if err != nil {
			return nil, err
		}
		return capture.NewSolidSource(w, h, color.RGBA{R: r, G: g, B: b, A: 255})
	default:
		return capture.NewImageSource(name, w, h)
	}
}

// runStream runs the streamer and, when enabled, the status server. Either
// failing stops both.
func runStream(ctx context.Context, cfg config.Settings, client *hyperion.Client, streamer *capture.Streamer) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return streamer.Run(ctx)
	})
	if cfg.Metrics.Enabled {
		status := observability.NewStatusServer(cfg.Metrics.Addr, func() observability.Status {
			stats := streamer.Stats()
			return observability.Status{
				State:      client.State().String(),
				Session:    client.SessionID(),
				Registered: client.Registered(),
				Frames:     stats.Frames,
				Rejected:   stats.Rejected,
				Reconnects: stats.Reconnects,
			}
		}, observability.StatusOptions{
			CorsOrigins: cfg.Metrics.CorsOrigins,
			Token:       cfg.Metrics.Token,
		})
		g.Go(func() error {
			if err := status.Run(ctx); err != nil {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
	}
	err := g.Wait()
	stats := streamer.Stats()
	logger := logging.Component("stream")
	logger.Info().
		Uint64("frames", stats.Frames).
		Uint64("rejected", stats.Rejected).
		Uint64("failures", stats.Failures).
		Uint64("reconnects", stats.Reconnects).
		Msg("stream finished")
	return err
}
