package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/frame"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

func newColorCommand(root *rootOptions) *cobra.Command {
	var (
		duration int32
		dump     string
	)
	cmd := &cobra.Command{
		Use:   "color RRGGBB",
		Short: "Register and set a solid color",
		Example: `  # Warm orange until cleared
  hyperionctl color ff8000

  # Blue for five seconds
  hyperionctl color '#0000ff' --duration 5000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, g, b, err := parseHexColor(args[0])
			if err != nil {
				return err
			}
			req := message.NewColor(r, g, b, duration)
			if dump != "" {
				return writeDump(cmd, dump, req)
			}

			cfg, err := root.settings(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()
			client, err := dial(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			reply, err := client.RegisterOrigin(ctx, cfg.Origin, cfg.Priority)
			if err != nil {
				return err
			}
			if reply.Rejected() {
				return printReply(cmd, reply)
			}
			reply, err = client.SetColor(ctx, req.ARGB, req.Duration)
			if err != nil {
				return err
			}
			return printReply(cmd, reply)
		},
	}
	cmd.Flags().Int32Var(&duration, "duration", message.DurationInfinite, "milliseconds to show the color, -1 until cleared")
	cmd.Flags().StringVar(&dump, "dump", "", "write the framed request to a file instead of sending it")
	return cmd
}

func parseHexColor(raw string) (r, g, b uint8, err error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(raw) != 6 {
		return 0, 0, 0, fmt.Errorf("%w: color %q must be RRGGBB", protocol.ErrValidation, raw)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: color %q: %w", protocol.ErrValidation, raw, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// writeDump encodes and frames req exactly as it would go on the wire.
func writeDump(cmd *cobra.Command, path string, req message.Request) error {
	payload, err := message.Encode(req)
	if err != nil {
		return err
	}
	framed, err := frame.Encode(payload, frame.DefaultLimits())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, framed, 0o600); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s request (%d bytes) to %s\n", req.Command(), len(framed), path)
	return nil
}
