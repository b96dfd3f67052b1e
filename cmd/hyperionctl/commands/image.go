package commands

import (
	"github.com/spf13/cobra"

	"github.com/danmuck/hyperionctl/internal/capture"
	"github.com/danmuck/hyperionctl/internal/config"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

func newImageCommand(root *rootOptions) *cobra.Command {
	var (
		duration      int32
		width, height int
		dump          string
	)
	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Send one still image scaled to the capture size",
		Long: `Decode a PNG, JPEG, GIF, BMP or WebP file, scale it to the capture size
and send it as a raw RGB image. The client registers first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg config.Settings
				err error
			)
			if dump != "" {
				cfg = config.Default()
			} else if cfg, err = root.settings(cmd); err != nil {
				return err
			}
			if width > 0 {
				cfg.CaptureWidth = width
			}
			if height > 0 {
				cfg.CaptureHeight = height
			}

			src, err := capture.NewImageSource(args[0], cfg.CaptureWidth, cfg.CaptureHeight)
			if err != nil {
				return err
			}
			pixels, err := src.Frame(cmd.Context())
			if err != nil {
				return err
			}
			if dump != "" {
				img := message.Image{
					Data: message.RawImage{
						Data:   pixels,
						Width:  int32(cfg.CaptureWidth),
						Height: int32(cfg.CaptureHeight),
					},
					Duration: duration,
				}
				return writeDump(cmd, dump, img)
			}

			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()
			client, err := dial(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			reply, err := client.SendImage(ctx, pixels, cfg.CaptureWidth, cfg.CaptureHeight, duration)
			if err != nil {
				return err
			}
			return printReply(cmd, reply)
		},
	}
	cmd.Flags().Int32Var(&duration, "duration", message.DurationInfinite, "milliseconds to show the image, -1 until cleared")
	cmd.Flags().IntVar(&width, "width", 0, "override capture width")
	cmd.Flags().IntVar(&height, "height", 0, "override capture height")
	cmd.Flags().StringVar(&dump, "dump", "", "write the framed request to a file instead of sending it")
	return cmd
}
