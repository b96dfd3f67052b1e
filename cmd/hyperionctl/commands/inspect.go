package commands

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/hyperionctl/internal/protocol/frame"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a framed or bare request dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read dump: %w", err)
			}
			payload, framed, err := unframe(data)
			if err != nil {
				return err
			}
			req, err := message.DecodeRequest(payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if framed {
				fmt.Fprintf(out, "frame: %d byte payload\n", len(payload))
			} else {
				fmt.Fprintf(out, "bare payload: %d bytes\n", len(payload))
			}
			describe(out, req)
			return nil
		},
	}
}

// unframe strips a length prefix when it matches the rest of the file.
func unframe(data []byte) ([]byte, bool, error) {
	if len(data) >= frame.HeaderLen && int(binary.BigEndian.Uint32(data)) == len(data)-frame.HeaderLen {
		payload, err := frame.ReadFrame(bytes.NewReader(data), frame.DefaultLimits())
		if err != nil {
			return nil, false, err
		}
		return payload, true, nil
	}
	return data, false, nil
}

func describe(out io.Writer, req message.Request) {
	fmt.Fprintf(out, "command: %s\n", req.Command())
	switch r := req.(type) {
	case message.Register:
		fmt.Fprintf(out, "origin: %q\npriority: %d\n", r.Origin, r.Priority)
	case message.Image:
		raw := r.Data.(message.RawImage)
		fmt.Fprintf(out, "type: %s\nsize: %dx%d\nbytes: %d\nduration: %d\n",
			raw.ImageType(), raw.Width, raw.Height, len(raw.Data), r.Duration)
	case message.Clear:
		fmt.Fprintf(out, "priority: %d\n", r.Priority)
	case message.Color:
		red, green, blue := r.RGB()
		fmt.Fprintf(out, "color: #%02x%02x%02x\nduration: %d\n", red, green, blue, r.Duration)
	}
}
