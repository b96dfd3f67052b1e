// Package commands holds the hyperionctl cobra command tree.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/hyperionctl/internal/config"
	"github.com/danmuck/hyperionctl/internal/hyperion"
	"github.com/danmuck/hyperionctl/internal/logging"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	address    string
	port       uint16
	priority   int32
	origin     string
	logLevel   string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "hyperionctl",
		Short: "Drive a Hyperion ambient lighting server over its flatbuffer protocol",
		Long: `hyperionctl talks to a Hyperion server on its flatbuffer port (19400 by
default). It can set solid colors, clear priorities, send still images and
stream frames at a fixed rate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (TOML)")
	flags.StringVar(&opts.address, "address", "", "server host (default localhost)")
	flags.Uint16Var(&opts.port, "port", hyperion.DefaultPort, "server flatbuffer port")
	flags.Int32Var(&opts.priority, "priority", hyperion.DefaultPriority, "priority to register and clear")
	flags.StringVar(&opts.origin, "origin", hyperion.DefaultOrigin, "origin name shown by the server")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newColorCommand(opts),
		newClearCommand(opts),
		newImageCommand(opts),
		newStreamCommand(opts),
		newInspectCommand(),
		newConfigCommand(),
	)
	return cmd
}

// settings loads --config when given and applies explicitly set flags on
// top. It also installs the logger.
func (o *rootOptions) settings(cmd *cobra.Command) (config.Settings, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Settings{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Address = o.address
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("priority") {
		cfg.Priority = o.priority
	}
	if flags.Changed("origin") {
		cfg.Origin = o.origin
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Settings{}, err
	}

	logging.Apply(logging.WithEnv(cfg.Logging()))
	return cfg, nil
}

// dial connects a client for a one-shot command.
func dial(ctx context.Context, cfg config.Settings) (*hyperion.Client, error) {
	client, err := hyperion.NewClient(cfg.Client())
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx, cfg.Address, cfg.Port); err != nil {
		return nil, err
	}
	return client, nil
}

// commandContext bounds a one-shot command by its socket timeouts.
func commandContext(cmd *cobra.Command, cfg config.Settings) (context.Context, context.CancelFunc) {
	budget := cfg.ConnectTimeout + 2*(cfg.ReadTimeout+cfg.WriteTimeout)
	return context.WithTimeout(cmd.Context(), budget+time.Second)
}

func printReply(cmd *cobra.Command, reply message.Reply) error {
	fmt.Fprintln(cmd.OutOrStdout(), reply.String())
	return reply.Err()
}
