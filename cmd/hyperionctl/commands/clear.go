package commands

import (
	"github.com/spf13/cobra"
)

func newClearCommand(root *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the configured priority, or every priority with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if all {
				reply, err := client.ClearAll(ctx)
				if err != nil {
					return err
				}
				return printReply(cmd, reply)
			}
			reply, err := client.Clear(ctx, cfg.Priority)
			if err != nil {
				return err
			}
			return printReply(cmd, reply)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "clear every priority")
	return cmd
}
