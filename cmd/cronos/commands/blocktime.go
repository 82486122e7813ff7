package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var BlocktimeCmd = &cobra.Command{
	Use:   "blocktime",
	Short: "Print the cluster clock",
	Args:  cobra.NoArgs,
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		clock, err := e.client.Clock(e.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "slot: %d\nepoch: %d\nunix_timestamp: %s\n", clock.Slot, clock.Epoch, fmtUnix(clock.UnixTimestamp))
		return nil
	}),
}
