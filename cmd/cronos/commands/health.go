package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// HealthCmd health 账户由周期任务 ping，用于衡量执行网络的延迟
var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Inspect and schedule the health check",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var HealthGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the health account",
	Args:  cobra.NoArgs,
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		h, err := e.client.Health(e.ctx)
		if err != nil {
			return err
		}
		printHealth(cmd.OutOrStdout(), h)
		return nil
	}),
}

var HealthResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset health times to the current clock (admin)",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		ix, err := e.client.AdminResetHealth(e.ctx)
		if err != nil {
			return err
		}
		return e.submit(cmd, "admin_reset_health", ix)
	}),
}

var healthSched scheduleFlags

var HealthStartCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"check"},
	Short:   "Reset health and schedule a recurring health check task (admin)",
	Args:    cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		now, err := e.client.BlockTime(e.ctx)
		if err != nil {
			now = time.Now().Unix()
		}
		sched, err := healthSched.resolve(time.Unix(now, 0))
		if err != nil {
			return err
		}
		ixs, task, err := e.client.HealthStart(e.ctx, sched)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task: %s\n", task.Address.ToBase58())
		return e.submit(cmd, "health_start", ixs...)
	}),
}

func init() {
	addScheduleFlags(HealthStartCmd, &healthSched, "10")

	HealthCmd.AddCommand(HealthGetCmd)
	HealthCmd.AddCommand(HealthResetCmd)
	HealthCmd.AddCommand(HealthStartCmd)
}
