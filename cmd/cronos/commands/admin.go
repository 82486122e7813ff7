package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// AdminCmd 仅 config.admin 可调用
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin-only task operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var AdminCancelTaskCmd = &cobra.Command{
	Use:   "cancel-task <address>",
	Short: "Cancel a task owned by the authority daemon",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		addr, err := pubkeyArg(args[0])
		if err != nil {
			return err
		}
		ix, err := e.client.AdminCancelTask(e.ctx, addr)
		if err != nil {
			return err
		}
		return e.submit(cmd, "admin_cancel_task", ix)
	}),
}

var (
	adminSched  scheduleFlags
	adminIxFile string
	adminMemo   string
)

var AdminCreateTaskCmd = &cobra.Command{
	Use:   "create-task",
	Short: "Schedule an instruction signed by the authority daemon",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		inner, err := loadInnerIx(adminIxFile, adminMemo)
		if err != nil {
			return err
		}
		now, err := e.client.BlockTime(e.ctx)
		if err != nil {
			now = time.Now().Unix()
		}
		sched, err := adminSched.resolve(time.Unix(now, 0))
		if err != nil {
			return err
		}
		ix, task, err := e.client.AdminCreateTask(e.ctx, inner, sched)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task: %s\n", task.Address.ToBase58())
		return e.submit(cmd, "admin_create_task", ix)
	}),
}

func init() {
	addScheduleFlags(AdminCreateTaskCmd, &adminSched, "")
	AdminCreateTaskCmd.Flags().StringVar(&adminIxFile, "ix-file", "", "JSON file describing the instruction")
	AdminCreateTaskCmd.Flags().StringVar(&adminMemo, "memo", "", "schedule a memo instruction with this text")

	AdminCmd.AddCommand(AdminCancelTaskCmd)
	AdminCmd.AddCommand(AdminCreateTaskCmd)
}
