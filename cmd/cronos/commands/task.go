package commands

import (
	"fmt"
	"sort"
	"time"

	pkgtypes "cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/cobra"
)

// TaskCmd 任务管理
var TaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, inspect, cancel or execute tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var (
	taskSched      scheduleFlags
	taskIxFile     string
	taskMemo       string
	taskListDaemon string
	taskListStatus string
)

var TaskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule an instruction to be executed by your daemon",
	Long: `Schedule an instruction to be executed by your daemon.

The instruction may only require your daemon's signature.
Time flags accept unix seconds, RFC3339 or a relative "+duration".

Examples:
  cronos task create --memo ping --exec-at +30s
  cronos task create --ix-file ix.json --exec-at +1m --recurr 5m --stop-at +1d
  cronos task create --memo tick --cron "*/10 * * * *"`,
	Args: cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		inner, err := loadInnerIx(taskIxFile, taskMemo)
		if err != nil {
			return err
		}
		now, err := e.client.BlockTime(e.ctx)
		if err != nil {
			now = time.Now().Unix()
		}
		sched, err := taskSched.resolve(time.Unix(now, 0))
		if err != nil {
			return err
		}
		ix, task, err := e.client.TaskCreate(e.ctx, e.signer.PublicKey, inner, sched)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task: %s\n", task.Address.ToBase58())
		return e.submit(cmd, "task_create", ix)
	}),
}

var TaskGetCmd = &cobra.Command{
	Use:   "get <address>",
	Short: "Print a task",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		addr, err := pubkeyArg(args[0])
		if err != nil {
			return err
		}
		t, err := e.client.Task(e.ctx, addr)
		if err != nil {
			return err
		}
		printTask(cmd.OutOrStdout(), addr, t)
		return nil
	}),
}

var TaskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by daemon and status",
	Long: `List tasks ordered by exec_at.

Examples:
  cronos task list
  cronos task list --daemon mine --status pending
  cronos task list --daemon <daemon-address>`,
	Args: cobra.NoArgs,
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		var daemon *common.PublicKey
		switch taskListDaemon {
		case "":
		case "mine":
			_, pda, err := e.client.Daemon(e.ctx, e.signer.PublicKey)
			if err != nil {
				return err
			}
			daemon = &pda.Address
		default:
			pk, err := pubkeyArg(taskListDaemon)
			if err != nil {
				return err
			}
			daemon = &pk
		}

		var status *state.TaskStatus
		if taskListStatus != "" {
			s, err := state.ParseTaskStatus(taskListStatus)
			if err != nil {
				return err
			}
			status = &s
		}

		entries, err := e.client.Tasks(e.ctx, daemon)
		if err != nil {
			return err
		}
		rows := make([]taskRow, 0, len(entries))
		for _, en := range entries {
			if status != nil && en.Task.Status != *status {
				continue
			}
			rows = append(rows, taskRow{Address: en.Address, Task: en.Task})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Task.ExecAt < rows[j].Task.ExecAt })
		printTaskRows(cmd.OutOrStdout(), rows)
		return nil
	}),
}

var TaskCancelCmd = &cobra.Command{
	Use:   "cancel <address>",
	Short: "Cancel one of your tasks",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		addr, err := pubkeyArg(args[0])
		if err != nil {
			return err
		}
		ix, err := e.client.Builder().TaskCancel(e.signer.PublicKey, addr)
		if err != nil {
			return err
		}
		return e.submit(cmd, "task_cancel", ix)
	}),
}

var TaskExecuteCmd = &cobra.Command{
	Use:   "execute <address>",
	Short: "Execute a due task, collecting the worker fee",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		addr, err := pubkeyArg(args[0])
		if err != nil {
			return err
		}
		ix, err := e.client.TaskExecute(e.ctx, e.signer.PublicKey, addr)
		if err != nil {
			return err
		}
		return e.submit(cmd, "task_execute", ix)
	}),
}

func pubkeyArg(s string) (common.PublicKey, error) {
	pk, err := pkgtypes.TryPubkeyFromBase58(s)
	if err != nil {
		return common.PublicKey{}, err
	}
	return pk.ToCommon(), nil
}

// addScheduleFlags defaultRecurr 为空表示默认一次性任务
func addScheduleFlags(cmd *cobra.Command, f *scheduleFlags, defaultRecurr string) {
	f.defaultRecurr = defaultRecurr
	recurrUsage := "recurrence interval, seconds or duration (0 = one-shot)"
	if defaultRecurr != "" {
		recurrUsage += fmt.Sprintf(" (default %s unless --cron is given)", defaultRecurr)
	}
	cmd.Flags().StringVar(&f.execAt, "exec-at", "", "first execution time (default now)")
	cmd.Flags().StringVar(&f.stopAt, "stop-at", "", "stop time (default exec-at for one-shot tasks, never for recurring)")
	cmd.Flags().StringVar(&f.recurr, "recurr", "", recurrUsage)
	cmd.Flags().StringVar(&f.cron, "cron", "", "standard cron expression; derives exec-at and recurr")
}

func init() {
	addScheduleFlags(TaskCreateCmd, &taskSched, "")
	TaskCreateCmd.Flags().StringVar(&taskIxFile, "ix-file", "", "JSON file describing the instruction")
	TaskCreateCmd.Flags().StringVar(&taskMemo, "memo", "", "schedule a memo instruction with this text")

	TaskListCmd.Flags().StringVar(&taskListDaemon, "daemon", "", `daemon address, or "mine"`)
	TaskListCmd.Flags().StringVar(&taskListStatus, "status", "", "filter by status (pending, executed, cancelled)")

	TaskCmd.AddCommand(TaskCreateCmd)
	TaskCmd.AddCommand(TaskGetCmd)
	TaskCmd.AddCommand(TaskListCmd)
	TaskCmd.AddCommand(TaskCancelCmd)
	TaskCmd.AddCommand(TaskExecuteCmd)
}
