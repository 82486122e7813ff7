package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"cronos-client-sol/internal/logic/progress"

	"github.com/spf13/cobra"
)

var (
	historyDB    string
	historyLimit int
)

// TaskHistoryCmd 读取 worker 落库的执行记录，不访问链上
var TaskHistoryCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Print executions of a task recorded by the local worker",
	Long: `Print executions of a task recorded by the worker's sqlite store
(progress.sqlite_path in etc/worker.yaml), newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := pubkeyArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		records, err := taskHistory(ctx, historyDB, addr.ToBase58(), historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func taskHistory(ctx context.Context, dbPath, task string, limit int) ([]*progress.ExecutionRecord, error) {
	// OpenSqlite 会创建缺失的文件，这里只读已有的库
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("execution store %s: %w", dbPath, err)
	}
	db, err := progress.OpenSqlite(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	pm := progress.NewProgressManager(nil, progress.NewDBProgressStore(db), 0)
	return pm.History(ctx, task, limit)
}

func printHistory(w io.Writer, records []*progress.ExecutionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no executions recorded")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "EXEC_AT\tSTATUS\tSOURCE\tWORKER\tSIGNATURE\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			fmtUnix(r.ExecAt), r.Status, progress.SourceName(r.Source), r.Worker, r.Signature, r.Error)
	}
	_ = tw.Flush()
}

func init() {
	TaskHistoryCmd.Flags().StringVar(&historyDB, "db", "data/executions.db", "worker execution store (sqlite)")
	TaskHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "max records to print")
	TaskCmd.AddCommand(TaskHistoryCmd)
}
