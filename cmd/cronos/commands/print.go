package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func fmtUnix(ts int64) string {
	if ts == 1<<63-1 {
		return "never"
	}
	return fmt.Sprintf("%d (%s)", ts, time.Unix(ts, 0).UTC().Format(time.RFC3339))
}

func printConfig(w io.Writer, addr common.PublicKey, c *state.Config, authority, treasury common.PublicKey) {
	tw := newTable(w)
	fmt.Fprintf(tw, "address\t%s\n", addr.ToBase58())
	fmt.Fprintf(tw, "authority\t%s\n", authority.ToBase58())
	fmt.Fprintf(tw, "treasury\t%s\n", treasury.ToBase58())
	fmt.Fprintf(tw, "admin\t%s\n", c.Admin.ToBase58())
	fmt.Fprintf(tw, "min_recurr\t%ds\n", c.MinRecurr)
	fmt.Fprintf(tw, "program_fee\t%d lamports\n", c.ProgramFee)
	fmt.Fprintf(tw, "worker_fee\t%d lamports\n", c.WorkerFee)
	_ = tw.Flush()
}

func printDaemon(w io.Writer, addr common.PublicKey, d *state.Daemon) {
	tw := newTable(w)
	fmt.Fprintf(tw, "address\t%s\n", addr.ToBase58())
	fmt.Fprintf(tw, "owner\t%s\n", d.Owner.ToBase58())
	fmt.Fprintf(tw, "task_count\t%s\n", d.TaskCount)
	_ = tw.Flush()
}

func printFee(w io.Writer, f *state.Fee) {
	tw := newTable(w)
	fmt.Fprintf(tw, "daemon\t%s\n", f.Daemon.ToBase58())
	fmt.Fprintf(tw, "balance\t%d lamports\n", f.Balance)
	_ = tw.Flush()
}

func printHealth(w io.Writer, h *state.Health) {
	tw := newTable(w)
	fmt.Fprintf(tw, "real_time\t%s\n", fmtUnix(h.RealTime))
	fmt.Fprintf(tw, "target_time\t%s\n", fmtUnix(h.TargetTime))
	fmt.Fprintf(tw, "lag\t%ds\n", h.Lag())
	_ = tw.Flush()
}

func printTask(w io.Writer, addr common.PublicKey, t *state.Task) {
	tw := newTable(w)
	fmt.Fprintf(tw, "address\t%s\n", addr.ToBase58())
	fmt.Fprintf(tw, "daemon\t%s\n", t.Daemon.ToBase58())
	fmt.Fprintf(tw, "id\t%s\n", t.ID)
	fmt.Fprintf(tw, "status\t%s\n", t.Status)
	fmt.Fprintf(tw, "exec_at\t%s\n", fmtUnix(t.ExecAt))
	fmt.Fprintf(tw, "stop_at\t%s\n", fmtUnix(t.StopAt))
	fmt.Fprintf(tw, "recurr\t%ds\n", t.Recurr)
	fmt.Fprintf(tw, "ix.program_id\t%s\n", t.Ix.ProgramID.ToBase58())
	for i, a := range t.Ix.Accounts {
		fmt.Fprintf(tw, "ix.accounts[%d]\t%s signer=%t writable=%t\n", i, a.Pubkey.ToBase58(), a.IsSigner, a.IsWritable)
	}
	fmt.Fprintf(tw, "ix.data\t%s\n", base58.Encode(t.Ix.Data))
	_ = tw.Flush()
}

func printTaskRows(w io.Writer, rows []taskRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ADDRESS\tID\tSTATUS\tEXEC_AT\tRECURR")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.Address.ToBase58(), r.Task.ID, r.Task.Status, r.Task.ExecAt, r.Task.Recurr)
	}
	_ = tw.Flush()
}

type taskRow struct {
	Address common.PublicKey
	Task    *state.Task
}
