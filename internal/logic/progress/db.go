package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS task_execution (
	task        TEXT    NOT NULL,
	exec_at     INTEGER NOT NULL,
	daemon      TEXT    NOT NULL DEFAULT '',
	worker      TEXT    NOT NULL DEFAULT '',
	signature   TEXT    NOT NULL DEFAULT '',
	status      INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT '',
	source      INTEGER NOT NULL DEFAULT 0,
	executed_at INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	PRIMARY KEY (task, exec_at)
);
CREATE INDEX IF NOT EXISTS idx_task_execution_executed_at ON task_execution (executed_at);
`

// DBProgressStore 管理执行记录的 sqlite 存储
// 写入用于持久记录历史，服务重启后可用于判重兜底
type DBProgressStore struct {
	db *sql.DB
}

// OpenSqlite 打开（必要时创建）sqlite 文件并建表，path 为 ":memory:" 时使用内存库
func OpenSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite 单写者
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return db, nil
}

func NewDBProgressStore(db *sql.DB) *DBProgressStore {
	return &DBProgressStore{db: db}
}

// GetStatus 查询某次执行的落库状态，不存在返回 ExecUnknown
func (d *DBProgressStore) GetStatus(ctx context.Context, task string, execAt int64) (ExecStatus, error) {
	var status int
	err := d.db.QueryRowContext(ctx,
		`SELECT status FROM task_execution WHERE task = ? AND exec_at = ?`, task, execAt,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return ExecUnknown, nil
	}
	if err != nil {
		return ExecUnknown, fmt.Errorf("query execution status error: %w", err)
	}
	return ExecStatus(status), nil
}

// ListByTask 按 exec_at 倒序返回某任务最近的执行记录
func (d *DBProgressStore) ListByTask(ctx context.Context, task string, limit int) ([]*ExecutionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT task, exec_at, daemon, worker, signature, status, error, source, executed_at
		FROM task_execution WHERE task = ? ORDER BY exec_at DESC LIMIT ?`, task, limit)
	if err != nil {
		return nil, fmt.Errorf("list executions error: %w", err)
	}
	defer rows.Close()

	var out []*ExecutionRecord
	for rows.Next() {
		r := &ExecutionRecord{}
		var status int
		if err := rows.Scan(&r.Task, &r.ExecAt, &r.Daemon, &r.Worker, &r.Signature, &status, &r.Error, &r.Source, &r.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		r.Status = ExecStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// BatchInsert 批量写入执行记录，按 batchLimit 分批。
// (task, exec_at) 冲突时以新记录为准
func (d *DBProgressStore) BatchInsert(ctx context.Context, records []*ExecutionRecord) error {
	if len(records) == 0 {
		return nil
	}

	const batchLimit = 500
	for i := 0; i < len(records); i += batchLimit {
		end := i + batchLimit
		if end > len(records) {
			end = len(records)
		}
		if err := d.insertChunk(ctx, records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DBProgressStore) insertChunk(ctx context.Context, records []*ExecutionRecord) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO task_execution (task, exec_at, daemon, worker, signature, status, error, source, executed_at) VALUES `)
	args := make([]any, 0, len(records)*9)

	for i, r := range records {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?,?,?,?,?,?)")
		args = append(args, r.Task, r.ExecAt, r.Daemon, r.Worker, r.Signature, int(r.Status), r.Error, r.Source, r.ExecutedAt)
	}
	sb.WriteString(` ON CONFLICT (task, exec_at) DO UPDATE SET
		worker = excluded.worker,
		signature = excluded.signature,
		status = excluded.status,
		error = excluded.error,
		executed_at = excluded.executed_at,
		updated_at = strftime('%s','now')`)

	if _, err := d.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert %d execution rows: %w", len(records), err)
	}
	return nil
}

// DeleteBefore 删除 executed_at 早于 cutoff 的记录，分批删除避免长事务，返回删除总数
func (d *DBProgressStore) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	const batchSize = 1000
	var total int64
	for {
		res, err := d.db.ExecContext(ctx,
			`DELETE FROM task_execution WHERE rowid IN (
				SELECT rowid FROM task_execution WHERE executed_at < ? LIMIT ?)`,
			cutoff, batchSize,
		)
		if err != nil {
			return total, fmt.Errorf("delete old executions failed: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
		if n < batchSize {
			return total, nil
		}
	}
}
