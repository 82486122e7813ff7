package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"cronos-client-sol/internal/logic/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "executions.db")

	db, err := progress.OpenSqlite(path)
	require.NoError(t, err)
	pm := progress.NewProgressManager(nil, progress.NewDBProgressStore(db), 30)
	for i, st := range []progress.ExecStatus{progress.ExecFailed, progress.ExecSucceeded} {
		require.NoError(t, pm.MarkResult(ctx, &progress.ExecutionRecord{
			Task:       "task1",
			ExecAt:     1_700_000_000 + int64(i)*60,
			Worker:     "worker1",
			Signature:  "sig" + st.String(),
			Status:     st,
			ExecutedAt: 1_700_000_001,
		}))
	}
	require.NoError(t, pm.Flush(ctx))
	require.NoError(t, db.Close())

	records, err := taskHistory(ctx, path, "task1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// 最新的在前
	assert.Equal(t, progress.ExecSucceeded, records[0].Status)
	assert.Equal(t, int64(1_700_000_060), records[0].ExecAt)

	var out bytes.Buffer
	printHistory(&out, records)
	assert.Contains(t, out.String(), "sig"+progress.ExecSucceeded.String())
	assert.Contains(t, out.String(), "worker1")

	out.Reset()
	printHistory(&out, nil)
	assert.Contains(t, out.String(), "no executions recorded")
}

func TestTaskHistory_MissingStore(t *testing.T) {
	_, err := taskHistory(context.Background(), filepath.Join(t.TempDir(), "missing.db"), "task1", 10)
	assert.Error(t, err)
}
