package cache

import (
	"testing"

	"cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	return p
}

func pending(execAt int64) *state.Task {
	return &state.Task{Status: state.TaskStatusPending, ExecAt: execAt, StopAt: execAt}
}

func addrsOf(refs []TaskRef) []types.Pubkey {
	out := make([]types.Pubkey, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Address)
	}
	return out
}

func TestTaskCache_DueWindow(t *testing.T) {
	c := NewTaskCache()
	c.Upsert(TaskRef{Address: addr(1), Task: pending(100)})
	c.Upsert(TaskRef{Address: addr(2), Task: pending(95)})
	c.Upsert(TaskRef{Address: addr(3), Task: pending(80)})
	c.Upsert(TaskRef{Address: addr(4), Task: pending(120)})
	c.Upsert(TaskRef{Address: addr(5), Task: pending(95)})
	require.Equal(t, 5, c.Len())

	due := c.Due(100, 10, 0)
	assert.Equal(t, []types.Pubkey{addr(2), addr(5), addr(1)}, addrsOf(due))
	assert.Equal(t, 1, c.Stale(100, 10))

	assert.Len(t, c.Due(100, 10, 2), 2)
	assert.Len(t, c.Due(100, 0, 0), 4)
	assert.Equal(t, 0, c.Stale(100, 0))
}

func TestTaskCache_UpsertMovesAndRemoves(t *testing.T) {
	c := NewTaskCache()
	c.Upsert(TaskRef{Address: addr(1), Task: pending(100), Slot: 10})

	// 旧 slot 数据被忽略
	c.Upsert(TaskRef{Address: addr(1), Task: pending(50), Slot: 9})
	ref, ok := c.Get(addr(1))
	require.True(t, ok)
	assert.Equal(t, int64(100), ref.Task.ExecAt)

	// 新数据移动索引位置
	c.Upsert(TaskRef{Address: addr(1), Task: pending(200), Slot: 11})
	assert.Empty(t, c.Due(150, 0, 0))
	assert.Len(t, c.Due(200, 0, 0), 1)

	// 非 Pending 移出缓存
	done := pending(200)
	done.Status = state.TaskStatusExecuted
	c.Upsert(TaskRef{Address: addr(1), Task: done, Slot: 12})
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Due(1000, 0, 0))

	c.Upsert(TaskRef{Address: addr(2), Task: pending(1)})
	c.Remove(addr(2))
	c.Remove(addr(3))
	assert.Equal(t, 0, c.Len())
}

func TestTaskCache_ReplaceAll(t *testing.T) {
	c := NewTaskCache()
	c.Upsert(TaskRef{Address: addr(1), Task: pending(100), Slot: 50}) // geyser，更新
	c.Upsert(TaskRef{Address: addr(2), Task: pending(100), Slot: 50}) // geyser，快照中已消失
	c.Upsert(TaskRef{Address: addr(3), Task: pending(100)})

	c.ReplaceAll([]TaskRef{
		{Address: addr(1), Task: pending(90)},
		{Address: addr(4), Task: pending(70)},
	})

	assert.Equal(t, 2, c.Len())
	ref, ok := c.Get(addr(1))
	require.True(t, ok)
	assert.Equal(t, int64(100), ref.Task.ExecAt)
	_, ok = c.Get(addr(2))
	assert.False(t, ok)
	assert.Equal(t, []types.Pubkey{addr(4), addr(1)}, addrsOf(c.Due(100, 0, 0)))
}
