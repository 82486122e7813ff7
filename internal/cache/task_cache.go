package cache

import (
	"sort"
	"sync"

	"cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"
)

// TaskRef 缓存中的一个待执行任务
type TaskRef struct {
	Address types.Pubkey
	Task    *state.Task
	Slot    uint64 // 数据来源 slot，RPC 全量刷新时为 0
	Source  int16  // 数据来源模块，见 progress.SourceXxx
}

type indexEntry struct {
	execAt int64
	addr   types.Pubkey
}

// TaskCache 只保存 Pending 任务，按 exec_at 升序维护索引，便于按时间窗口取到期任务
type TaskCache struct {
	mu    sync.RWMutex
	tasks map[types.Pubkey]TaskRef
	index []indexEntry // 按 (execAt, addr) 升序
}

func NewTaskCache() *TaskCache {
	return &TaskCache{
		tasks: make(map[types.Pubkey]TaskRef),
		index: make([]indexEntry, 0, 1024),
	}
}

func less(a, b indexEntry) bool {
	if a.execAt != b.execAt {
		return a.execAt < b.execAt
	}
	for i := range a.addr {
		if a.addr[i] != b.addr[i] {
			return a.addr[i] < b.addr[i]
		}
	}
	return false
}

// Upsert 写入任务；非 Pending 的任务直接移出缓存。
// 同一账户 slot 更旧的数据被忽略（geyser 与 RPC 两路数据可能乱序到达）
func (c *TaskCache) Upsert(ref TaskRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.tasks[ref.Address]; ok {
		if ref.Slot != 0 && old.Slot > ref.Slot {
			return
		}
		c.removeUnsafe(ref.Address, old.Task.ExecAt)
	}
	if ref.Task == nil || ref.Task.Status != state.TaskStatusPending {
		return
	}

	c.tasks[ref.Address] = ref
	e := indexEntry{execAt: ref.Task.ExecAt, addr: ref.Address}

	// 顺序追加优化
	if n := len(c.index); n == 0 || less(c.index[n-1], e) {
		c.index = append(c.index, e)
		return
	}
	idx := sort.Search(len(c.index), func(i int) bool {
		return !less(c.index[i], e)
	})
	c.index = append(c.index, indexEntry{})
	copy(c.index[idx+1:], c.index[idx:])
	c.index[idx] = e
}

func (c *TaskCache) Remove(addr types.Pubkey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.tasks[addr]; ok {
		c.removeUnsafe(addr, old.Task.ExecAt)
	}
}

func (c *TaskCache) removeUnsafe(addr types.Pubkey, execAt int64) {
	delete(c.tasks, addr)
	e := indexEntry{execAt: execAt, addr: addr}
	idx := sort.Search(len(c.index), func(i int) bool {
		return !less(c.index[i], e)
	})
	if idx < len(c.index) && c.index[idx] == e {
		c.index = append(c.index[:idx], c.index[idx+1:]...)
	}
}

// ReplaceAll 用全量快照替换缓存（RPC 周期刷新），保留 slot 更新的 geyser 数据
func (c *TaskCache) ReplaceAll(refs []TaskRef) {
	fresh := NewTaskCache()
	for _, r := range refs {
		fresh.Upsert(r)
	}

	c.mu.Lock()
	for addr, cur := range c.tasks {
		if cur.Slot == 0 {
			continue
		}
		if _, ok := fresh.tasks[addr]; !ok {
			// 快照中已不是 Pending，以快照为准
			continue
		}
		fresh.tasks[addr] = cur
	}
	fresh.rebuildIndexUnsafe()
	c.tasks = fresh.tasks
	c.index = fresh.index
	c.mu.Unlock()
}

func (c *TaskCache) rebuildIndexUnsafe() {
	c.index = c.index[:0]
	for addr, ref := range c.tasks {
		c.index = append(c.index, indexEntry{execAt: ref.Task.ExecAt, addr: addr})
	}
	sort.Slice(c.index, func(i, j int) bool { return less(c.index[i], c.index[j]) })
}

// Due 返回 exec_at 落在 [now-lookback, now] 内的任务，按 exec_at 升序，最多 limit 个。
// lookback <= 0 表示不设下界，limit <= 0 表示不限数量
func (c *TaskCache) Due(now, lookback int64, limit int) []TaskRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := 0
	if lookback > 0 {
		lower := now - lookback
		start = sort.Search(len(c.index), func(i int) bool {
			return c.index[i].execAt >= lower
		})
	}

	var out []TaskRef
	for i := start; i < len(c.index); i++ {
		e := c.index[i]
		if e.execAt > now {
			break
		}
		out = append(out, c.tasks[e.addr])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Stale 统计 exec_at 早于回看窗口、仍为 Pending 的任务数（通常意味着执行网络落后）
func (c *TaskCache) Stale(now, lookback int64) int {
	if lookback <= 0 {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	lower := now - lookback
	return sort.Search(len(c.index), func(i int) bool {
		return c.index[i].execAt >= lower
	})
}

func (c *TaskCache) Get(addr types.Pubkey) (TaskRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.tasks[addr]
	return ref, ok
}

func (c *TaskCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
