package progress

import (
	"context"
	"time"

	"cronos-client-sol/internal/pkg/logger"
)

// 终态标记保留时长（需覆盖回看窗口与 geyser 数据延迟）
const finalTTL = 24 * time.Hour

// ProgressManager 统一封装认领存储 + DB + 缓冲，控制执行判重与写入
type ProgressManager struct {
	claims   ClaimStore
	db       *DBProgressStore // 可为 nil（不落库）
	buffer   *recordBuffer
	claimTTL time.Duration
}

func NewProgressManager(claims ClaimStore, db *DBProgressStore, claimTTLSec int) *ProgressManager {
	if claims == nil {
		claims = NewMemoryClaimStore()
	}
	return &ProgressManager{
		claims:   claims,
		db:       db,
		buffer:   newRecordBuffer(),
		claimTTL: time.Duration(claimTTLSec) * time.Second,
	}
}

// TryClaim 判断并认领一次执行：
// - 认领存储中已是终态或正被认领，跳过
// - 否则 fallback 到 DB（重启后 Redis 丢失的情况）
// - 最后 SETNX 认领
func (pm *ProgressManager) TryClaim(ctx context.Context, task string, execAt int64) (bool, error) {
	key := ExecKey(task, execAt)

	status, err := pm.claims.Status(ctx, key)
	if err != nil {
		return false, err
	}
	if status == ExecClaimed || status.Final() {
		return false, nil
	}

	if pm.db != nil {
		dbStatus, err := pm.db.GetStatus(ctx, task, execAt)
		if err != nil {
			return false, err
		}
		if dbStatus.Final() {
			_ = pm.claims.Mark(ctx, key, dbStatus, finalTTL)
			return false, nil
		}
	}

	// 失败状态允许重试：先清掉旧标记再认领
	if status == ExecFailed {
		if err := pm.claims.Release(ctx, key); err != nil {
			return false, err
		}
	}
	return pm.claims.Claim(ctx, key, pm.claimTTL)
}

// MarkResult 记录一次执行结果，同时更新认领存储与缓冲区（供后续批量写入 DB）
func (pm *ProgressManager) MarkResult(ctx context.Context, rec *ExecutionRecord) error {
	key := ExecKey(rec.Task, rec.ExecAt)

	var err error
	switch {
	case rec.Status.Final():
		err = pm.claims.Mark(ctx, key, rec.Status, finalTTL)
	case rec.Status == ExecFailed:
		// 短 TTL，避免同一轮内被反复提交
		err = pm.claims.Mark(ctx, key, ExecFailed, pm.claimTTL)
	default:
		return nil // Unknown / Claimed 不参与记录
	}
	if err != nil {
		return err
	}

	if pm.db != nil {
		pm.buffer.Add(rec)
	}
	return nil
}

// Flush 立即把缓冲区写入 DB，失败时放回缓冲区
func (pm *ProgressManager) Flush(ctx context.Context) error {
	if pm.db == nil {
		return nil
	}
	list := pm.buffer.Flush()
	if len(list) == 0 {
		return nil
	}
	if err := pm.db.BatchInsert(ctx, list); err != nil {
		pm.buffer.Requeue(list)
		return err
	}
	return nil
}

func (pm *ProgressManager) Pending() int {
	return pm.buffer.Len()
}

// History 查询某任务的执行历史
func (pm *ProgressManager) History(ctx context.Context, task string, limit int) ([]*ExecutionRecord, error) {
	if pm.db == nil {
		return nil, nil
	}
	return pm.db.ListByTask(ctx, task, limit)
}

// StartFlushLoop 启动后台定时 flush，阻塞直到 ctx 结束（结束前做最后一次 flush）
func (pm *ProgressManager) StartFlushLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := pm.Flush(final); err != nil {
				logger.Errorf("[Progress] final flush failed, %d records lost: %v", pm.Pending(), err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := pm.Flush(ctx); err != nil {
				logger.Warnf("[Progress] flush failed, %d records requeued: %v", pm.Pending(), err)
			}
		}
	}
}

// sweeper 需要主动清理过期条目的认领存储（进程内实现）
type sweeper interface {
	Sweep() int
}

// SweepOnce 清理认领存储中的过期条目，Redis 依赖 TTL 自行过期
func (pm *ProgressManager) SweepOnce() int {
	sw, ok := pm.claims.(sweeper)
	if !ok {
		return 0
	}
	return sw.Sweep()
}

// StartSweepLoop 启动后台清理，每个 (task, exec_at) 只会被读取一次，不主动清理会一直占用内存
func (pm *ProgressManager) StartSweepLoop(ctx context.Context, interval time.Duration) {
	if _, ok := pm.claims.(sweeper); !ok || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := pm.SweepOnce(); n > 0 {
					logger.Debugf("[Progress] swept %d expired claims", n)
				}
			}
		}
	}()
}

// StartGCLoop 启动后台 GC，每 interval 删除 retain 之前的执行记录
func (pm *ProgressManager) StartGCLoop(ctx context.Context, interval, retain time.Duration) {
	if pm.db == nil {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retain).Unix()
				n, err := pm.db.DeleteBefore(ctx, cutoff)
				if err != nil {
					logger.Warnf("[Progress] gc failed: %v", err)
					continue
				}
				if n > 0 {
					logger.Infof("[Progress] gc deleted %d execution rows", n)
				}
			}
		}
	}()
}
