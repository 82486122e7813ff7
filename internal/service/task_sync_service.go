package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"cronos-client-sol/internal/cache"
	"cronos-client-sol/internal/client"
	"cronos-client-sol/internal/logic/progress"
	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
)

// TaskLister 列出程序下的任务，*client.Client 满足
type TaskLister interface {
	Tasks(ctx context.Context, daemon *common.PublicKey) ([]client.TaskEntry, error)
}

// TaskSyncService 周期性通过 getProgramAccounts 全量刷新任务缓存
type TaskSyncService struct {
	taskCache *cache.TaskCache
	lister    TaskLister
	interval  time.Duration
	timeout   time.Duration
	stopChan  chan struct{}
	ctx       context.Context
	cancel    func(err error)
}

func NewTaskSyncService(lister TaskLister, taskCache *cache.TaskCache, interval, timeout time.Duration) (*TaskSyncService, error) {
	ctx, cancel := context.WithCancelCause(context.Background())
	s := &TaskSyncService{
		taskCache: taskCache,
		lister:    lister,
		interval:  interval,
		timeout:   timeout,
		stopChan:  make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	// 初始化
	const retryCount = 3
	for i := 0; i <= retryCount; i++ {
		if err := s.update(); err != nil {
			logger.Warnf("[TaskSyncService] 第 %d 次 update() 失败: %v", i+1, err)
		} else {
			logger.Infof("[TaskSyncService] 初始任务同步成功, pending=%d", taskCache.Len())
			return s, nil
		}
		time.Sleep(2 * time.Second)
	}
	cancel(errors.New("init failed"))
	return nil, fmt.Errorf("[TaskSyncService] 初始同步失败")
}

func (s *TaskSyncService) Start() {
	s.scheduleNext()
	<-s.stopChan
}

func (s *TaskSyncService) scheduleNext() {
	time.AfterFunc(s.interval, func() {
		if err := s.update(); err != nil {
			logger.Warnf("[TaskSyncService] 周期性更新失败: %v", err)
		}
		// 如果没有被 Stop，就继续调度
		select {
		case <-s.ctx.Done():
			return
		default:
			s.scheduleNext()
		}
	})
}

func (s *TaskSyncService) Stop() {
	s.cancel(errors.New("TaskSyncService stop"))
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

func (s *TaskSyncService) update() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[TaskSyncService] update panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("update panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	entries, err := s.lister.Tasks(ctx, nil)
	if err != nil {
		return fmt.Errorf("list tasks failed: %w", err)
	}

	refs := make([]cache.TaskRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, cache.TaskRef{
			Address: types.FromCommon(e.Address),
			Task:    e.Task,
			Source:  progress.SourceRpc,
		})
	}
	s.taskCache.ReplaceAll(refs)
	logger.Infof("[TaskSyncService] 刷新完成, 任务数: %d, pending: %d, 耗时: %v", len(entries), s.taskCache.Len(), time.Since(start))
	return nil
}
