package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"cronos-client-sol/internal/cache"
	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/logic/progress"
	"cronos-client-sol/internal/mq"
	"cronos-client-sol/internal/pkg/logger"
	pkgtypes "cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/errcode"
	"cronos-client-sol/internal/program/instruction"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/time/rate"
)

// Submitter 读取链上时间并提交交易，*client.Client 满足
type Submitter interface {
	Clock(ctx context.Context) (*state.Clock, error)
	SignAndSubmit(ctx context.Context, memo string, ixs []types.Instruction, extra ...types.Account) (string, error)
}

// ExecutorService 周期扫描缓存中到期的 Pending 任务并提交 task_execute
type ExecutorService struct {
	cfg       config.ExecutorConfig
	taskCache *cache.TaskCache
	progress  *progress.ProgressManager
	publisher mq.Publisher
	builder   *instruction.Builder
	submitter Submitter
	worker    common.PublicKey
	limiter   *rate.Limiter
	now       func() time.Time // 本地时间，clock 读取失败时兜底

	stopChan chan struct{}
	ctx      context.Context
	cancel   func(err error)
}

func NewExecutorService(
	cfg config.ExecutorConfig,
	taskCache *cache.TaskCache,
	pm *progress.ProgressManager,
	publisher mq.Publisher,
	builder *instruction.Builder,
	submitter Submitter,
	worker common.PublicKey,
) *ExecutorService {
	ctx, cancel := context.WithCancelCause(context.Background())
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &ExecutorService{
		cfg:       cfg,
		taskCache: taskCache,
		progress:  pm,
		publisher: publisher,
		builder:   builder,
		submitter: submitter,
		worker:    worker,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), max(cfg.RateBurst, 1)),
		now:       time.Now,
		stopChan:  make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *ExecutorService) Start() {
	s.scheduleNext()
	<-s.stopChan
}

func (s *ExecutorService) scheduleNext() {
	time.AfterFunc(time.Duration(s.cfg.TickMs)*time.Millisecond, func() {
		s.safeTick()
		select {
		case <-s.ctx.Done():
			return
		default:
			s.scheduleNext()
		}
	})
}

func (s *ExecutorService) Stop() {
	s.cancel(errors.New("ExecutorService stop"))
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

func (s *ExecutorService) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[ExecutorService] tick panic: %v\n%s", r, debug.Stack())
		}
	}()
	if _, err := s.RunOnce(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnf("[ExecutorService] tick failed: %v", err)
	}
}

// blockTime 以链上 clock 为准，读取失败退回本地时间
func (s *ExecutorService) blockTime(ctx context.Context) int64 {
	clock, err := s.submitter.Clock(ctx)
	if err != nil {
		logger.Warnf("[ExecutorService] 读取 clock 失败，使用本地时间: %v", err)
		return s.now().Unix()
	}
	return clock.UnixTimestamp
}

// RunOnce 执行一轮扫描，返回提交成功的任务数
func (s *ExecutorService) RunOnce(ctx context.Context) (int, error) {
	now := s.blockTime(ctx)
	lookback := s.cfg.LookbackSec

	if stale := s.taskCache.Stale(now, lookback); stale > 0 {
		logger.Warnf("[ExecutorService] %d 个任务超出回看窗口 %ds 仍未执行", stale, lookback)
	}

	due := s.taskCache.Due(now, lookback, s.cfg.MaxPerTick)
	if len(due) == 0 {
		return 0, nil
	}

	var (
		events    []*mq.ExecutionEvent
		succeeded int
	)
	for _, ref := range due {
		if ctx.Err() != nil {
			break
		}
		ev, err := s.execute(ctx, ref, now)
		if err != nil {
			logger.Warnf("[ExecutorService] task %s: %v", ref.Address, err)
			continue
		}
		if ev == nil {
			continue
		}
		if ev.Status == progress.ExecSucceeded.String() {
			succeeded++
		}
		events = append(events, ev)
	}

	if err := s.publisher.PublishExecutions(ctx, events); err != nil {
		logger.Warnf("[ExecutorService] 发布执行事件失败: %v", err)
	}
	logger.Infof("[ExecutorService] blocktime=%d due=%d submitted=%d", now, len(due), succeeded)
	return succeeded, nil
}

// execute 认领并提交一个任务，未认领到时返回 (nil, nil)
func (s *ExecutorService) execute(ctx context.Context, ref cache.TaskRef, now int64) (*mq.ExecutionEvent, error) {
	task := ref.Task
	if !task.IsDue(now) {
		return nil, nil
	}
	taskKey := ref.Address.String()

	claimed, err := s.progress.TryClaim(ctx, taskKey, task.ExecAt)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ix, err := s.builder.TaskExecute(s.worker, ref.Address.ToCommon(), task)
	if err != nil {
		return nil, fmt.Errorf("build task_execute: %w", err)
	}

	submitCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.SubmitTimeoutMs)*time.Millisecond)
	sig, submitErr := s.submitter.SignAndSubmit(submitCtx, "task_execute "+taskKey, []types.Instruction{ix})
	cancel()

	status := classify(submitErr)
	rec := &progress.ExecutionRecord{
		Task:       taskKey,
		Daemon:     task.Daemon.ToBase58(),
		ExecAt:     task.ExecAt,
		Worker:     s.worker.ToBase58(),
		Signature:  sig,
		Status:     status,
		Source:     ref.Source,
		ExecutedAt: s.now().Unix(),
	}
	if submitErr != nil {
		rec.Error = submitErr.Error()
	}
	if err := s.progress.MarkResult(ctx, rec); err != nil {
		logger.Warnf("[ExecutorService] 记录执行结果失败: task=%s err=%v", taskKey, err)
	}

	s.applyLocally(ref, status)

	ev := mq.NewExecutionEvent(ref.Address, pkgtypes.FromCommon(task.Daemon), task.ExecAt)
	ev.Worker = rec.Worker
	ev.Signature = sig
	ev.Status = status.String()
	ev.Error = rec.Error
	return ev, nil
}

// applyLocally 提交后先行推进缓存，等待下一次刷新或账户推送校正
func (s *ExecutorService) applyLocally(ref cache.TaskRef, status progress.ExecStatus) {
	switch status {
	case progress.ExecSucceeded:
		next := ref.Task.Advance()
		s.taskCache.Upsert(cache.TaskRef{Address: ref.Address, Task: &next, Slot: ref.Slot, Source: ref.Source})
	case progress.ExecRejected:
		s.taskCache.Remove(ref.Address)
	}
}

// classify 任务已非 Pending 时不再重试；TaskNotDue 多为时钟偏差，按失败处理留待下一轮
func classify(err error) progress.ExecStatus {
	switch {
	case err == nil:
		return progress.ExecSucceeded
	case errors.Is(err, errcode.ErrTaskNotPending):
		return progress.ExecRejected
	default:
		return progress.ExecFailed
	}
}
