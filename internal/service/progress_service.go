package service

import (
	"context"
	"errors"
	"time"

	"cronos-client-sol/internal/logic/progress"
)

// ProgressService 驱动执行记录的批量落库与历史清理
type ProgressService struct {
	pm            *progress.ProgressManager
	flushInterval time.Duration
	sweepInterval time.Duration
	retain        time.Duration
	ctx           context.Context
	cancel        func(err error)
	done          chan struct{}
}

func NewProgressService(pm *progress.ProgressManager, flushInterval, sweepInterval, retain time.Duration) *ProgressService {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &ProgressService{
		pm:            pm,
		flushInterval: flushInterval,
		sweepInterval: sweepInterval,
		retain:        retain,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

func (s *ProgressService) Start() {
	defer close(s.done)
	s.pm.StartGCLoop(s.ctx, time.Hour, s.retain)
	s.pm.StartSweepLoop(s.ctx, s.sweepInterval)
	s.pm.StartFlushLoop(s.ctx, s.flushInterval)
}

// Stop 等待最后一次 flush 完成
func (s *ProgressService) Stop() {
	s.cancel(errors.New("ProgressService stop"))
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
	}
}
