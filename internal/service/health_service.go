package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/program/state"

	"github.com/robfig/cron/v3"
)

// HealthReader 读取 health 账户，*client.Client 满足
type HealthReader interface {
	Health(ctx context.Context) (*state.Health, error)
}

// HealthService 按 cron 表达式巡检 health 账户，落后超过阈值时告警
type HealthService struct {
	reader  HealthReader
	maxLag  int64
	timeout time.Duration
	cron    *cron.Cron
	lastLag atomic.Int64
}

func NewHealthService(reader HealthReader, spec string, maxLagSec int64, timeout time.Duration) (*HealthService, error) {
	s := &HealthService{
		reader:  reader,
		maxLag:  maxLagSec,
		timeout: timeout,
		cron:    cron.New(cron.WithSeconds()),
	}
	if _, err := s.cron.AddFunc(spec, s.safeCheck); err != nil {
		return nil, fmt.Errorf("invalid health cron %q: %w", spec, err)
	}
	return s, nil
}

func (s *HealthService) Start() {
	s.cron.Run()
}

func (s *HealthService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// LastLag 最近一次巡检得到的落后秒数
func (s *HealthService) LastLag() int64 {
	return s.lastLag.Load()
}

func (s *HealthService) safeCheck() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[HealthService] check panic: %v\n%s", r, debug.Stack())
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Check(ctx); err != nil && !errors.Is(err, ErrHealthLagging) {
		logger.Warnf("[HealthService] check failed: %v", err)
	}
}

// ErrHealthLagging health 落后超过阈值
var ErrHealthLagging = errors.New("health lagging")

// Check 读取一次 health 并返回 lag，超过阈值时返回 ErrHealthLagging
func (s *HealthService) Check(ctx context.Context) (int64, error) {
	h, err := s.reader.Health(ctx)
	if err != nil {
		return 0, fmt.Errorf("read health: %w", err)
	}
	lag := h.Lag()
	s.lastLag.Store(lag)
	if lag > s.maxLag {
		logger.Warnf("[HealthService] real_time=%d target_time=%d lag=%ds 超过阈值 %ds", h.RealTime, h.TargetTime, lag, s.maxLag)
		return lag, fmt.Errorf("%w: %ds > %ds", ErrHealthLagging, lag, s.maxLag)
	}
	logger.Debugf("[HealthService] real_time=%d target_time=%d lag=%ds", h.RealTime, h.TargetTime, lag)
	return lag, nil
}
