package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cronos-client-sol/internal/cache"
	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/logic/progress"
	"cronos-client-sol/internal/mq"
	pkgtypes "cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/errcode"
	"cronos-client-sol/internal/program/instruction"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	now      int64
	clockErr error
	errFor   map[string]error // memo -> 提交错误
	memos    []string
}

func (f *fakeSubmitter) Clock(context.Context) (*state.Clock, error) {
	if f.clockErr != nil {
		return nil, f.clockErr
	}
	return &state.Clock{UnixTimestamp: f.now}, nil
}

func (f *fakeSubmitter) SignAndSubmit(_ context.Context, memo string, ixs []types.Instruction, _ ...types.Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memos = append(f.memos, memo)
	if err := f.errFor[memo]; err != nil {
		return "", err
	}
	return "sig-" + memo, nil
}

type fakePublisher struct {
	events []*mq.ExecutionEvent
}

func (f *fakePublisher) PublishExecutions(_ context.Context, events []*mq.ExecutionEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) Close() {}

type executorFixture struct {
	svc       *ExecutorService
	cache     *cache.TaskCache
	submitter *fakeSubmitter
	publisher *fakePublisher
	pm        *progress.ProgressManager
}

func newExecutorFixture(now int64) *executorFixture {
	f := &executorFixture{
		cache:     cache.NewTaskCache(),
		submitter: &fakeSubmitter{now: now, errFor: map[string]error{}},
		publisher: &fakePublisher{},
		pm:        progress.NewProgressManager(progress.NewMemoryClaimStore(), nil, 60),
	}
	cfg := config.ExecutorConfig{
		TickMs:          1000,
		LookbackSec:     10,
		MaxPerTick:      16,
		RateLimitPerSec: 1000,
		RateBurst:       16,
		SubmitTimeoutMs: 1000,
	}
	f.svc = NewExecutorService(cfg, f.cache, f.pm, f.publisher,
		instruction.NewBuilder(types.NewAccount().PublicKey), f.submitter, types.NewAccount().PublicKey)
	return f
}

func (f *executorFixture) addTask(execAt, stopAt, recurr int64) pkgtypes.Pubkey {
	addr := pkgtypes.FromCommon(types.NewAccount().PublicKey)
	f.cache.Upsert(cache.TaskRef{
		Address: addr,
		Task: &state.Task{
			Daemon: types.NewAccount().PublicKey,
			Ix:     state.InstructionData{ProgramID: types.NewAccount().PublicKey},
			Status: state.TaskStatusPending,
			ExecAt: execAt,
			StopAt: stopAt,
			Recurr: recurr,
		},
		Source: progress.SourceRpc,
	})
	return addr
}

func memoFor(addr pkgtypes.Pubkey) string {
	return "task_execute " + addr.String()
}

func TestExecutor_RunOnce(t *testing.T) {
	const now = int64(1_000)
	f := newExecutorFixture(now)
	oneShot := f.addTask(now-1, now-1, 0)
	recurring := f.addTask(now, now+100, 10)
	future := f.addTask(now+5, now+5, 0)
	stale := f.addTask(now-60, now-60, 0)

	n, err := f.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{memoFor(oneShot), memoFor(recurring)}, f.submitter.memos)

	// 单次任务执行后移出，周期任务推进一个周期
	_, ok := f.cache.Get(oneShot)
	assert.False(t, ok)
	ref, ok := f.cache.Get(recurring)
	require.True(t, ok)
	assert.Equal(t, now+10, ref.Task.ExecAt)
	_, ok = f.cache.Get(future)
	assert.True(t, ok)
	_, ok = f.cache.Get(stale)
	assert.True(t, ok)

	require.Len(t, f.publisher.events, 2)
	for _, ev := range f.publisher.events {
		assert.Equal(t, progress.ExecSucceeded.String(), ev.Status)
		assert.NotEmpty(t, ev.Signature)
	}

	// 同一 (task, exec_at) 不会重复提交
	f.cache.Upsert(cache.TaskRef{Address: oneShot, Task: &state.Task{
		Daemon: types.NewAccount().PublicKey, Status: state.TaskStatusPending, ExecAt: now - 1, StopAt: now - 1,
	}})
	n, err = f.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, f.submitter.memos, 2)
}

func TestExecutor_RejectedAndFailed(t *testing.T) {
	const now = int64(2_000)
	f := newExecutorFixture(now)
	rejected := f.addTask(now, now, 0)
	failed := f.addTask(now, now, 0)
	f.submitter.errFor[memoFor(rejected)] = errcode.Wrap(errors.New("custom program error: 0x1775"))
	f.submitter.errFor[memoFor(failed)] = errors.New("blockhash not found")

	n, err := f.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, ok := f.cache.Get(rejected)
	assert.False(t, ok)
	_, ok = f.cache.Get(failed)
	assert.True(t, ok)

	statuses := map[string]string{}
	for _, ev := range f.publisher.events {
		statuses[ev.Task.String()] = ev.Status
		assert.NotEmpty(t, ev.Error)
	}
	assert.Equal(t, progress.ExecRejected.String(), statuses[rejected.String()])
	assert.Equal(t, progress.ExecFailed.String(), statuses[failed.String()])

	// 失败的任务下一轮重试
	delete(f.submitter.errFor, memoFor(failed))
	n, err = f.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecutor_ClockFallback(t *testing.T) {
	f := newExecutorFixture(0)
	f.submitter.clockErr = errors.New("rpc down")
	f.svc.now = func() time.Time { return time.Unix(5_000, 0) }
	f.addTask(4_999, 4_999, 0)

	n, err := f.svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, progress.ExecSucceeded, classify(nil))
	assert.Equal(t, progress.ExecRejected, classify(errcode.ErrTaskNotPending))
	assert.Equal(t, progress.ExecFailed, classify(errcode.ErrTaskNotDue))
	assert.Equal(t, progress.ExecFailed, classify(context.DeadlineExceeded))
}

func TestExecutor_StartStop(t *testing.T) {
	f := newExecutorFixture(0)
	done := make(chan struct{})
	go func() {
		f.svc.Start()
		close(done)
	}()
	f.svc.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("executor did not stop")
	}
}
