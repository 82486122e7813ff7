package state

import (
	"errors"
	"testing"

	"cronos-client-sol/internal/program/errcode"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateSchedule(t *testing.T) {
	const now = int64(1_700_000_000)
	cases := []struct {
		name                   string
		execAt, stopAt, recurr int64
		want                   error
	}{
		{"ok one-shot", now, now, 0, nil},
		{"ok within tolerance", now - 10, now, 0, nil},
		{"stale", now - 11, now, 0, errcode.ErrInvalidExecAtStale},
		{"chronology", now + 10, now + 5, 0, errcode.ErrInvalidChronology},
		{"negative recurr", now, now + 100, -1, errcode.ErrInvalidRecurrNegative},
		{"recurr below min", now, now + 100, 4, errcode.ErrInvalidRecurrBelowMin},
		{"recurr at min", now, now + 100, 5, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateSchedule(c.execAt, c.stopAt, c.recurr, 5, now)
			if c.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
}

func TestValidateSignatory(t *testing.T) {
	daemon := PDA{Address: types.NewAccount().PublicKey}
	ix := InstructionData{Accounts: []AccountMetaData{
		{Pubkey: daemon.Address, IsSigner: true, IsWritable: true},
		{Pubkey: types.NewAccount().PublicKey, IsWritable: true},
	}}
	assert.NoError(t, ValidateSignatory(ix, daemon))

	ix.Accounts[1].IsSigner = true
	assert.ErrorIs(t, ValidateSignatory(ix, daemon), errcode.ErrInvalidSignatory)
}

func TestTask_CheckExecutable(t *testing.T) {
	task := &Task{Status: TaskStatusPending, ExecAt: 100}
	assert.ErrorIs(t, task.CheckExecutable(99), errcode.ErrTaskNotDue)
	assert.NoError(t, task.CheckExecutable(100))
	assert.True(t, task.IsDue(101))

	task.Status = TaskStatusExecuted
	assert.ErrorIs(t, task.CheckExecutable(200), errcode.ErrTaskNotPending)
	assert.False(t, task.IsDue(200))
}

func TestTask_Advance(t *testing.T) {
	once := &Task{Status: TaskStatusPending, ExecAt: 100, StopAt: 100}
	assert.Equal(t, TaskStatusExecuted, once.Advance().Status)
	assert.Equal(t, TaskStatusPending, once.Status)

	recurring := &Task{Status: TaskStatusPending, ExecAt: 100, StopAt: 130, Recurr: 10}
	next := recurring.Advance()
	assert.Equal(t, TaskStatusPending, next.Status)
	assert.Equal(t, int64(110), next.ExecAt)

	// 下一次时间等于 stop_at 时结束
	last := &Task{Status: TaskStatusPending, ExecAt: 120, StopAt: 130, Recurr: 10}
	assert.Equal(t, TaskStatusExecuted, last.Advance().Status)
	assert.Equal(t, int64(120), last.Advance().ExecAt)
}

func TestParseTaskStatus(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusCancelled, TaskStatusExecuted, TaskStatusPending} {
		got, err := ParseTaskStatus(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseTaskStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, TaskStatusPending, got)

	_, err = ParseTaskStatus("done")
	assert.Error(t, err)
	assert.Equal(t, "TaskStatus(9)", TaskStatus(9).String())
}
