package state

import (
	"cronos-client-sol/internal/consts"
	"cronos-client-sol/internal/program/errcode"
)

// 以下规则与链上程序保持一致，仅用于提交前的本地预检与 worker 的调度判断，
// 最终以链上校验为准。

// ValidateSchedule 创建任务前的时间线校验
func ValidateSchedule(execAt, stopAt, recurr, minRecurr, now int64) error {
	if execAt < now-consts.StaleToleranceSec {
		return errcode.ErrInvalidExecAtStale
	}
	if execAt > stopAt {
		return errcode.ErrInvalidChronology
	}
	if recurr < 0 {
		return errcode.ErrInvalidRecurrNegative
	}
	if recurr != 0 && recurr < minRecurr {
		return errcode.ErrInvalidRecurrBelowMin
	}
	return nil
}

// ValidateSignatory 内嵌指令只能要求 daemon 签名
func ValidateSignatory(ix InstructionData, daemon PDA) error {
	if !ix.SignableBy(daemon.Address) {
		return errcode.ErrInvalidSignatory
	}
	return nil
}

// CheckExecutable 任务只有在 Pending 且到期后才能执行
func (t *Task) CheckExecutable(now int64) error {
	if t.Status != TaskStatusPending {
		return errcode.ErrTaskNotPending
	}
	if t.ExecAt > now {
		return errcode.ErrTaskNotDue
	}
	return nil
}

func (t *Task) IsDue(now int64) bool {
	return t.CheckExecutable(now) == nil
}

// Advance 模拟一次执行后的状态推进：
// recurr 为 0 或下一次时间不早于 stop_at 时任务结束，否则 exec_at 后移一个周期
func (t *Task) Advance() (next Task) {
	next = *t
	nextExecAt := t.ExecAt + t.Recurr
	if t.Recurr == 0 || nextExecAt >= t.StopAt {
		next.Status = TaskStatusExecuted
		return next
	}
	next.ExecAt = nextExecAt
	return next
}
