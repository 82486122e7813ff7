package instruction

import (
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Schedule 任务时间参数（unix 秒）
type Schedule struct {
	ExecAt int64
	StopAt int64
	Recurr int64 // 0 表示只执行一次
}

// TaskCreate 在 owner 的 daemon 下创建第 taskID 个任务，taskID 必须等于 daemon.task_count
func (b *Builder) TaskCreate(
	owner common.PublicKey,
	taskID state.Uint128,
	inner state.InstructionData,
	sched Schedule,
) (types.Instruction, state.PDA, error) {
	config, err := state.ConfigPDA(b.programID)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	daemon, err := state.DaemonPDA(b.programID, owner)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	task, err := state.TaskPDA(b.programID, daemon.Address, taskID)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	args := []any{inner, sched.ExecAt, sched.StopAt, sched.Recurr, task.Bump}
	ix, err := b.build(NameTaskCreate, args, map[string]common.PublicKey{
		"clock":         sysvarClock,
		"config":        config.Address,
		"daemon":        daemon.Address,
		"owner":         owner,
		"task":          task.Address,
		"systemProgram": systemProgram,
	})
	return ix, task, err
}

// TaskCancel owner 取消自己 daemon 下的任务
func (b *Builder) TaskCancel(owner, task common.PublicKey) (types.Instruction, error) {
	daemon, err := state.DaemonPDA(b.programID, owner)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameTaskCancel, nil, map[string]common.PublicKey{
		"daemon": daemon.Address,
		"owner":  owner,
		"task":   task,
	})
}

// TaskExecute worker 执行到期任务并收取 worker fee。
// 需要已解码的任务数据：daemon 来自 task.Daemon，内嵌指令账户作为 remaining accounts 追加
func (b *Builder) TaskExecute(worker, taskAddr common.PublicKey, task *state.Task) (types.Instruction, error) {
	config, err := state.ConfigPDA(b.programID)
	if err != nil {
		return types.Instruction{}, err
	}
	fee, err := state.FeePDA(b.programID, task.Daemon)
	if err != nil {
		return types.Instruction{}, err
	}
	ix, err := b.build(NameTaskExecute, nil, map[string]common.PublicKey{
		"clock":  sysvarClock,
		"config": config.Address,
		"daemon": task.Daemon,
		"fee":    fee.Address,
		"task":   taskAddr,
		"worker": worker,
	})
	if err != nil {
		return types.Instruction{}, err
	}
	return appendRemaining(ix, task.Ix), nil
}
