package instruction

import (
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// AdminCreateTask 在 authority 的 daemon 下创建任务（内嵌指令可要求 daemon 签名，例如 HealthCheck）
func (b *Builder) AdminCreateTask(
	admin common.PublicKey,
	taskID state.Uint128,
	inner state.InstructionData,
	sched Schedule,
) (types.Instruction, state.PDA, error) {
	a, err := b.Addresses()
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	task, err := state.TaskPDA(b.programID, a.AuthorityDaemon.Address, taskID)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	args := []any{inner, sched.ExecAt, sched.StopAt, sched.Recurr, task.Bump}
	ix, err := b.build(NameAdminCreateTask, args, map[string]common.PublicKey{
		"admin":         admin,
		"authority":     a.Authority.Address,
		"clock":         sysvarClock,
		"config":        a.Config.Address,
		"daemon":        a.AuthorityDaemon.Address,
		"systemProgram": systemProgram,
		"task":          task.Address,
	})
	return ix, task, err
}

// AdminCancelTask 取消 authority daemon 下的任务
func (b *Builder) AdminCancelTask(admin, task common.PublicKey) (types.Instruction, error) {
	a, err := b.Addresses()
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameAdminCancelTask, nil, map[string]common.PublicKey{
		"admin":     admin,
		"authority": a.Authority.Address,
		"config":    a.Config.Address,
		"daemon":    a.AuthorityDaemon.Address,
		"task":      task,
	})
}
