package instruction

import (
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// DaemonCreate 为 owner 创建 daemon 与对应 fee 账户
func (b *Builder) DaemonCreate(owner common.PublicKey) (types.Instruction, error) {
	daemon, err := state.DaemonPDA(b.programID, owner)
	if err != nil {
		return types.Instruction{}, err
	}
	fee, err := state.FeePDA(b.programID, daemon.Address)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameDaemonCreate, []any{daemon.Bump, fee.Bump}, map[string]common.PublicKey{
		"daemon":        daemon.Address,
		"fee":           fee.Address,
		"owner":         owner,
		"systemProgram": systemProgram,
	})
}

// DaemonInvoke 由 daemon 立即代 owner 调用 inner，inner 的账户作为 remaining accounts 追加
func (b *Builder) DaemonInvoke(owner common.PublicKey, inner state.InstructionData) (types.Instruction, error) {
	daemon, err := state.DaemonPDA(b.programID, owner)
	if err != nil {
		return types.Instruction{}, err
	}
	ix, err := b.build(NameDaemonInvoke, []any{inner}, map[string]common.PublicKey{
		"daemon": daemon.Address,
		"owner":  owner,
	})
	if err != nil {
		return types.Instruction{}, err
	}
	return appendRemaining(ix, inner), nil
}
