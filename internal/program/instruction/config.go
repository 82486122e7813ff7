package instruction

import (
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

func (b *Builder) configAccounts(admin common.PublicKey) (map[string]common.PublicKey, error) {
	config, err := state.ConfigPDA(b.programID)
	if err != nil {
		return nil, err
	}
	return map[string]common.PublicKey{
		"admin":  admin,
		"config": config.Address,
	}, nil
}

// ConfigUpdateAdmin 移交管理员，admin 必须是当前 config.admin
func (b *Builder) ConfigUpdateAdmin(admin, newAdmin common.PublicKey) (types.Instruction, error) {
	accounts, err := b.configAccounts(admin)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameConfigUpdateAdmin, []any{newAdmin}, accounts)
}

// ConfigUpdateProgramFee 每次任务执行支付给程序的费用（lamports）
func (b *Builder) ConfigUpdateProgramFee(admin common.PublicKey, newProgramFee uint64) (types.Instruction, error) {
	accounts, err := b.configAccounts(admin)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameConfigUpdateProgramFee, []any{newProgramFee}, accounts)
}

// ConfigUpdateWorkerFee 每次任务执行支付给 worker 的费用（lamports）
func (b *Builder) ConfigUpdateWorkerFee(admin common.PublicKey, newWorkerFee uint64) (types.Instruction, error) {
	accounts, err := b.configAccounts(admin)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameConfigUpdateWorkerFee, []any{newWorkerFee}, accounts)
}
