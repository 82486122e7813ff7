// Package instruction 为 cronos 程序的每条指令提供构造器。
//
// 构造器只做三件事：派生所需 PDA、组装账户表、交给 idl.BuildInstruction 编码。
// 需要读取链上状态补全参数的场景（例如从 config 读取 admin）由 client 包负责。
package instruction

import (
	"fmt"

	"cronos-client-sol/internal/consts"
	"cronos-client-sol/internal/program/idl"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// 指令名，与 IDL instructions 中的 name 一致
const (
	NameAdminCancelTask        = "adminCancelTask"
	NameAdminCreateTask        = "adminCreateTask"
	NameAdminResetHealth       = "adminResetHealth"
	NameConfigUpdateAdmin      = "configUpdateAdmin"
	NameConfigUpdateProgramFee = "configUpdateProgramFee"
	NameConfigUpdateWorkerFee  = "configUpdateWorkerFee"
	NameDaemonCreate           = "daemonCreate"
	NameDaemonInvoke           = "daemonInvoke"
	NameFeeCollect             = "feeCollect"
	NameInitialize             = "initialize"
	NameHealthCheck            = "healthCheck"
	NameTaskCancel             = "taskCancel"
	NameTaskCreate             = "taskCreate"
	NameTaskExecute            = "taskExecute"
)

type Builder struct {
	programID common.PublicKey
	schema    *idl.IDL
}

func NewBuilder(programID common.PublicKey) *Builder {
	return &Builder{
		programID: programID,
		schema:    idl.MustLoad(),
	}
}

func (b *Builder) ProgramID() common.PublicKey {
	return b.programID
}

func (b *Builder) build(name string, args []any, accounts map[string]common.PublicKey) (types.Instruction, error) {
	ix, err := b.schema.BuildInstruction(b.programID, name, args, accounts)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("build %s: %w", name, err)
	}
	return ix, nil
}

var (
	sysvarClock   = consts.SysvarClock.ToCommon()
	systemProgram = consts.SystemProgram.ToCommon()
)

// appendRemaining 追加内嵌指令的账户与目标程序（remaining accounts）。
// daemon 由程序通过 PDA 种子签名，因此外层交易中所有签名标记都清除。
func appendRemaining(ix types.Instruction, inner state.InstructionData) types.Instruction {
	for _, acc := range inner.Accounts {
		ix.Accounts = append(ix.Accounts, types.AccountMeta{
			PubKey:     acc.Pubkey,
			IsSigner:   false,
			IsWritable: acc.IsWritable,
		})
	}
	ix.Accounts = append(ix.Accounts, types.AccountMeta{
		PubKey:     inner.ProgramID,
		IsSigner:   false,
		IsWritable: false,
	})
	return ix
}

// Addresses 一次性派生所有单例 PDA
type Addresses struct {
	Authority       state.PDA
	Config          state.PDA
	Treasury        state.PDA
	Health          state.PDA
	AuthorityDaemon state.PDA // authority 名下的 daemon，管理员任务（如 health 心跳）挂在这里
	AuthorityFee    state.PDA
}

func (b *Builder) Addresses() (Addresses, error) {
	var a Addresses
	var err error
	if a.Authority, err = state.AuthorityPDA(b.programID); err != nil {
		return a, err
	}
	if a.Config, err = state.ConfigPDA(b.programID); err != nil {
		return a, err
	}
	if a.Treasury, err = state.TreasuryPDA(b.programID); err != nil {
		return a, err
	}
	if a.Health, err = state.HealthPDA(b.programID); err != nil {
		return a, err
	}
	if a.AuthorityDaemon, err = state.DaemonPDA(b.programID, a.Authority.Address); err != nil {
		return a, err
	}
	if a.AuthorityFee, err = state.FeePDA(b.programID, a.AuthorityDaemon.Address); err != nil {
		return a, err
	}
	return a, nil
}
