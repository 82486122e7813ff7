package state

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// NewInstructionData 把普通 solana 指令转成可存入任务的形式
func NewInstructionData(ix types.Instruction) InstructionData {
	accounts := make([]AccountMetaData, 0, len(ix.Accounts))
	for _, m := range ix.Accounts {
		accounts = append(accounts, AccountMetaData{
			Pubkey:     m.PubKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		})
	}
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	return InstructionData{
		ProgramID: ix.ProgramID,
		Accounts:  accounts,
		Data:      data,
	}
}

func (d InstructionData) ToInstruction() types.Instruction {
	metas := make([]types.AccountMeta, 0, len(d.Accounts))
	for _, a := range d.Accounts {
		metas = append(metas, types.AccountMeta{
			PubKey:     a.Pubkey,
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return types.Instruction{
		ProgramID: d.ProgramID,
		Accounts:  metas,
		Data:      d.Data,
	}
}

// Signers 返回内嵌指令要求签名的账户
func (d InstructionData) Signers() []common.PublicKey {
	var out []common.PublicKey
	for _, a := range d.Accounts {
		if a.IsSigner {
			out = append(out, a.Pubkey)
		}
	}
	return out
}

// SignableBy 除 daemon 外不允许出现其他签名者
func (d InstructionData) SignableBy(daemon common.PublicKey) bool {
	for _, a := range d.Accounts {
		if a.IsSigner && a.Pubkey != daemon {
			return false
		}
	}
	return true
}
