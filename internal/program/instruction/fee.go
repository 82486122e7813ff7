package instruction

import (
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// FeeCollect 把 daemon 的 fee 余额转入 treasury
func (b *Builder) FeeCollect(signer, daemon common.PublicKey) (types.Instruction, error) {
	fee, err := state.FeePDA(b.programID, daemon)
	if err != nil {
		return types.Instruction{}, err
	}
	treasury, err := state.TreasuryPDA(b.programID)
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameFeeCollect, nil, map[string]common.PublicKey{
		"fee":      fee.Address,
		"signer":   signer,
		"treasury": treasury.Address,
	})
}
