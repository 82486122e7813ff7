package instruction

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Initialize 创建 authority/config/treasury/health 单例，以及 authority 名下的 daemon 与 fee。
// signer 成为初始管理员。
//
// 账户布局：
//
// #0 - authority (mut)
// #1 - config (mut)
// #2 - daemon (mut)
// #3 - fee (mut)
// #4 - health (mut)
// #5 - signer (mut, signer)
// #6 - system program
// #7 - treasury (mut)
func (b *Builder) Initialize(signer common.PublicKey) (types.Instruction, error) {
	a, err := b.Addresses()
	if err != nil {
		return types.Instruction{}, err
	}
	args := []any{
		a.Authority.Bump,
		a.Config.Bump,
		a.AuthorityDaemon.Bump,
		a.AuthorityFee.Bump,
		a.Health.Bump,
		a.Treasury.Bump,
	}
	return b.build(NameInitialize, args, map[string]common.PublicKey{
		"authority":     a.Authority.Address,
		"config":        a.Config.Address,
		"daemon":        a.AuthorityDaemon.Address,
		"fee":           a.AuthorityFee.Address,
		"health":        a.Health.Address,
		"signer":        signer,
		"systemProgram": systemProgram,
		"treasury":      a.Treasury.Address,
	})
}
