package instruction

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// HealthCheck 要求 authority 的 daemon 签名，PDA 无法在交易中签名，
// 所以这条指令只用作 AdminCreateTask 的内嵌指令，由程序在执行任务时代签
func (b *Builder) HealthCheck() (types.Instruction, error) {
	a, err := b.Addresses()
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameHealthCheck, nil, map[string]common.PublicKey{
		"clock":     sysvarClock,
		"authority": a.Authority.Address,
		"daemon":    a.AuthorityDaemon.Address,
		"health":    a.Health.Address,
	})
}

// AdminResetHealth 把 health 的 real/target 时间重置为当前时钟
func (b *Builder) AdminResetHealth(admin common.PublicKey) (types.Instruction, error) {
	a, err := b.Addresses()
	if err != nil {
		return types.Instruction{}, err
	}
	return b.build(NameAdminResetHealth, nil, map[string]common.PublicKey{
		"admin":  admin,
		"clock":  sysvarClock,
		"config": a.Config.Address,
		"health": a.Health.Address,
	})
}
