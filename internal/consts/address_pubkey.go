package consts

import (
	"cronos-client-sol/internal/pkg/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对
var (
	SystemProgram types.Pubkey
	MemoProgram   types.Pubkey
	SysvarClock   types.Pubkey
)

// init 自动将 base58 字符串地址转换为 types.Pubkey
func init() {
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)
	MemoProgram = types.PubkeyFromBase58(MemoProgramStr)
	SysvarClock = types.PubkeyFromBase58(SysvarClockStr)
}
