package state

import (
	"encoding/binary"
	"math/big"
)

// Uint128 小端存储的 u128，与 borsh 编码一致
type Uint128 [16]byte

func NewUint128(v uint64) Uint128 {
	var u Uint128
	binary.LittleEndian.PutUint64(u[:8], v)
	return u
}

func Uint128FromBig(b *big.Int) Uint128 {
	var u Uint128
	be := b.FillBytes(make([]byte, 16))
	for i := 0; i < 16; i++ {
		u[i] = be[15-i]
	}
	return u
}

func (u Uint128) Lo() uint64 { return binary.LittleEndian.Uint64(u[:8]) }
func (u Uint128) Hi() uint64 { return binary.LittleEndian.Uint64(u[8:]) }

// Uint64 高 64 位为 0 时返回 ok
func (u Uint128) Uint64() (uint64, bool) {
	return u.Lo(), u.Hi() == 0
}

func (u Uint128) Big() *big.Int {
	return new(big.Int).SetBytes(u.BigEndian())
}

// BigEndian 作为 PDA 种子使用（链上 to_be_bytes）
func (u Uint128) BigEndian() []byte {
	out := make([]byte, 16)
	for i := 0; i < 16; i++ {
		out[i] = u[15-i]
	}
	return out
}

// Inc 返回 u+1（溢出回绕，与链上 checked_add 失败场景无关）
func (u Uint128) Inc() Uint128 {
	lo := u.Lo() + 1
	hi := u.Hi()
	if lo == 0 {
		hi++
	}
	var out Uint128
	binary.LittleEndian.PutUint64(out[:8], lo)
	binary.LittleEndian.PutUint64(out[8:], hi)
	return out
}

func (u Uint128) String() string {
	return u.Big().String()
}
