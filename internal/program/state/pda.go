package state

import (
	"fmt"

	"cronos-client-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
)

// PDA 程序派生地址及其 bump
type PDA struct {
	Address common.PublicKey
	Bump    uint8
}

func findPDA(programID common.PublicKey, seeds ...[]byte) (PDA, error) {
	addr, bump, err := common.FindProgramAddress(seeds, programID)
	if err != nil {
		return PDA{}, fmt.Errorf("find program address: %w", err)
	}
	return PDA{Address: addr, Bump: bump}, nil
}

func AuthorityPDA(programID common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedAuthority)
}

func ConfigPDA(programID common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedConfig)
}

func TreasuryPDA(programID common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedTreasury)
}

func HealthPDA(programID common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedHealth)
}

// DaemonPDA 每个 owner 一个 daemon
func DaemonPDA(programID, owner common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedDaemon, owner.Bytes())
}

// FeePDA 每个 daemon 一个 fee 账户
func FeePDA(programID, daemon common.PublicKey) (PDA, error) {
	return findPDA(programID, consts.SeedFee, daemon.Bytes())
}

// TaskPDA (daemon, id) 唯一确定一个任务，id 以大端字节参与派生
func TaskPDA(programID, daemon common.PublicKey, id Uint128) (PDA, error) {
	return findPDA(programID, consts.SeedTask, daemon.Bytes(), id.BigEndian())
}
