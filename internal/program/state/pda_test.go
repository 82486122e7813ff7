package state

import (
	"testing"

	"cronos-client-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDA_Deterministic(t *testing.T) {
	program := types.NewAccount().PublicKey
	owner := types.NewAccount().PublicKey

	a, err := DaemonPDA(program, owner)
	require.NoError(t, err)
	b, err := DaemonPDA(program, owner)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 反向校验 bump
	addr, err := common.CreateProgramAddress([][]byte{consts.SeedDaemon, owner.Bytes(), {a.Bump}}, program)
	require.NoError(t, err)
	assert.Equal(t, a.Address, addr)

	other, err := DaemonPDA(program, types.NewAccount().PublicKey)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address, other.Address)
}

func TestTaskPDA_UsesBigEndianID(t *testing.T) {
	program := types.NewAccount().PublicKey
	daemon := types.NewAccount().PublicKey

	task, err := TaskPDA(program, daemon, NewUint128(3))
	require.NoError(t, err)
	addr, err := common.CreateProgramAddress(
		[][]byte{consts.SeedTask, daemon.Bytes(), NewUint128(3).BigEndian(), {task.Bump}},
		program,
	)
	require.NoError(t, err)
	assert.Equal(t, task.Address, addr)

	next, err := TaskPDA(program, daemon, NewUint128(4))
	require.NoError(t, err)
	assert.NotEqual(t, task.Address, next.Address)
}

func TestSingletonPDAs_Distinct(t *testing.T) {
	program := types.NewAccount().PublicKey
	seen := map[common.PublicKey]bool{}
	for _, f := range []func(common.PublicKey) (PDA, error){AuthorityPDA, ConfigPDA, TreasuryPDA, HealthPDA} {
		p, err := f(program)
		require.NoError(t, err)
		assert.False(t, seen[p.Address])
		seen[p.Address] = true
	}
}
