package instruction

import (
	"encoding/binary"
	"testing"

	"cronos-client-sol/internal/program/idl"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	return NewBuilder(types.NewAccount().PublicKey)
}

func assertMeta(t *testing.T, m types.AccountMeta, key common.PublicKey, writable, signer bool) {
	t.Helper()
	assert.Equal(t, key, m.PubKey)
	assert.Equal(t, writable, m.IsWritable, "writable %s", key.ToBase58())
	assert.Equal(t, signer, m.IsSigner, "signer %s", key.ToBase58())
}

func assertDisc(t *testing.T, data []byte, name string) {
	t.Helper()
	disc := idl.InstructionDiscriminator(name)
	require.GreaterOrEqual(t, len(data), 8)
	assert.Equal(t, disc[:], data[:8])
}

func TestInitialize(t *testing.T) {
	b := newTestBuilder()
	signer := types.NewAccount().PublicKey
	ix, err := b.Initialize(signer)
	require.NoError(t, err)

	a, err := b.Addresses()
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 8)
	assertMeta(t, ix.Accounts[0], a.Authority.Address, true, false)
	assertMeta(t, ix.Accounts[1], a.Config.Address, true, false)
	assertMeta(t, ix.Accounts[2], a.AuthorityDaemon.Address, true, false)
	assertMeta(t, ix.Accounts[3], a.AuthorityFee.Address, true, false)
	assertMeta(t, ix.Accounts[4], a.Health.Address, true, false)
	assertMeta(t, ix.Accounts[5], signer, true, true)
	assertMeta(t, ix.Accounts[6], systemProgram, false, false)
	assertMeta(t, ix.Accounts[7], a.Treasury.Address, true, false)

	assertDisc(t, ix.Data, NameInitialize)
	assert.Equal(t, []byte{
		a.Authority.Bump, a.Config.Bump, a.AuthorityDaemon.Bump,
		a.AuthorityFee.Bump, a.Health.Bump, a.Treasury.Bump,
	}, ix.Data[8:])
	assert.Equal(t, b.ProgramID(), ix.ProgramID)
}

func TestConfigUpdateWorkerFee(t *testing.T) {
	b := newTestBuilder()
	admin := types.NewAccount().PublicKey
	ix, err := b.ConfigUpdateWorkerFee(admin, 42)
	require.NoError(t, err)

	cfg, err := state.ConfigPDA(b.ProgramID())
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 2)
	assertMeta(t, ix.Accounts[0], admin, true, true)
	assertMeta(t, ix.Accounts[1], cfg.Address, true, false)
	assertDisc(t, ix.Data, NameConfigUpdateWorkerFee)
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(ix.Data[8:]))
}

func TestConfigUpdateAdmin(t *testing.T) {
	b := newTestBuilder()
	admin := types.NewAccount().PublicKey
	next := types.NewAccount().PublicKey
	ix, err := b.ConfigUpdateAdmin(admin, next)
	require.NoError(t, err)
	assertDisc(t, ix.Data, NameConfigUpdateAdmin)
	assert.Equal(t, next.Bytes(), ix.Data[8:])
}

func TestDaemonCreate(t *testing.T) {
	b := newTestBuilder()
	owner := types.NewAccount().PublicKey
	ix, err := b.DaemonCreate(owner)
	require.NoError(t, err)

	daemon, _ := state.DaemonPDA(b.ProgramID(), owner)
	fee, _ := state.FeePDA(b.ProgramID(), daemon.Address)
	require.Len(t, ix.Accounts, 4)
	assertMeta(t, ix.Accounts[0], daemon.Address, true, false)
	assertMeta(t, ix.Accounts[1], fee.Address, true, false)
	assertMeta(t, ix.Accounts[2], owner, true, true)
	assertMeta(t, ix.Accounts[3], systemProgram, false, false)
	assert.Equal(t, []byte{daemon.Bump, fee.Bump}, ix.Data[8:])
}

func TestTaskCreate(t *testing.T) {
	b := newTestBuilder()
	owner := types.NewAccount().PublicKey
	daemon, _ := state.DaemonPDA(b.ProgramID(), owner)
	inner := state.InstructionData{
		ProgramID: types.NewAccount().PublicKey,
		Accounts:  []state.AccountMetaData{{Pubkey: daemon.Address, IsSigner: true}},
		Data:      []byte{1},
	}
	sched := Schedule{ExecAt: 100, StopAt: 200, Recurr: 10}

	ix, task, err := b.TaskCreate(owner, state.NewUint128(2), inner, sched)
	require.NoError(t, err)

	want, _ := state.TaskPDA(b.ProgramID(), daemon.Address, state.NewUint128(2))
	assert.Equal(t, want, task)

	cfg, _ := state.ConfigPDA(b.ProgramID())
	require.Len(t, ix.Accounts, 6)
	assertMeta(t, ix.Accounts[0], sysvarClock, false, false)
	assertMeta(t, ix.Accounts[1], cfg.Address, false, false)
	assertMeta(t, ix.Accounts[2], daemon.Address, true, false)
	assertMeta(t, ix.Accounts[3], owner, true, true)
	assertMeta(t, ix.Accounts[4], task.Address, true, false)
	assertMeta(t, ix.Accounts[5], systemProgram, false, false)

	// 末尾：exec_at, stop_at, recurr, bump
	tail := ix.Data[len(ix.Data)-25:]
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(tail[0:]))
	assert.Equal(t, uint64(200), binary.LittleEndian.Uint64(tail[8:]))
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(tail[16:]))
	assert.Equal(t, task.Bump, tail[24])
}

func TestTaskExecute_RemainingAccounts(t *testing.T) {
	b := newTestBuilder()
	worker := types.NewAccount().PublicKey
	taskAddr := types.NewAccount().PublicKey
	daemon := types.NewAccount().PublicKey
	target := types.NewAccount().PublicKey
	writable := types.NewAccount().PublicKey

	task := &state.Task{
		Daemon: daemon,
		Ix: state.InstructionData{
			ProgramID: target,
			Accounts: []state.AccountMetaData{
				{Pubkey: daemon, IsSigner: true, IsWritable: false},
				{Pubkey: writable, IsSigner: false, IsWritable: true},
			},
		},
		Status: state.TaskStatusPending,
	}
	ix, err := b.TaskExecute(worker, taskAddr, task)
	require.NoError(t, err)

	cfg, _ := state.ConfigPDA(b.ProgramID())
	fee, _ := state.FeePDA(b.ProgramID(), daemon)
	require.Len(t, ix.Accounts, 9)
	assertMeta(t, ix.Accounts[0], sysvarClock, false, false)
	assertMeta(t, ix.Accounts[1], cfg.Address, false, false)
	assertMeta(t, ix.Accounts[2], daemon, true, false)
	assertMeta(t, ix.Accounts[3], fee.Address, true, false)
	assertMeta(t, ix.Accounts[4], taskAddr, true, false)
	assertMeta(t, ix.Accounts[5], worker, true, true)
	assertMeta(t, ix.Accounts[6], daemon, false, false)
	assertMeta(t, ix.Accounts[7], writable, true, false)
	assertMeta(t, ix.Accounts[8], target, false, false)
	assertDisc(t, ix.Data, NameTaskExecute)
	assert.Len(t, ix.Data, 8)
}

func TestDaemonInvoke(t *testing.T) {
	b := newTestBuilder()
	owner := types.NewAccount().PublicKey
	daemon, _ := state.DaemonPDA(b.ProgramID(), owner)
	target := types.NewAccount().PublicKey
	inner := state.InstructionData{
		ProgramID: target,
		Accounts:  []state.AccountMetaData{{Pubkey: daemon.Address, IsSigner: true, IsWritable: true}},
		Data:      []byte("x"),
	}
	ix, err := b.DaemonInvoke(owner, inner)
	require.NoError(t, err)

	require.Len(t, ix.Accounts, 4)
	assertMeta(t, ix.Accounts[0], daemon.Address, false, false)
	assertMeta(t, ix.Accounts[1], owner, true, true)
	assertMeta(t, ix.Accounts[2], daemon.Address, true, false)
	assertMeta(t, ix.Accounts[3], target, false, false)
}

func TestAdminCreateTask_HealthCheckInner(t *testing.T) {
	b := newTestBuilder()
	admin := types.NewAccount().PublicKey
	check, err := b.HealthCheck()
	require.NoError(t, err)

	a, _ := b.Addresses()
	require.Len(t, check.Accounts, 4)
	assertMeta(t, check.Accounts[2], a.AuthorityDaemon.Address, true, true)

	inner := state.NewInstructionData(check)
	assert.NoError(t, state.ValidateSignatory(inner, a.AuthorityDaemon))

	ix, task, err := b.AdminCreateTask(admin, state.NewUint128(0), inner, Schedule{ExecAt: 1, StopAt: 2, Recurr: 10})
	require.NoError(t, err)
	want, _ := state.TaskPDA(b.ProgramID(), a.AuthorityDaemon.Address, state.NewUint128(0))
	assert.Equal(t, want.Address, task.Address)
	require.Len(t, ix.Accounts, 7)
	assertMeta(t, ix.Accounts[0], admin, true, true)
	assertMeta(t, ix.Accounts[4], a.AuthorityDaemon.Address, true, false)
	assertMeta(t, ix.Accounts[6], task.Address, true, false)
}

func TestFeeCollectAndCancel(t *testing.T) {
	b := newTestBuilder()
	signer := types.NewAccount().PublicKey
	daemon := types.NewAccount().PublicKey
	ix, err := b.FeeCollect(signer, daemon)
	require.NoError(t, err)
	fee, _ := state.FeePDA(b.ProgramID(), daemon)
	treasury, _ := state.TreasuryPDA(b.ProgramID())
	require.Len(t, ix.Accounts, 3)
	assertMeta(t, ix.Accounts[0], fee.Address, true, false)
	assertMeta(t, ix.Accounts[1], signer, true, true)
	assertMeta(t, ix.Accounts[2], treasury.Address, true, false)

	task := types.NewAccount().PublicKey
	cancel, err := b.TaskCancel(signer, task)
	require.NoError(t, err)
	require.Len(t, cancel.Accounts, 3)
	assertMeta(t, cancel.Accounts[1], signer, true, true)
	assertMeta(t, cancel.Accounts[2], task, true, false)
	assert.Len(t, cancel.Data, 8)
}
