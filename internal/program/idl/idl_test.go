package idl

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Catalog(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cronos", p.Name)
	assert.Equal(t, "0.0.16", p.Version)
	assert.Len(t, p.Instructions, 14)
	assert.Len(t, p.Accounts, 7)
	assert.Len(t, p.Types, 3)
	assert.Len(t, p.Errors, 8)

	for _, name := range []string{"authority", "config", "daemon", "fee", "health", "task", "treasury"} {
		_, ok := p.Account(name)
		assert.True(t, ok, name)
	}
	for _, name := range []string{"InstructionData", "AccountMetaData", "TaskStatus"} {
		_, ok := p.Type(name)
		assert.True(t, ok, name)
	}

	e, ok := p.ErrorByCode(6003)
	require.True(t, ok)
	assert.Equal(t, "InvalidRecurrBelowMin", e.Name)
	assert.Equal(t, "Recurrence interval is below the minimum supported time granulartiy", e.Msg)

	_, ok = p.ErrorByCode(5999)
	assert.False(t, ok)
}

func TestLoad_TaskStatusVariantOrder(t *testing.T) {
	def, ok := MustLoad().Type("TaskStatus")
	require.True(t, ok)
	require.Len(t, def.Type.Variants, 3)
	assert.Equal(t, "Cancelled", def.Type.Variants[0].Name)
	assert.Equal(t, "Executed", def.Type.Variants[1].Name)
	assert.Equal(t, "Pending", def.Type.Variants[2].Name)
}

func TestDiscriminators(t *testing.T) {
	cases := []struct {
		got  Discriminator
		want string
	}{
		{InstructionDiscriminator("taskCreate"), "b662ae47da52dd91"},
		{InstructionDiscriminator("initialize"), "afaf6d1f0d989bed"},
		{InstructionDiscriminator("taskExecute"), "e31b70cdaed96776"},
		{InstructionDiscriminator("configUpdateAdmin"), "d94b9f568311fb31"},
		{InstructionDiscriminator("healthCheck"), "735a63a88a129d83"},
		{AccountDiscriminator("task"), "4f22e537585a3754"},
		{AccountDiscriminator("config"), "9b0caae01efacc82"},
		{AccountDiscriminator("daemon"), "925e21dee3dc5001"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, hex.EncodeToString(c.got[:]))
	}
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "admin_cancel_task", toSnake("adminCancelTask"))
	assert.Equal(t, "initialize", toSnake("initialize"))
	assert.Equal(t, "config_update_program_fee", toSnake("configUpdateProgramFee"))
}

func TestBuildInstruction_AccountsInIDLOrder(t *testing.T) {
	p := MustLoad()
	programID := common.PublicKeyFromString("11111111111111111111111111111112")
	admin := common.PublicKeyFromString("SysvarC1ock11111111111111111111111111111111")
	config := common.PublicKeyFromString("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

	ix, err := p.BuildInstruction(programID, "configUpdateProgramFee", []any{uint64(5000)}, map[string]common.PublicKey{
		"config": config,
		"admin":  admin,
	})
	require.NoError(t, err)

	assert.Equal(t, programID, ix.ProgramID)
	require.Len(t, ix.Accounts, 2)
	assert.Equal(t, admin, ix.Accounts[0].PubKey)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.Equal(t, config, ix.Accounts[1].PubKey)
	assert.False(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)

	require.Len(t, ix.Data, 16)
	disc := InstructionDiscriminator("configUpdateProgramFee")
	assert.Equal(t, disc[:], ix.Data[:8])
	assert.Equal(t, uint64(5000), binary.LittleEndian.Uint64(ix.Data[8:]))
}

func TestBuildInstruction_Errors(t *testing.T) {
	p := MustLoad()
	var pk common.PublicKey

	_, err := p.BuildInstruction(pk, "noSuchInstruction", nil, nil)
	assert.True(t, errors.Is(err, ErrUnknownInstruction))

	_, err = p.BuildInstruction(pk, "configUpdateProgramFee", []any{uint64(1)}, map[string]common.PublicKey{"admin": pk})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAccount))
	assert.Contains(t, err.Error(), "config")

	accounts := map[string]common.PublicKey{"admin": pk, "config": pk}
	_, err = p.BuildInstruction(pk, "configUpdateProgramFee", nil, accounts)
	assert.True(t, errors.Is(err, ErrArgCount))

	// u64 参数传入 int64
	_, err = p.BuildInstruction(pk, "configUpdateProgramFee", []any{int64(1)}, accounts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newProgramFee")

	_, err = p.BuildInstruction(pk, "configUpdateAdmin", []any{"not a key"}, accounts)
	assert.Error(t, err)
}

func TestEncodeInstructionData_U8Args(t *testing.T) {
	data, err := MustLoad().EncodeInstructionData("initialize",
		uint8(1), uint8(2), uint8(3), uint8(4), uint8(5), uint8(6))
	require.NoError(t, err)
	require.Len(t, data, 14)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, data[8:])
}

type testDaemon struct {
	Owner     common.PublicKey
	TaskCount [16]byte
	Bump      uint8
}

func TestEncodeDecodeAccount(t *testing.T) {
	p := MustLoad()
	in := testDaemon{Owner: common.PublicKeyFromString("SysvarC1ock11111111111111111111111111111111"), Bump: 254}
	in.TaskCount[0] = 7

	data, err := p.EncodeAccount("daemon", &in)
	require.NoError(t, err)
	assert.Len(t, data, 8+32+16+1)

	var out testDaemon
	require.NoError(t, p.DecodeAccount("daemon", data, &out))
	assert.Equal(t, in, out)

	// 判别前缀不匹配
	err = p.DecodeAccount("config", data, &out)
	assert.True(t, errors.Is(err, ErrDiscriminator))

	err = p.DecodeAccount("daemon", data[:4], &out)
	assert.Error(t, err)

	err = p.DecodeAccount("nope", data, &out)
	assert.True(t, errors.Is(err, ErrUnknownAccount))
}

func TestCheckStruct_FieldMismatch(t *testing.T) {
	type short struct {
		Owner common.PublicKey
	}
	err := MustLoad().CheckStruct("daemon", short{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field count mismatch")

	type wrongWidth struct {
		Owner     common.PublicKey
		TaskCount uint64
		Bump      uint8
	}
	err = MustLoad().CheckStruct("daemon", wrongWidth{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskCount")
}
