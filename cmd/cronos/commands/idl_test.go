package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cronos-client-sol/internal/client"
	"cronos-client-sol/internal/program/errcode"
	"cronos-client-sol/internal/program/idl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdlCmd_PrintsEmbedded(t *testing.T) {
	var out bytes.Buffer
	IdlCmd.SetOut(&out)
	require.NoError(t, IdlCmd.RunE(IdlCmd, nil))

	p, err := idl.Parse(out.Bytes())
	require.NoError(t, err)
	_, ok := p.Instruction("taskExecute")
	assert.True(t, ok)
}

func TestPrintErrors(t *testing.T) {
	p := idl.MustLoad()

	var out bytes.Buffer
	require.NoError(t, printErrors(&out, p, false))
	assert.Contains(t, out.String(), "6006")
	assert.Contains(t, out.String(), "0x1776")
	assert.Contains(t, out.String(), "TaskNotDue")
	assert.NotContains(t, out.String(), "missing in idl")

	out.Reset()
	require.NoError(t, printErrors(&out, p, true))
	var list []struct {
		Code uint32 `json:"code"`
		Name string `json:"name"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, len(errcode.All()))
	assert.Equal(t, uint32(errcode.InvalidChronology), list[0].Code)
	assert.Equal(t, errcode.ErrTaskNotDue.Name, list[6].Name)
}

func TestKeygen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	acc, err := keygen(path, false)
	require.NoError(t, err)

	loaded, err := client.LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, loaded.PublicKey)

	_, err = keygen(path, false)
	assert.ErrorContains(t, err, "already exists")

	again, err := keygen(path, true)
	require.NoError(t, err)
	assert.NotEqual(t, acc.PublicKey, again.PublicKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
