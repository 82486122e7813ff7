package types

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const systemProgram = "11111111111111111111111111111111"

func TestPubkey_Base58(t *testing.T) {
	p, err := TryPubkeyFromBase58(systemProgram)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, systemProgram, p.String())

	_, err = TryPubkeyFromBase58("abc")
	assert.Error(t, err)
	_, err = TryPubkeyFromBase58("0OIl")
	assert.Error(t, err)
	assert.Panics(t, func() { PubkeyFromBase58("bad") })
}

func TestPubkey_Text(t *testing.T) {
	memo := "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"
	var p Pubkey
	require.NoError(t, p.UnmarshalText([]byte(memo)))
	out, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, memo, string(out))

	require.NoError(t, p.UnmarshalText(nil))
	assert.True(t, p.IsZero())
}

func TestPubkey_Common(t *testing.T) {
	c := common.PublicKeyFromString("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	p := FromCommon(c)
	assert.Equal(t, c, p.ToCommon())

	q, err := TryPubkeyFromBytes(c.Bytes())
	require.NoError(t, err)
	assert.Equal(t, p, q)
	_, err = TryPubkeyFromBytes(c.Bytes()[:31])
	assert.Error(t, err)
}
