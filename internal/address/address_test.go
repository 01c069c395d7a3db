package address

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(typ Type, network byte, n int) []byte {
	return append([]byte{byte(typ)<<4 | network}, bytes.Repeat([]byte{0x5a}, n)...)
}

func TestRenderBech32(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		hrp  string
	}{
		{"base mainnet", header(TypeBaseKeyKey, 1, 56), "addr"},
		{"base testnet", header(TypeBaseScriptScript, 0, 56), "addr_test"},
		{"pointer", header(TypePointerKey, 1, 31), "addr"},
		{"enterprise", header(TypeEnterpriseScript, 1, 28), "addr"},
		{"reward mainnet", header(TypeRewardKey, 1, 28), "stake"},
		{"reward testnet", header(TypeRewardScript, 0, 28), "stake_test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.raw)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.hrp+"1"), out)

			hrp, data, err := bech32.DecodeNoLimit(out)
			require.NoError(t, err)
			assert.Equal(t, tt.hrp, hrp)
			back, err := bech32.ConvertBits(data, 5, 8, false)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, back)
		})
	}
}

func TestRenderByron(t *testing.T) {
	raw := []byte{0x82, 0xd8, 0x18, 0x41, 0x00, 0x1a, 0x00, 0x00, 0x30, 0x39}
	out, err := Render(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, base58.Decode(out))
}

func TestRenderMalformed(t *testing.T) {
	tests := map[string][]byte{
		"empty":            nil,
		"short base":       header(TypeBaseKeyKey, 1, 40),
		"long enterprise":  header(TypeEnterpriseKey, 1, 29),
		"short pointer":    header(TypePointerScript, 1, 28),
		"reserved type":    header(Type(10), 1, 28),
		"bootstrap header": {0x80, 0x01},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Render(raw)
			assert.ErrorIs(t, err, ErrMalformedAddress)
		})
	}
}
