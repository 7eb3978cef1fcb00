package btcutils

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/ordbridge/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taprootScript(program []byte) []byte {
	return append([]byte{txscript.OP_1, txscript.OP_DATA_32}, program...)
}

func p2wpkhScript(hash []byte) []byte {
	return append([]byte{txscript.OP_0, txscript.OP_DATA_20}, hash...)
}

func p2wshScript(hash []byte) []byte {
	return append([]byte{txscript.OP_0, txscript.OP_DATA_32}, hash...)
}

func p2pkhScript(hash []byte) []byte {
	script := append([]byte{txscript.OP_DUP, txscript.OP_HASH160, txscript.OP_DATA_20}, hash...)
	return append(script, txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
}

func p2shScript(hash []byte) []byte {
	script := append([]byte{txscript.OP_HASH160, txscript.OP_DATA_20}, hash...)
	return append(script, txscript.OP_EQUAL)
}

func TestAddressFromPkScript(t *testing.T) {
	hash20 := make([]byte, 20)
	hash32 := make([]byte, 32)
	for i := range hash20 {
		hash20[i] = byte(i + 1)
	}
	for i := range hash32 {
		hash32[i] = byte(i + 1)
	}

	tests := []struct {
		name     string
		pkScript []byte
		network  common.Network
		prefix   string
	}{
		{"p2tr_mainnet", taprootScript(hash32), common.NetworkMainnet, "bc1p"},
		{"p2tr_testnet", taprootScript(hash32), common.NetworkTestnet, "tb1p"},
		{"p2tr_regtest", taprootScript(hash32), common.NetworkRegtest, "bcrt1p"},
		{"p2wpkh_mainnet", p2wpkhScript(hash20), common.NetworkMainnet, "bc1q"},
		{"p2wpkh_testnet", p2wpkhScript(hash20), common.NetworkTestnet, "tb1q"},
		{"p2wpkh_regtest", p2wpkhScript(hash20), common.NetworkRegtest, "bcrt1q"},
		{"p2wsh_mainnet", p2wshScript(hash32), common.NetworkMainnet, "bc1q"},
		{"p2pkh_mainnet", p2pkhScript(hash20), common.NetworkMainnet, "1"},
		{"p2pkh_testnet", p2pkhScript(hash20), common.NetworkTestnet, "m"},
		{"p2sh_mainnet", p2shScript(hash20), common.NetworkMainnet, "3"},
		{"p2sh_testnet", p2shScript(hash20), common.NetworkTestnet, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address := AddressFromPkScript(tt.pkScript, tt.network)
			require.NotEmpty(t, address)
			assert.True(t, strings.HasPrefix(address, tt.prefix), "address %q does not start with %q", address, tt.prefix)
		})
	}

	t.Run("unrecognized_script_returns_empty", func(t *testing.T) {
		assert.Empty(t, AddressFromPkScript([]byte{txscript.OP_RETURN, 0x01, 0xff}, common.NetworkMainnet))
		assert.Empty(t, AddressFromPkScript(nil, common.NetworkMainnet))
		assert.Empty(t, AddressFromPkScript(taprootScript(hash32)[:33], common.NetworkMainnet))
	})
}

func TestTaprootProgram(t *testing.T) {
	program := make([]byte, 32)
	for i := range program {
		program[i] = byte(0xf0 - i)
	}

	address := AddressFromPkScript(taprootScript(program), common.NetworkMainnet)
	require.NotEmpty(t, address)

	decoded, err := TaprootProgram(address, common.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, program, decoded[:])

	t.Run("non_taproot_is_rejected", func(t *testing.T) {
		hash20 := make([]byte, 20)
		segwitV0 := AddressFromPkScript(p2wpkhScript(hash20), common.NetworkMainnet)
		require.NotEmpty(t, segwitV0)

		_, err := TaprootProgram(segwitV0, common.NetworkMainnet)
		assert.Error(t, err)
	})

	t.Run("garbage_is_rejected", func(t *testing.T) {
		_, err := TaprootProgram("not-an-address", common.NetworkMainnet)
		assert.Error(t, err)
	})
}
