package ordinals

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInscriptionId(t *testing.T) {
	txHash, err := chainhash.NewHashFromStr("7c7d57a194b4cbbcf5b88e68b6a2a921afb17aab76ad17464e43b3cb9a913b33")
	require.NoError(t, err)

	t.Run("string_round_trip", func(t *testing.T) {
		id := NewInscriptionId(*txHash, 0)
		assert.Equal(t, "7c7d57a194b4cbbcf5b88e68b6a2a921afb17aab76ad17464e43b3cb9a913b33i0", id.String())

		parsed, err := NewInscriptionIdFromString(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("non_zero_index", func(t *testing.T) {
		id := NewInscriptionId(*txHash, 42)
		parsed, err := NewInscriptionIdFromString(id.String())
		require.NoError(t, err)
		assert.Equal(t, uint32(42), parsed.Index)
	})

	t.Run("invalid_inputs", func(t *testing.T) {
		for _, input := range []string{
			"",
			"7c7d57a194b4cbbcf5b88e68b6a2a921afb17aab76ad17464e43b3cb9a913b33",
			"not-a-hashi0",
			"7c7d57a194b4cbbcf5b88e68b6a2a921afb17aab76ad17464e43b3cb9a913b33ix",
		} {
			_, err := NewInscriptionIdFromString(input)
			assert.ErrorIs(t, err, errs.InvalidArgument, "input %q", input)
		}
	})

	t.Run("text_marshalling", func(t *testing.T) {
		id := NewInscriptionId(*txHash, 7)
		text, err := id.MarshalText()
		require.NoError(t, err)

		var decoded InscriptionId
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, id, decoded)
	})
}
