package ordinals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
)

// InscriptionId identifies an inscription by its reveal transaction and the
// envelope's index within that transaction.
type InscriptionId struct {
	TxHash chainhash.Hash
	Index  uint32
}

func NewInscriptionId(txHash chainhash.Hash, index uint32) InscriptionId {
	return InscriptionId{TxHash: txHash, Index: index}
}

// NewInscriptionIdFromString parses an inscription id of the form
// "{tx_hash}i{index}".
func NewInscriptionIdFromString(s string) (InscriptionId, error) {
	txHashStr, indexStr, ok := strings.Cut(s, "i")
	if !ok {
		return InscriptionId{}, errors.Wrapf(errs.InvalidArgument, "invalid inscription id %q", s)
	}
	txHash, err := chainhash.NewHashFromStr(txHashStr)
	if err != nil {
		return InscriptionId{}, errors.Wrapf(errs.InvalidArgument, "invalid tx hash in inscription id %q: %v", s, err)
	}
	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return InscriptionId{}, errors.Wrapf(errs.InvalidArgument, "invalid index in inscription id %q: %v", s, err)
	}
	return InscriptionId{TxHash: *txHash, Index: uint32(index)}, nil
}

func (i InscriptionId) String() string {
	return fmt.Sprintf("%si%d", i.TxHash.String(), i.Index)
}

func (i InscriptionId) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *InscriptionId) UnmarshalText(text []byte) error {
	parsed, err := NewInscriptionIdFromString(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	*i = parsed
	return nil
}
