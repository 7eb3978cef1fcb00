package contract

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/tyler-smith/go-bip39"
)

// Wallet holds the deployer key material derived from a BIP-39 mnemonic at
// the BIP-86 taproot path m/86'/0'/0'/0/0.
type Wallet struct {
	pubKey  *btcec.PublicKey
	network common.Network
}

var bip86Path = []uint32{
	hdkeychain.HardenedKeyStart + 86,
	hdkeychain.HardenedKeyStart + 0,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

func NewWalletFromMnemonic(mnemonic string, network common.Network) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")

	key, err := hdkeychain.NewMaster(seed, network.ChainParams())
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive master key")
	}
	for _, index := range bip86Path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive key at index %d", index)
		}
	}
	pubKey, err := key.ECPubKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get public key")
	}
	return &Wallet{pubKey: pubKey, network: network}, nil
}

// PubKey returns the compressed deployer public key for call signing.
func (w *Wallet) PubKey() []byte {
	return w.pubKey.SerializeCompressed()
}

// TaprootAddress renders the wallet's key-path-only taproot address.
func (w *Wallet) TaprootAddress() (string, error) {
	outputKey := txscript.ComputeTaprootKeyNoScript(w.pubKey)
	address, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), w.network.ChainParams())
	if err != nil {
		return "", errors.Wrap(err, "failed to build taproot address")
	}
	return address.EncodeAddress(), nil
}
