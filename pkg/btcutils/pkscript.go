package btcutils

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
)

// AddressFromPkScript renders a human-readable address from an output script.
//
// It recognizes P2TR, P2WPKH, P2WSH, P2PKH and P2SH output shapes. Witness
// outputs are encoded with bech32 (v0) or bech32m (v1), legacy outputs with
// base58check, using the network's prefix/version bytes. Unrecognized scripts
// return the empty string, never an error.
func AddressFromPkScript(pkScript []byte, network common.Network) string {
	params := network.ChainParams()
	if params == nil {
		return ""
	}

	addr, err := func() (btcutil.Address, error) {
		switch {
		case isPayToTaproot(pkScript):
			return btcutil.NewAddressTaproot(pkScript[2:34], params)
		case isPayToWitnessPubKeyHash(pkScript):
			return btcutil.NewAddressWitnessPubKeyHash(pkScript[2:22], params)
		case isPayToWitnessScriptHash(pkScript):
			return btcutil.NewAddressWitnessScriptHash(pkScript[2:34], params)
		case isPayToPubKeyHash(pkScript):
			return btcutil.NewAddressPubKeyHash(pkScript[3:23], params)
		case isPayToScriptHash(pkScript):
			return btcutil.NewAddressScriptHashFromHash(pkScript[2:22], params)
		}
		return nil, errors.WithStack(errs.Unsupported)
	}()
	if err != nil {
		return ""
	}
	return addr.EncodeAddress()
}

// TaprootProgram decodes a bech32m address and returns its 32-byte witness
// program. Non-taproot addresses are rejected with errs.Unsupported.
func TaprootProgram(address string, network common.Network) ([32]byte, error) {
	var program [32]byte

	decoded, err := btcutil.DecodeAddress(address, network.ChainParams())
	if err != nil {
		return program, errors.Wrapf(err, "can't decode address %q", address)
	}
	taproot, ok := decoded.(*btcutil.AddressTaproot)
	if !ok {
		return program, errors.Wrapf(errs.Unsupported, "address %q is not taproot", address)
	}
	copy(program[:], taproot.WitnessProgram())
	return program, nil
}

// OP_1 OP_DATA_32 <32-byte x-only pubkey>
func isPayToTaproot(script []byte) bool {
	return len(script) == 34 &&
		script[0] == txscript.OP_1 &&
		script[1] == txscript.OP_DATA_32
}

// OP_0 OP_DATA_20 <20-byte pubkey hash>
func isPayToWitnessPubKeyHash(script []byte) bool {
	return len(script) == 22 &&
		script[0] == txscript.OP_0 &&
		script[1] == txscript.OP_DATA_20
}

// OP_0 OP_DATA_32 <32-byte script hash>
func isPayToWitnessScriptHash(script []byte) bool {
	return len(script) == 34 &&
		script[0] == txscript.OP_0 &&
		script[1] == txscript.OP_DATA_32
}

// OP_DUP OP_HASH160 OP_DATA_20 <20-byte pubkey hash> OP_EQUALVERIFY OP_CHECKSIG
func isPayToPubKeyHash(script []byte) bool {
	return len(script) == 25 &&
		script[0] == txscript.OP_DUP &&
		script[1] == txscript.OP_HASH160 &&
		script[2] == txscript.OP_DATA_20 &&
		script[23] == txscript.OP_EQUALVERIFY &&
		script[24] == txscript.OP_CHECKSIG
}

// OP_HASH160 OP_DATA_20 <20-byte script hash> OP_EQUAL
func isPayToScriptHash(script []byte) bool {
	return len(script) == 23 &&
		script[0] == txscript.OP_HASH160 &&
		script[1] == txscript.OP_DATA_20 &&
		script[22] == txscript.OP_EQUAL
}
