package contract

import (
	"context"
)

// Utxo is an unspent output the transport may chain the next call onto.
type Utxo struct {
	TxId      string `json:"txid"`
	Vout      uint32 `json:"vout"`
	ValueSats int64  `json:"valueSats"`
}

// CallParams are the signing and funding parameters for a contract call.
type CallParams struct {
	SignerPubKey   []byte `json:"signerPubKey"`
	MaxSatsToSpend int64  `json:"maxSatsToSpend"`
	FeeRate        int64  `json:"feeRate"`
	PriorityFee    int64  `json:"priorityFee"`
	// Utxos, when set, funds the call from these outputs instead of a
	// wallet scan.
	Utxos []Utxo `json:"utxos,omitempty"`
}

// Receipt is the result of a broadcast call. NewOutputs lists unconfirmed
// outputs usable as inputs for the next call.
type Receipt struct {
	TxId       string `json:"txid"`
	NewOutputs []Utxo `json:"newOutputs,omitempty"`
}

// Simulation is a dry-run of one contract call, bound to its method and
// arguments.
type Simulation interface {
	// Reverted returns the revert reason as an error, nil when the
	// simulation succeeded.
	Reverted() error
	// Send builds, signs and broadcasts the simulated call.
	Send(ctx context.Context, params CallParams) (*Receipt, error)
}

// Client is the contract-call transport.
type Client interface {
	Simulate(ctx context.Context, method string, args ...any) (Simulation, error)
}
