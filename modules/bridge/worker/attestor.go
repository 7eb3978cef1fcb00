package worker

import (
	"context"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/modules/bridge"
	"github.com/gaze-network/ordbridge/modules/bridge/contract"
	"github.com/gaze-network/ordbridge/pkg/btcutils"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
)

const (
	// maxBatchSize keeps a cycle's chained unconfirmed outputs below
	// Bitcoin's 25-ancestor mempool policy.
	maxBatchSize = 20
	// maxSatsToSpend bounds runaway fee estimation per call.
	maxSatsToSpend = 100_000

	attestMethod = "attestBurn"

	DefaultInterval = 30 * time.Second
)

// Attestor turns confirmed burn claims into on-chain mint calls. A single
// instance is assumed; it uses one deployer wallet.
type Attestor struct {
	bridge   *bridge.Service
	client   contract.Client
	wallet   *contract.Wallet
	network  common.Network
	interval time.Duration

	quit chan struct{}
	done chan struct{}
}

func NewAttestor(bridge *bridge.Service, client contract.Client, wallet *contract.Wallet, network common.Network, interval time.Duration) *Attestor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Attestor{
		bridge:   bridge,
		client:   client,
		wallet:   wallet,
		network:  network,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run executes cycles on the configured cadence until the context is
// cancelled or Shutdown is called. It blocks.
func (a *Attestor) Run(ctx context.Context) error {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	// claims confirmed while the process was down are picked up right away
	a.runCycleLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.quit:
			return nil
		case <-ticker.C:
			a.runCycleLogged(ctx)
		}
	}
}

func (a *Attestor) runCycleLogged(ctx context.Context) {
	attested, err := a.RunCycle(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Attestation cycle failed", slogx.Error(err))
		return
	}
	if attested > 0 {
		logger.InfoContext(ctx, "Attestation cycle finished", slogx.Int("attested", attested))
	}
}

// Shutdown stops the loop, draining an in-flight cycle first.
func (a *Attestor) Shutdown() {
	close(a.quit)
	<-a.done
}

// RunCycle attests up to maxBatchSize confirmed claims. Per-claim failures
// mark the claim failed and never abort the cycle. Returns the number
// attested.
func (a *Attestor) RunCycle(ctx context.Context) (int, error) {
	claims, err := a.bridge.ReadyForAttestation(ctx, maxBatchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list claims ready for attestation")
	}
	if len(claims) == 0 {
		return 0, nil
	}

	attested := 0
	// unconfirmed change outputs of the previous call, chained so
	// successive calls in one cycle don't race over the same utxos
	var pendingUtxos []contract.Utxo

	for _, claim := range claims {
		inscriptionHash := new(big.Int).SetBytes(crypto.Keccak256([]byte(claim.InscriptionId)))

		sender, err := btcutils.TaprootProgram(claim.SenderAddress, a.network)
		if err != nil {
			a.failClaim(ctx, claim.InscriptionId, "sender address conversion failed", err)
			continue
		}

		simulation, err := a.client.Simulate(ctx, attestMethod, sender[:], inscriptionHash.String(), claim.TokenId)
		if err != nil {
			a.failClaim(ctx, claim.InscriptionId, "simulation request failed", err)
			continue
		}
		if err := simulation.Reverted(); err != nil {
			a.failClaim(ctx, claim.InscriptionId, "simulation reverted", err)
			continue
		}

		params := contract.CallParams{
			SignerPubKey:   a.wallet.PubKey(),
			MaxSatsToSpend: maxSatsToSpend,
			FeeRate:        0,
			PriorityFee:    0,
		}
		if len(pendingUtxos) > 0 {
			params.Utxos = pendingUtxos
		}

		receipt, err := simulation.Send(ctx, params)
		if err != nil {
			a.failClaim(ctx, claim.InscriptionId, "broadcast failed", err)
			continue
		}
		pendingUtxos = receipt.NewOutputs

		if err := a.bridge.MarkAttested(ctx, claim.InscriptionId, receipt.TxId); err != nil {
			return attested, errors.Wrapf(err, "failed to mark claim %s attested", claim.InscriptionId)
		}
		attested++
		logger.InfoContext(ctx, "Attested burn claim",
			slogx.String("inscription_id", claim.InscriptionId),
			slogx.Int64("token_id", claim.TokenId),
			slogx.String("attest_txid", receipt.TxId),
		)
	}
	return attested, nil
}

func (a *Attestor) failClaim(ctx context.Context, inscriptionId, reason string, cause error) {
	logger.WarnContext(ctx, "Attestation failed for claim",
		slogx.String("inscription_id", inscriptionId),
		slogx.String("reason", reason),
		slogx.Error(cause),
	)
	if err := a.bridge.MarkFailed(ctx, inscriptionId); err != nil {
		logger.ErrorContext(ctx, "Failed to mark claim failed",
			slogx.String("inscription_id", inscriptionId),
			slogx.Error(err),
		)
	}
}
