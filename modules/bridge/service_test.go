package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/types"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gaze-network/ordbridge/modules/bridge/datagateway"
	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
	"github.com/gaze-network/ordbridge/pkg/btcutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBridgeDg is an in-memory BridgeDataGateway.
type fakeBridgeDg struct {
	claims map[string]*entity.BurnClaim
}

var _ datagateway.BridgeDataGateway = (*fakeBridgeDg)(nil)

func newFakeBridgeDg() *fakeBridgeDg {
	return &fakeBridgeDg{claims: make(map[string]*entity.BurnClaim)}
}

func (f *fakeBridgeDg) CreateBurnClaim(_ context.Context, claim *entity.BurnClaim) (bool, error) {
	if _, ok := f.claims[claim.InscriptionId]; ok {
		return false, nil
	}
	stored := *claim
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.claims[claim.InscriptionId] = &stored
	return true, nil
}

func (f *fakeBridgeDg) GetBurnClaim(_ context.Context, inscriptionId string) (*entity.BurnClaim, error) {
	claim, ok := f.claims[inscriptionId]
	if !ok {
		return nil, errs.NotFound
	}
	copied := *claim
	return &copied, nil
}

func (f *fakeBridgeDg) GetBurnClaimsBySender(_ context.Context, sender string, limit, offset int32) ([]*entity.BurnClaim, error) {
	var out []*entity.BurnClaim
	for _, claim := range f.claims {
		if claim.SenderAddress == sender {
			copied := *claim
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBridgeDg) GetBurnClaimsByStatus(_ context.Context, status entity.ClaimStatus, limit int32) ([]*entity.BurnClaim, error) {
	var out []*entity.BurnClaim
	for _, claim := range f.claims {
		if claim.Status == status {
			copied := *claim
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *entity.BurnClaim) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBridgeDg) CountBurnClaimsByStatus(_ context.Context) (map[entity.ClaimStatus]int64, error) {
	counts := make(map[entity.ClaimStatus]int64)
	for _, claim := range f.claims {
		counts[claim.Status]++
	}
	return counts, nil
}

func (f *fakeBridgeDg) UpdateBurnClaimStatus(_ context.Context, inscriptionId string, from []entity.ClaimStatus, to entity.ClaimStatus, attestTxId *string) (bool, error) {
	claim, ok := f.claims[inscriptionId]
	if !ok || !slices.Contains(from, claim.Status) {
		return false, nil
	}
	claim.Status = to
	if attestTxId != nil {
		claim.AttestTxId = attestTxId
	}
	claim.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeBridgeDg) ConfirmBurnClaims(_ context.Context, currentHeight, requiredConfirmations int64) (int64, error) {
	var promoted int64
	for _, claim := range f.claims {
		if claim.Status == entity.ClaimStatusDetected && currentHeight-claim.BurnBlockHeight >= requiredConfirmations {
			claim.Status = entity.ClaimStatusConfirmed
			claim.UpdatedAt = time.Now()
			promoted++
		}
	}
	return promoted, nil
}

func (f *fakeBridgeDg) RetryFailedBurnClaims(_ context.Context) (int64, error) {
	var count int64
	for _, claim := range f.claims {
		if claim.Status == entity.ClaimStatusFailed {
			claim.Status = entity.ClaimStatusConfirmed
			claim.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (f *fakeBridgeDg) DeleteDetectedBurnClaimsFromHeight(_ context.Context, height int64) (int64, error) {
	var deleted int64
	for id, claim := range f.claims {
		if claim.Status == entity.ClaimStatusDetected && claim.BurnBlockHeight >= height {
			delete(f.claims, id)
			deleted++
		}
	}
	return deleted, nil
}

func taprootPkScript(fill byte) []byte {
	program := make([]byte, 32)
	for i := range program {
		program[i] = fill
	}
	return append([]byte{txscript.OP_1, txscript.OP_DATA_32}, program...)
}

type serviceFixture struct {
	service  *Service
	dg       *fakeBridgeDg
	burnAddr string
	oracle   string
	prevTx   chainhash.Hash
	inscId   string
}

func newServiceFixture(t *testing.T, config Config) *serviceFixture {
	t.Helper()
	burnAddr := btcutils.AddressFromPkScript(taprootPkScript(0x01), common.NetworkMainnet)
	oracle := btcutils.AddressFromPkScript(taprootPkScript(0x02), common.NetworkMainnet)
	require.NotEmpty(t, burnAddr)
	require.NotEmpty(t, oracle)

	config.BurnAddress = burnAddr
	if config.OracleFeeAddress == "use-oracle" {
		config.OracleFeeAddress = oracle
	}

	prevTx := chainhash.Hash{0xaa}
	inscId := prevTx.String() + "i0"

	dg := newFakeBridgeDg()
	service := NewService(dg, loadTestCollection(t, inscId), common.NetworkMainnet, config)

	return &serviceFixture{
		service:  service,
		dg:       dg,
		burnAddr: burnAddr,
		oracle:   oracle,
		prevTx:   prevTx,
		inscId:   inscId,
	}
}

// loadTestCollection writes an 8-item collection file where the last item is
// inscId, so its token id is 7.
func loadTestCollection(t *testing.T, inscId string) *collection.Collection {
	t.Helper()
	items := make([]map[string]string, 0, 8)
	for i := 0; i < 7; i++ {
		items = append(items, map[string]string{
			"id": chainhash.Hash{0x10, byte(i)}.String() + "i0",
		})
	}
	items = append(items, map[string]string{"id": inscId})
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "collection.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	coll, err := collection.LoadFromFile(path, "Test Apes", "TAPE")
	require.NoError(t, err)
	require.Equal(t, 8, coll.Size())
	return coll
}

// burnTx builds a transaction spending f.prevTx:0 to the burn address, with
// an optional second output.
func (f *serviceFixture) burnTx(height int64, secondOutput *types.TxOut) *types.Transaction {
	tx := &types.Transaction{
		BlockHeight: height,
		BlockHash:   chainhash.Hash{0xbb},
		TxHash:      chainhash.Hash{0xcc},
		TxIn: []*types.TxIn{
			{PreviousOutTxHash: f.prevTx, PreviousOutIndex: 0},
		},
		TxOut: []*types.TxOut{
			{PkScript: taprootPkScript(0x01), Value: 546},
		},
	}
	if secondOutput != nil {
		tx.TxOut = append(tx.TxOut, secondOutput)
	}
	return tx
}

func TestBurnDetection(t *testing.T) {
	ctx := context.Background()

	t.Run("happy_path_to_attested", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, &types.TxOut{PkScript: taprootPkScript(0x03), Value: 1000})

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))

		claim, err := f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Equal(t, entity.ClaimStatusDetected, claim.Status)
		assert.Equal(t, int64(7), claim.TokenId)
		assert.Equal(t, int64(100), claim.BurnBlockHeight)

		// not deep enough yet
		promoted, err := f.service.Confirm(ctx, 105)
		require.NoError(t, err)
		assert.Zero(t, promoted)

		promoted, err = f.service.Confirm(ctx, 106)
		require.NoError(t, err)
		assert.Equal(t, int64(1), promoted)

		require.NoError(t, f.service.MarkAttested(ctx, f.inscId, "T"))
		claim, err = f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Equal(t, entity.ClaimStatusAttested, claim.Status)
		require.NotNil(t, claim.AttestTxId)
		assert.Equal(t, "T", *claim.AttestTxId)
	})

	t.Run("ignores_non_burn_output", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)
		other := btcutils.AddressFromPkScript(taprootPkScript(0x09), common.NetworkMainnet)

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, other))
		_, err := f.service.GetClaim(ctx, f.inscId)
		assert.ErrorIs(t, err, errs.NotFound)
	})

	t.Run("ignores_inscription_outside_collection", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)
		tx.TxIn[0].PreviousOutIndex = 99 // not a collection item

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		assert.Empty(t, f.dg.claims)
	})

	t.Run("duplicate_burn_is_noop", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		claim, err := f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		first := claim.Status

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		claim, err = f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Equal(t, first, claim.Status)
		assert.Len(t, f.dg.claims, 1)
	})

	t.Run("sender_from_second_output", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		senderScript := taprootPkScript(0x03)
		tx := f.burnTx(100, &types.TxOut{PkScript: senderScript, Value: 1000})

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		claim, err := f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Equal(t, btcutils.AddressFromPkScript(senderScript, common.NetworkMainnet), claim.SenderAddress)
	})

	t.Run("no_second_output_means_empty_sender", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)

		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		claim, err := f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Empty(t, claim.SenderAddress)
	})
}

func TestUnderpaidClaim(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, Config{
		RequiredConfirmations: 6,
		MinFeeSats:            10_000,
		OracleFeeAddress:      "use-oracle",
	})
	// 5000 sats to the oracle fee address, below the 10000 minimum
	tx := f.burnTx(100, &types.TxOut{PkScript: taprootPkScript(0x02), Value: 5000})

	require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
	claim, err := f.service.GetClaim(ctx, f.inscId)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusUnderpaid, claim.Status)

	// underpaid never promotes, no matter the depth
	promoted, err := f.service.Confirm(ctx, 1_000_000)
	require.NoError(t, err)
	assert.Zero(t, promoted)

	ready, err := f.service.ReadyForAttestation(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

func TestSufficientFee(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, Config{
		RequiredConfirmations: 6,
		MinFeeSats:            10_000,
		OracleFeeAddress:      "use-oracle",
	})
	tx := f.burnTx(100, &types.TxOut{PkScript: taprootPkScript(0x02), Value: 10_000})

	require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
	claim, err := f.service.GetClaim(ctx, f.inscId)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusDetected, claim.Status)
}

func TestReorgPreservesCommittedState(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, Config{RequiredConfirmations: 6})

	f.dg.claims["detected-110"] = &entity.BurnClaim{
		InscriptionId: "detected-110", Status: entity.ClaimStatusDetected, BurnBlockHeight: 110,
	}
	f.dg.claims["attested-108"] = &entity.BurnClaim{
		InscriptionId: "attested-108", Status: entity.ClaimStatusAttested, BurnBlockHeight: 108,
	}
	f.dg.claims["detected-105"] = &entity.BurnClaim{
		InscriptionId: "detected-105", Status: entity.ClaimStatusDetected, BurnBlockHeight: 105,
	}

	deleted, err := f.service.Reorg(ctx, 109)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.service.GetClaim(ctx, "detected-110")
	assert.ErrorIs(t, err, errs.NotFound)
	claim, err := f.service.GetClaim(ctx, "attested-108")
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusAttested, claim.Status)
	_, err = f.service.GetClaim(ctx, "detected-105")
	assert.NoError(t, err)
}

func TestRetryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, Config{RequiredConfirmations: 6})
	tx := f.burnTx(100, nil)

	require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
	_, err := f.service.Confirm(ctx, 106)
	require.NoError(t, err)

	require.NoError(t, f.service.MarkFailed(ctx, f.inscId))
	claim, err := f.service.GetClaim(ctx, f.inscId)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusFailed, claim.Status)

	retried, err := f.service.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), retried)

	claim, err = f.service.GetClaim(ctx, f.inscId)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusConfirmed, claim.Status)

	require.NoError(t, f.service.MarkAttested(ctx, f.inscId, "T2"))
	claim, err = f.service.GetClaim(ctx, f.inscId)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusAttested, claim.Status)
}

func TestMarkTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("mark_attested_is_terminal_noop", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)
		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))
		_, err := f.service.Confirm(ctx, 106)
		require.NoError(t, err)

		require.NoError(t, f.service.MarkAttested(ctx, f.inscId, "T"))
		require.NoError(t, f.service.MarkAttested(ctx, f.inscId, "T-other"))

		claim, err := f.service.GetClaim(ctx, f.inscId)
		require.NoError(t, err)
		assert.Equal(t, "T", *claim.AttestTxId)
	})

	t.Run("mark_failed_requires_confirmed", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)
		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))

		// still detected
		err := f.service.MarkFailed(ctx, f.inscId)
		assert.ErrorIs(t, err, errs.Conflict)
	})

	t.Run("mark_attested_requires_confirmed", func(t *testing.T) {
		f := newServiceFixture(t, Config{RequiredConfirmations: 6})
		tx := f.burnTx(100, nil)
		require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))

		err := f.service.MarkAttested(ctx, f.inscId, "T")
		assert.ErrorIs(t, err, errs.Conflict)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, Config{RequiredConfirmations: 6})
	tx := f.burnTx(100, nil)
	require.NoError(t, f.service.ProcessTransaction(ctx, tx, f.burnAddr))

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalClaims)
	assert.Equal(t, int64(1), stats.ClaimsByStatus[entity.ClaimStatusDetected])
	assert.Equal(t, f.burnAddr, stats.BurnAddress)
	assert.Equal(t, int64(6), stats.RequiredConfirmations)
}
