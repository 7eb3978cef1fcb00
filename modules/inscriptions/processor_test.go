package inscriptions

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/types"
	"github.com/gaze-network/ordbridge/modules/inscriptions/datagateway"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/gaze-network/ordbridge/modules/inscriptions/ordinals"
	"github.com/gaze-network/ordbridge/pkg/btcutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInscriptionDg is an in-memory InscriptionDataGateway.
type fakeInscriptionDg struct {
	inscriptions map[string]*entity.Inscription
	latestBlock  *entity.IndexedBlock
}

var _ datagateway.InscriptionDataGateway = (*fakeInscriptionDg)(nil)

func newFakeInscriptionDg() *fakeInscriptionDg {
	return &fakeInscriptionDg{inscriptions: make(map[string]*entity.Inscription)}
}

func (f *fakeInscriptionDg) SaveInscription(_ context.Context, inscription *entity.Inscription) (bool, error) {
	if _, ok := f.inscriptions[inscription.Id]; ok {
		return false, nil
	}
	copied := *inscription
	f.inscriptions[inscription.Id] = &copied
	return true, nil
}

func (f *fakeInscriptionDg) GetInscriptionById(_ context.Context, id string) (*entity.Inscription, error) {
	inscription, ok := f.inscriptions[id]
	if !ok {
		return nil, errs.NotFound
	}
	copied := *inscription
	return &copied, nil
}

func (f *fakeInscriptionDg) GetInscriptionsByOwner(_ context.Context, owner string, limit, offset int32) ([]*entity.Inscription, error) {
	var out []*entity.Inscription
	for _, inscription := range f.inscriptions {
		if inscription.Owner == owner {
			copied := *inscription
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeInscriptionDg) GetLatestInscriptions(_ context.Context, limit int32) ([]*entity.Inscription, error) {
	var out []*entity.Inscription
	for _, inscription := range f.inscriptions {
		copied := *inscription
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *entity.Inscription) int {
		return int(b.InscriptionNumber - a.InscriptionNumber)
	})
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInscriptionDg) GetInscriptionsByContentType(_ context.Context, contentType string, limit int32) ([]*entity.Inscription, error) {
	var out []*entity.Inscription
	for _, inscription := range f.inscriptions {
		if inscription.ContentType == contentType {
			copied := *inscription
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeInscriptionDg) CountInscriptions(_ context.Context) (int64, error) {
	return int64(len(f.inscriptions)), nil
}

func (f *fakeInscriptionDg) GetInscriptionStats(_ context.Context) (*entity.InscriptionStats, error) {
	return &entity.InscriptionStats{TotalInscriptions: int64(len(f.inscriptions))}, nil
}

func (f *fakeInscriptionDg) GetLatestIndexedBlock(_ context.Context) (*entity.IndexedBlock, error) {
	if f.latestBlock == nil {
		return nil, errs.NotFound
	}
	copied := *f.latestBlock
	return &copied, nil
}

func (f *fakeInscriptionDg) DeleteInscriptionsFromHeight(_ context.Context, height int64) (int64, error) {
	var deleted int64
	for id, inscription := range f.inscriptions {
		if inscription.BlockHeight >= height {
			delete(f.inscriptions, id)
			deleted++
		}
	}
	return deleted, nil
}

// recordingHook records every hook invocation.
type recordingHook struct {
	processedTxs []chainhash.Hash
	confirms     []int64
	reorgs       []int64
}

var _ TransactionHook = (*recordingHook)(nil)

func (h *recordingHook) ProcessTransaction(_ context.Context, tx *types.Transaction, _ string) error {
	h.processedTxs = append(h.processedTxs, tx.TxHash)
	return nil
}

func (h *recordingHook) Confirm(_ context.Context, height int64) (int64, error) {
	h.confirms = append(h.confirms, height)
	return 0, nil
}

func (h *recordingHook) Reorg(_ context.Context, height int64) (int64, error) {
	h.reorgs = append(h.reorgs, height)
	return 0, nil
}

func inscriptionWitness(contentType string, body []byte) [][]byte {
	script := ordinalsEnvelopeScript(contentType, body)
	return [][]byte{
		make([]byte, 64), // schnorr signature
		script,
		make([]byte, 33), // control block
	}
}

func ordinalsEnvelopeScript(contentType string, body []byte) []byte {
	return ordinals.NewPushScriptBuilder().
		AddOp(txscript.OP_FALSE).
		AddOp(txscript.OP_IF).
		AddData([]byte("ord")).
		AddData(ordinals.TagContentType.Bytes()).
		AddData([]byte(contentType)).
		AddOp(txscript.OP_0).
		AddData(body).
		AddOp(txscript.OP_ENDIF).
		Script()
}

func taprootScript(fill byte) []byte {
	program := make([]byte, 32)
	for i := range program {
		program[i] = fill
	}
	return append([]byte{txscript.OP_1, txscript.OP_DATA_32}, program...)
}

func testBlock(height int64, txs ...*types.Transaction) *types.Block {
	header := types.BlockHeader{
		Hash:      chainhash.Hash{byte(height)},
		Height:    height,
		Timestamp: time.Unix(1700000000, 0),
	}
	for _, tx := range txs {
		tx.BlockHeight = height
		tx.BlockHash = header.Hash
	}
	return &types.Block{Header: header, Transactions: txs}
}

func revealTx(txHash chainhash.Hash, witnesses ...[][]byte) *types.Transaction {
	tx := &types.Transaction{
		TxHash: txHash,
		TxOut: []*types.TxOut{
			{PkScript: taprootScript(0x05), Value: 546},
		},
	}
	for _, witness := range witnesses {
		tx.TxIn = append(tx.TxIn, &types.TxIn{Witness: witness})
	}
	return tx
}

func TestProcessorProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes_inscriptions_with_dense_numbering", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		p := NewProcessor(dg, common.NetworkMainnet, nil)
		require.NoError(t, p.Init(ctx))

		tx1 := revealTx(chainhash.Hash{0x01}, inscriptionWitness("text/plain", []byte("one")))
		tx2 := revealTx(chainhash.Hash{0x02}, inscriptionWitness("text/plain", []byte("two")))
		require.NoError(t, p.Process(ctx, testBlock(100, tx1, tx2)))

		first, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x01}.String()+"i0")
		require.NoError(t, err)
		assert.Equal(t, int64(0), first.InscriptionNumber)
		assert.Equal(t, "text/plain", first.ContentType)
		assert.Equal(t, []byte("one"), first.Content)
		assert.Equal(t, int64(100), first.BlockHeight)

		second, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x02}.String()+"i0")
		require.NoError(t, err)
		assert.Equal(t, int64(1), second.InscriptionNumber)
	})

	t.Run("local_index_increments_per_transaction", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		p := NewProcessor(dg, common.NetworkMainnet, nil)
		require.NoError(t, p.Init(ctx))

		tx := revealTx(chainhash.Hash{0x01},
			inscriptionWitness("text/plain", []byte("first")),
			inscriptionWitness("text/plain", []byte("second")),
		)
		require.NoError(t, p.Process(ctx, testBlock(100, tx)))

		_, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x01}.String()+"i0")
		require.NoError(t, err)
		_, err = dg.GetInscriptionById(ctx, chainhash.Hash{0x01}.String()+"i1")
		require.NoError(t, err)
	})

	t.Run("conflicting_insert_does_not_consume_a_number", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		p := NewProcessor(dg, common.NetworkMainnet, nil)
		require.NoError(t, p.Init(ctx))

		tx := revealTx(chainhash.Hash{0x01}, inscriptionWitness("text/plain", []byte("one")))
		require.NoError(t, p.Process(ctx, testBlock(100, tx)))
		// same tx seen again, e.g. replayed block
		require.NoError(t, p.Process(ctx, testBlock(100, tx)))

		fresh := revealTx(chainhash.Hash{0x02}, inscriptionWitness("text/plain", []byte("two")))
		require.NoError(t, p.Process(ctx, testBlock(101, fresh)))

		second, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x02}.String()+"i0")
		require.NoError(t, err)
		assert.Equal(t, int64(1), second.InscriptionNumber)
	})

	t.Run("owner_is_first_output_address", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		p := NewProcessor(dg, common.NetworkMainnet, nil)
		require.NoError(t, p.Init(ctx))

		tx := revealTx(chainhash.Hash{0x01}, inscriptionWitness("text/plain", []byte("one")))
		require.NoError(t, p.Process(ctx, testBlock(100, tx)))

		inscription, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x01}.String()+"i0")
		require.NoError(t, err)
		assert.Equal(t, btcutils.AddressFromPkScript(taprootScript(0x05), common.NetworkMainnet), inscription.Owner)
	})

	t.Run("skips_inputs_without_envelope", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		p := NewProcessor(dg, common.NetworkMainnet, nil)
		require.NoError(t, p.Init(ctx))

		tx := revealTx(chainhash.Hash{0x01}, [][]byte{make([]byte, 64)})
		require.NoError(t, p.Process(ctx, testBlock(100, tx)))

		count, err := dg.CountInscriptions(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("invokes_hook_per_transaction_and_confirm_per_block", func(t *testing.T) {
		dg := newFakeInscriptionDg()
		hook := &recordingHook{}
		p := NewProcessor(dg, common.NetworkMainnet, hook)
		require.NoError(t, p.Init(ctx))

		tx1 := revealTx(chainhash.Hash{0x01}, inscriptionWitness("text/plain", []byte("one")))
		tx2 := revealTx(chainhash.Hash{0x02}, [][]byte{})
		require.NoError(t, p.Process(ctx, testBlock(100, tx1, tx2)))

		// the hook sees every transaction, inscription-bearing or not
		assert.Equal(t, []chainhash.Hash{{0x01}, {0x02}}, hook.processedTxs)
		assert.Equal(t, []int64{100}, hook.confirms)
	})
}

func TestProcessorRevertFrom(t *testing.T) {
	ctx := context.Background()
	dg := newFakeInscriptionDg()
	hook := &recordingHook{}
	p := NewProcessor(dg, common.NetworkMainnet, hook)
	require.NoError(t, p.Init(ctx))

	require.NoError(t, p.Process(ctx, testBlock(100,
		revealTx(chainhash.Hash{0x01}, inscriptionWitness("text/plain", []byte("one"))))))
	require.NoError(t, p.Process(ctx, testBlock(101,
		revealTx(chainhash.Hash{0x02}, inscriptionWitness("text/plain", []byte("two"))))))

	require.NoError(t, p.RevertFrom(ctx, 101))

	count, err := dg.CountInscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []int64{101}, hook.reorgs)

	// the counter rewinds with the store, so the next inscription reuses
	// the reverted number
	require.NoError(t, p.Process(ctx, testBlock(101,
		revealTx(chainhash.Hash{0x03}, inscriptionWitness("text/plain", []byte("three"))))))
	replacement, err := dg.GetInscriptionById(ctx, chainhash.Hash{0x03}.String()+"i0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), replacement.InscriptionNumber)
}

func TestProcessorCurrentBlock(t *testing.T) {
	ctx := context.Background()
	dg := newFakeInscriptionDg()
	p := NewProcessor(dg, common.NetworkMainnet, nil)

	_, err := p.CurrentBlock(ctx)
	assert.ErrorIs(t, err, errs.NotFound)

	dg.latestBlock = &entity.IndexedBlock{Height: 123, Hash: chainhash.Hash{0x07}}
	header, err := p.CurrentBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(123), header.Height)
	assert.Equal(t, chainhash.Hash{0x07}, header.Hash)
}
