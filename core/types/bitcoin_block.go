package types

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/samber/lo"
)

type BlockHeader struct {
	Hash      chainhash.Hash
	Height    int64
	Version   int32
	PrevBlock chainhash.Hash
	Timestamp time.Time
}

type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
}

// ParseMsgBlock parses btcd/wire.MsgBlock to Block.
func ParseMsgBlock(src *wire.MsgBlock, height int64) *Block {
	hash := src.Header.BlockHash()
	return &Block{
		Header: BlockHeader{
			Hash:      hash,
			Height:    height,
			Version:   src.Header.Version,
			PrevBlock: src.Header.PrevBlock,
			Timestamp: src.Header.Timestamp,
		},
		Transactions: lo.Map(src.Transactions, func(item *wire.MsgTx, _ int) *Transaction {
			return ParseMsgTx(item, height, hash)
		}),
	}
}
