package store

import (
	"errors"

	"powledger/blockchain"
)

var ErrBlockNotFound = errors.New("block not found")

// ChainStore holds a node's authoritative chain. Implementations do not
// validate; callers check linkage and proofs before writing.
type ChainStore interface {

	// Update/Add/Put
	AddBlock(block blockchain.Block) error
	ReplaceChain(chain blockchain.Chain) error

	// Getters
	GetBlockByHash(hash string) (blockchain.Block, error)
	GetHeadBlock() (blockchain.Block, error)
	GetChainHeight() (uint64, error)
	GetChain() (blockchain.Chain, error)
}
