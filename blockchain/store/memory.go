package store

import (
	"errors"
	"fmt"
	"sync"

	"powledger/blockchain"
)

type MemoryChainStore struct {
	chain  blockchain.Chain
	hashes map[string]int
	mu     sync.RWMutex
}

func NewMemoryChainStore() *MemoryChainStore {
	return &MemoryChainStore{
		chain:  make(blockchain.Chain, 0),
		hashes: make(map[string]int),
	}
}

func (m *MemoryChainStore) AddBlock(block blockchain.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	block = block.Clone()
	m.hashes[blockchain.HashBlock(&block)] = len(m.chain)
	m.chain = append(m.chain, block)
	return nil
}

func (m *MemoryChainStore) GetHeadBlock() (blockchain.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.chain) == 0 {
		return blockchain.Block{}, blockchain.ErrEmptyChain
	}
	return m.chain[len(m.chain)-1].Clone(), nil
}

func (m *MemoryChainStore) GetBlockByHash(hash string) (blockchain.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pos, ok := m.hashes[hash]
	if !ok {
		return blockchain.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, hash)
	}
	return m.chain[pos].Clone(), nil
}

func (m *MemoryChainStore) GetChain() (blockchain.Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chain.Clone(), nil
}

func (m *MemoryChainStore) GetChainHeight() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.chain)), nil
}

// ReplaceChain atomically swaps in a validated chain.
func (m *MemoryChainStore) ReplaceChain(chain blockchain.Chain) error {
	if len(chain) == 0 {
		return errors.New("cannot replace with empty chain")
	}

	chain = chain.Clone()
	hashes := make(map[string]int, len(chain))
	for i := range chain {
		hashes[blockchain.HashBlock(&chain[i])] = i
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.chain = chain
	m.hashes = hashes
	return nil
}
