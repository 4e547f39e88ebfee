package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"powledger/blockchain"
)

var (
	blockPrefix = []byte("b/")
	hashPrefix  = []byte("h/")
	heightKey   = []byte("m/height")
)

// LevelChainStore keeps the chain in a LevelDB instance backed by memory
// storage, so nothing survives a restart.
type LevelChainStore struct {
	db *leveldb.DB
	mu sync.RWMutex
}

func NewLevelChainStore() (*LevelChainStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}
	return &LevelChainStore{db: db}, nil
}

func (l *LevelChainStore) Close() error {
	return l.db.Close()
}

func blockKey(pos uint64) []byte {
	key := make([]byte, len(blockPrefix)+8)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint64(key[len(blockPrefix):], pos)
	return key
}

func hashKey(hash string) []byte {
	return append(append([]byte{}, hashPrefix...), hash...)
}

func encodeHeight(h uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h)
	return b
}

// putBlock stages block at pos into batch.
func putBlock(batch *leveldb.Batch, pos uint64, block *blockchain.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block %d: %w", block.Index, err)
	}
	batch.Put(blockKey(pos), data)
	batch.Put(hashKey(blockchain.HashBlock(block)), encodeHeight(pos))
	return nil
}

func (l *LevelChainStore) height() (uint64, error) {
	data, err := l.db.Get(heightKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read height: %w", err)
	}
	return binary.BigEndian.Uint64(data), nil
}

func (l *LevelChainStore) blockAt(pos uint64) (blockchain.Block, error) {
	data, err := l.db.Get(blockKey(pos), nil)
	if err != nil {
		return blockchain.Block{}, fmt.Errorf("failed to read block at %d: %w", pos, err)
	}
	var block blockchain.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return blockchain.Block{}, fmt.Errorf("failed to unmarshal block at %d: %w", pos, err)
	}
	return block, nil
}

func (l *LevelChainStore) AddBlock(block blockchain.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.height()
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	if err := putBlock(batch, h, &block); err != nil {
		return err
	}
	batch.Put(heightKey, encodeHeight(h+1))
	return l.db.Write(batch, nil)
}

func (l *LevelChainStore) ReplaceChain(chain blockchain.Chain) error {
	if len(chain) == 0 {
		return errors.New("cannot replace with empty chain")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	batch := new(leveldb.Batch)
	for _, prefix := range [][]byte{blockPrefix, hashPrefix} {
		iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
		for iter.Next() {
			batch.Delete(append([]byte{}, iter.Key()...))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return fmt.Errorf("iterator error: %w", err)
		}
	}

	for i := range chain {
		if err := putBlock(batch, uint64(i), &chain[i]); err != nil {
			return err
		}
	}
	batch.Put(heightKey, encodeHeight(uint64(len(chain))))
	return l.db.Write(batch, nil)
}

func (l *LevelChainStore) GetBlockByHash(hash string) (blockchain.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := l.db.Get(hashKey(hash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return blockchain.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, hash)
	}
	if err != nil {
		return blockchain.Block{}, fmt.Errorf("failed to look up hash: %w", err)
	}
	return l.blockAt(binary.BigEndian.Uint64(data))
}

func (l *LevelChainStore) GetHeadBlock() (blockchain.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, err := l.height()
	if err != nil {
		return blockchain.Block{}, err
	}
	if h == 0 {
		return blockchain.Block{}, blockchain.ErrEmptyChain
	}
	return l.blockAt(h - 1)
}

func (l *LevelChainStore) GetChainHeight() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.height()
}

func (l *LevelChainStore) GetChain() (blockchain.Chain, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := make(blockchain.Chain, 0)
	iter := l.db.NewIterator(util.BytesPrefix(blockPrefix), nil)
	defer iter.Release()

	// big-endian keys iterate in chain order
	for iter.Next() {
		var block blockchain.Block
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block: %w", err)
		}
		chain = append(chain, block)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterator error: %w", err)
	}
	return chain, nil
}
