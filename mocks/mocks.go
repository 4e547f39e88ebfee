package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"powledger/blockchain"
)

// GenesisTimestamp is the timestamp of every genesis block built here, so
// chains built separately share the same genesis block.
const GenesisTimestamp = 1000

// BuildChain returns a valid chain of a genesis block plus n mined blocks,
// each carrying txsPerBlock transactions.
func BuildChain(n, txsPerBlock int) (blockchain.Chain, error) {
	return ExtendChain(blockchain.Chain{blockchain.NewGenesisBlock(GenesisTimestamp)}, n, txsPerBlock, "miner")
}

// ExtendChain mines n more blocks on top of a copy of chain. The tag ends up
// in the transactions so that chains extended from the same base differ.
func ExtendChain(chain blockchain.Chain, n, txsPerBlock int, tag string) (blockchain.Chain, error) {
	out := chain.Clone()
	for i := 0; i < n; i++ {
		last := out.Last()
		proof, err := blockchain.Mine(context.Background(), last.Proof)
		if err != nil {
			return nil, fmt.Errorf("failed to mine block %d: %w", len(out)+1, err)
		}

		txs := make([]blockchain.Transaction, 0, txsPerBlock)
		for j := 0; j < txsPerBlock; j++ {
			txs = append(txs, blockchain.Transaction{
				Sender:    fmt.Sprintf("%s-sender-%d", tag, j),
				Recipient: fmt.Sprintf("%s-recipient-%d", tag, j),
				Amount:    float64(j + 1),
			})
		}

		out = append(out, blockchain.Block{
			Index:        int64(len(out) + 1),
			Timestamp:    last.Timestamp + 10,
			Transactions: txs,
			Proof:        proof,
			PreviousHash: blockchain.HashBlock(&last),
		})
	}
	return out, nil
}

// TamperPreviousHash returns a copy of chain whose block at pos points to a
// wrong parent.
func TamperPreviousHash(chain blockchain.Chain, pos int) blockchain.Chain {
	out := chain.Clone()
	out[pos].PreviousHash = "0000" + out[pos].PreviousHash[4:]
	if out[pos].PreviousHash == chain[pos].PreviousHash {
		out[pos].PreviousHash = "ffff" + out[pos].PreviousHash[4:]
	}
	return out
}

// StaticFetcher serves canned chains and errors per peer address.
type StaticFetcher struct {
	mu     sync.Mutex
	Chains map[string]blockchain.Chain
	Errors map[string]error
	Delays map[string]time.Duration
	calls  map[string]int
}

func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{
		Chains: make(map[string]blockchain.Chain),
		Errors: make(map[string]error),
		Delays: make(map[string]time.Duration),
		calls:  make(map[string]int),
	}
}

func (f *StaticFetcher) FetchChain(ctx context.Context, peer string) (blockchain.Chain, error) {
	f.mu.Lock()
	f.calls[peer]++
	delay := f.Delays[peer]
	err := f.Errors[peer]
	chain, ok := f.Chains[peer]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unknown peer %s", peer)
	}
	return chain.Clone(), nil
}

// Calls reports how often peer was fetched.
func (f *StaticFetcher) Calls(peer string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[peer]
}

// RenumberBlock returns a copy of chain whose block at pos carries index.
// Previous hashes after pos are recomputed, so links and proofs stay valid.
func RenumberBlock(chain blockchain.Chain, pos int, index int64) blockchain.Chain {
	out := chain.Clone()
	out[pos].Index = index
	for i := pos + 1; i < len(out); i++ {
		out[i].PreviousHash = blockchain.HashBlock(&out[i-1])
	}
	return out
}
