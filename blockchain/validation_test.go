package blockchain

import (
	"context"
	"errors"
	"testing"
)

// buildChain mines n blocks on top of a genesis block.
func buildChain(t *testing.T, n int) Chain {
	t.Helper()

	chain := Chain{NewGenesisBlock(1000)}
	for i := 0; i < n; i++ {
		last := chain.Last()
		proof, err := Mine(context.Background(), last.Proof)
		if err != nil {
			t.Fatalf("Mine() failed: %v", err)
		}
		chain = append(chain, Block{
			Index:        int64(len(chain) + 1),
			Timestamp:    last.Timestamp + 10,
			Transactions: []Transaction{{Sender: "a", Recipient: "b", Amount: float64(i)}},
			Proof:        proof,
			PreviousHash: HashBlock(&last),
		})
	}
	return chain
}

// relinkChain applies edit and then repairs every previous hash so that only
// the edit can make the chain invalid.
func relinkChain(t *testing.T, chain Chain, edit func(Chain)) Chain {
	t.Helper()
	edit(chain)
	for i := 1; i < len(chain); i++ {
		chain[i].PreviousHash = HashBlock(&chain[i-1])
	}
	return chain
}

func TestValidateChain(t *testing.T) {
	valid := buildChain(t, 3)

	tests := []struct {
		name    string
		chain   func() Chain
		wantErr error
	}{
		{
			name:  "genesis only",
			chain: func() Chain { return Chain{NewGenesisBlock(0)} },
		},
		{
			name:  "mined chain",
			chain: func() Chain { return valid.Clone() },
		},
		{
			name:    "empty chain",
			chain:   func() Chain { return Chain{} },
			wantErr: ErrEmptyChain,
		},
		{
			name: "tampered previous hash",
			chain: func() Chain {
				c := valid.Clone()
				c[2].PreviousHash = "0000deadbeef"
				return c
			},
			wantErr: ErrBrokenLink,
		},
		{
			name: "tampered transaction breaks child link",
			chain: func() Chain {
				c := valid.Clone()
				c[1].Transactions[0].Amount = 1e9
				return c
			},
			wantErr: ErrBrokenLink,
		},
		{
			name: "index skips ahead with valid hashes and proofs",
			chain: func() Chain {
				return relinkChain(t, valid.Clone(), func(c Chain) { c[1].Index = 99 })
			},
			wantErr: ErrBadIndex,
		},
		{
			name: "negative index with valid hashes and proofs",
			chain: func() Chain {
				return relinkChain(t, valid.Clone(), func(c Chain) { c[2].Index = -7 })
			},
			wantErr: ErrBadIndex,
		},
		{
			name: "first block is not genesis index",
			chain: func() Chain {
				return relinkChain(t, valid.Clone(), func(c Chain) { c[0].Index = 0 })
			},
			wantErr: ErrBadIndex,
		},
		{
			name: "invalid proof with repaired link",
			chain: func() Chain {
				c := valid.Clone()
				c = c[:2]
				c[1].Proof++
				for ValidProof(c[0].Proof, c[1].Proof) {
					c[1].Proof++
				}
				return c
			},
			wantErr: ErrInvalidProof,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := tt.chain()
			err := ValidateChain(chain)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChain() unexpected error = %v", err)
				}
				if !IsValidChain(chain) {
					t.Error("IsValidChain() = false, want true")
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChain() error = %v, want %v", err, tt.wantErr)
			}
			if IsValidChain(chain) {
				t.Error("IsValidChain() = true, want false")
			}
		})
	}
}

func TestValidateChainReportsBlockIndex(t *testing.T) {
	chain := buildChain(t, 2)
	chain[2].PreviousHash = "nope"

	var blockErr BlockError
	if err := ValidateChain(chain); !errors.As(err, &blockErr) {
		t.Fatalf("Expected BlockError, got %v", err)
	}
	if blockErr.Index != 3 {
		t.Errorf("Expected failing index 3, got %d", blockErr.Index)
	}
}

func TestValidateChainDoesNotMutate(t *testing.T) {
	chain := buildChain(t, 2)
	before := HashBlock(&chain[2])

	ValidateChain(chain)

	if after := HashBlock(&chain[2]); after != before {
		t.Error("ValidateChain() modified its input")
	}
}

func TestChainLastPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for empty chain")
		}
	}()
	Chain{}.Last()
}
