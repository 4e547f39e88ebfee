package blockchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func sequentialProof(lastProof int64) int64 {
	var p int64
	for !ValidProof(lastProof, p) {
		p++
	}
	return p
}

func TestValidProof(t *testing.T) {
	proof := sequentialProof(GenesisProof)

	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%d", GenesisProof, proof)))
	if digest := hex.EncodeToString(sum[:]); !strings.HasPrefix(digest, "0000") {
		t.Fatalf("digest %s for proof %d lacks the 0000 prefix", digest, proof)
	}

	for p := int64(0); p < proof; p++ {
		if ValidProof(GenesisProof, p) {
			t.Fatalf("ValidProof(%d, %d) = true below the first valid proof %d", GenesisProof, p, proof)
		}
	}
}

func TestMineReturnsValidProof(t *testing.T) {
	tests := []struct {
		name      string
		lastProof int64
		miner     Miner
	}{
		{"genesis single worker", GenesisProof, Miner{Workers: 1, ChunkSize: 1024}},
		{"genesis many workers", GenesisProof, Miner{Workers: 8, ChunkSize: 64}},
		{"zero", 0, Miner{Workers: 3, ChunkSize: 500}},
		{"negative", -42, Miner{Workers: 2, ChunkSize: 4096}},
		{"defaults for bad config", 7, Miner{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof, err := tt.miner.Mine(context.Background(), tt.lastProof)
			if err != nil {
				t.Fatalf("Mine() failed: %v", err)
			}
			if !ValidProof(tt.lastProof, proof) {
				t.Errorf("Mine(%d) = %d, which is not a valid proof", tt.lastProof, proof)
			}
			if want := sequentialProof(tt.lastProof); proof != want {
				t.Errorf("Mine(%d) = %d, sequential search found %d", tt.lastProof, proof, want)
			}
		})
	}
}

func TestMinePackageFunc(t *testing.T) {
	proof, err := Mine(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Mine() failed: %v", err)
	}
	if !ValidProof(12345, proof) {
		t.Errorf("Mine() returned invalid proof %d", proof)
	}
}

func TestMineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Miner{Workers: 2, ChunkSize: 16}.Mine(ctx, GenesisProof)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
