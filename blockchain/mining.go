package blockchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Difficulty is the number of leading '0' hex characters a proof hash needs.
const Difficulty = 4

var difficultyPrefix = strings.Repeat("0", Difficulty)

// ValidProof reports whether sha256("{lastProof}{proof}") starts with
// Difficulty zero hex characters.
func ValidProof(lastProof, proof int64) bool {
	guess := make([]byte, 0, 40)
	guess = strconv.AppendInt(guess, lastProof, 10)
	guess = strconv.AppendInt(guess, proof, 10)
	sum := sha256.Sum256(guess)
	return hex.EncodeToString(sum[:Difficulty/2+1])[:Difficulty] == difficultyPrefix
}

const DefaultChunkSize = 4096

// Miner searches for proofs. Work is split into rounds; in every round each
// worker scans its own contiguous chunk, and the lowest hit of the first round
// with any hit wins. The result therefore always equals what a sequential
// scan from zero would return.
type Miner struct {
	Workers   int
	ChunkSize int64
}

// DefaultMiner uses one worker per CPU.
func DefaultMiner() Miner {
	return Miner{Workers: runtime.NumCPU(), ChunkSize: DefaultChunkSize}
}

// Mine returns the smallest non-negative proof p with ValidProof(lastProof, p).
// It returns ctx.Err() if the context is canceled first.
func Mine(ctx context.Context, lastProof int64) (int64, error) {
	return DefaultMiner().Mine(ctx, lastProof)
}

func (m Miner) Mine(ctx context.Context, lastProof int64) (int64, error) {
	workers := m.Workers
	if workers < 1 {
		workers = 1
	}
	chunk := m.ChunkSize
	if chunk < 1 {
		chunk = DefaultChunkSize
	}

	for base := int64(0); ; base += int64(workers) * chunk {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		found := make([]int64, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				found[w] = scanChunk(ctx, lastProof, base+int64(w)*chunk, chunk)
			}(w)
		}
		wg.Wait()

		// an aborted chunk may hide a lower proof than a later chunk's hit
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		// chunks are ordered by worker index, so the first hit is the lowest
		for _, proof := range found {
			if proof >= 0 {
				return proof, nil
			}
		}
	}
}

// scanChunk returns the first valid proof in [start, start+n) or -1.
func scanChunk(ctx context.Context, lastProof, start, n int64) int64 {
	for p := start; p < start+n; p++ {
		if p&1023 == 0 && ctx.Err() != nil {
			return -1
		}
		if ValidProof(lastProof, p) {
			return p
		}
	}
	return -1
}
