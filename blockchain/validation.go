package blockchain

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrEmptyChain   = errors.New("chain has no blocks")
	ErrBrokenLink   = errors.New("previous hash does not match parent")
	ErrInvalidProof = errors.New("proof does not satisfy difficulty")
	ErrBadIndex     = errors.New("block index does not follow parent")
)

// BlockError is returned when the block at Index fails validation against
// its parent.
type BlockError struct {
	Index int64
	Err   error
}

func (e BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Index, e.Err)
}

func (e BlockError) Unwrap() error {
	return e.Err
}

// validateLink checks curr against its parent prev.
func validateLink(prev, curr *Block) error {
	if curr.Index != prev.Index+1 {
		return fmt.Errorf("%w: parent %d, got %d", ErrBadIndex, prev.Index, curr.Index)
	}
	if want := HashBlock(prev); curr.PreviousHash != want {
		return fmt.Errorf("%w: expected %.12s, got %.12s", ErrBrokenLink, want, curr.PreviousHash)
	}
	if !ValidProof(prev.Proof, curr.Proof) {
		return fmt.Errorf("%w: last proof %d, proof %d", ErrInvalidProof, prev.Proof, curr.Proof)
	}
	return nil
}

// ValidateChain checks that the chain starts at GenesisIndex, then walks it
// from its second block and returns the first index, linkage or proof
// failure. It never modifies chain.
func ValidateChain(chain Chain) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}
	if chain[0].Index != GenesisIndex {
		return BlockError{Index: chain[0].Index, Err: fmt.Errorf("%w: first block must be %d", ErrBadIndex, GenesisIndex)}
	}

	for i := 1; i < len(chain); i++ {
		if err := validateLink(&chain[i-1], &chain[i]); err != nil {
			slog.Debug("chain validation failed", "position", i, "error", err)
			return BlockError{Index: chain[i].Index, Err: err}
		}
	}
	return nil
}

// IsValidChain reports whether ValidateChain accepts chain.
func IsValidChain(chain Chain) bool {
	return ValidateChain(chain) == nil
}
