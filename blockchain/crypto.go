package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON re-encodes a JSON document with object keys sorted at every
// level. Number literals are kept verbatim.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	// encoding/json writes map keys in sorted order
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func canonicalBlockBytes(block *Block) []byte {
	b := *block
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}

	raw, err := json.Marshal(b)
	if err != nil {
		// Block holds only strings and finite numbers
		panic(fmt.Sprintf("marshal block %d: %v", b.Index, err))
	}
	canonical, err := CanonicalJSON(raw)
	if err != nil {
		panic(fmt.Sprintf("canonicalize block %d: %v", b.Index, err))
	}
	return canonical
}

// HashBlock returns the lowercase hex SHA-256 digest of the block's canonical
// serialization.
func HashBlock(block *Block) string {
	sum := sha256.Sum256(canonicalBlockBytes(block))
	return hex.EncodeToString(sum[:])
}
