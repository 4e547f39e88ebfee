package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"powledger/blockchain"
)

// Ledger is the node state the handlers operate on. *ledger.Ledger
// implements it.
type Ledger interface {
	MineBlock(ctx context.Context) (blockchain.Block, error)
	StageTransaction(sender, recipient string, amount float64) (int64, error)
	Chain() (blockchain.Chain, error)
	LastBlock() (blockchain.Block, error)
	BlockByHash(hash string) (blockchain.Block, error)
	PendingTransactions() []blockchain.Transaction
	RegisterNode(address string) bool
	Nodes() []string
	ResolveConflicts(ctx context.Context) (bool, blockchain.Chain, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
