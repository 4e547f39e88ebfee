package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"powledger/p2p"
)

func HandleMine(w http.ResponseWriter, r *http.Request, l Ledger) {
	block, err := l.MineBlock(r.Context())
	if err != nil {
		slog.Warn("Mining failed", "error", err)
		http.Error(w, fmt.Sprintf("Mining failed: %v", err), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, p2p.MineResponse{
		Message:      p2p.MessageBlockForged,
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	})
}
