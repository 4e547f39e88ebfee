package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"powledger/ledger"
	"powledger/p2p"
)

func HandleNewTransaction(w http.ResponseWriter, r *http.Request, l Ledger) {
	var req p2p.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if req.Sender == nil || req.Recipient == nil || req.Amount == nil {
		http.Error(w, "Missing values", http.StatusBadRequest)
		return
	}

	index, err := l.StageTransaction(*req.Sender, *req.Recipient, *req.Amount)
	if errors.Is(err, ledger.ErrNonFiniteAmount) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to stage transaction: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Debug("Transaction staged", "sender", *req.Sender, "recipient", *req.Recipient, "amount", *req.Amount, "block", index)
	writeJSON(w, http.StatusCreated, p2p.MessageResponse{
		Message: fmt.Sprintf("Transaction will be added to Block %d", index),
	})
}

func HandlePendingTransactions(w http.ResponseWriter, r *http.Request, l Ledger) {
	writeJSON(w, http.StatusOK, l.PendingTransactions())
}
