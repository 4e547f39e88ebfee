package handlers

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"powledger/blockchain/store"
)

// HandleBlockByHash serves /blocks/{hash}.
func HandleBlockByHash(w http.ResponseWriter, r *http.Request, l Ledger) {
	hash := strings.ToLower(mux.Vars(r)["hash"])
	if raw, err := hex.DecodeString(hash); err != nil || len(raw) != 32 {
		http.Error(w, "Invalid block hash format (must be 64 hex characters)", http.StatusBadRequest)
		return
	}

	block, err := l.BlockByHash(hash)
	if errors.Is(err, store.ErrBlockNotFound) {
		http.Error(w, "Block not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get block: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, block)
}
