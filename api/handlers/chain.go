package handlers

import (
	"fmt"
	"net/http"

	"powledger/blockchain"
	"powledger/p2p"
)

func HandleChain(w http.ResponseWriter, r *http.Request, l Ledger) {
	chain, err := l.Chain()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get chain: %v", err), http.StatusInternalServerError)
		return
	}

	length := len(chain)
	writeJSON(w, http.StatusOK, p2p.ChainResponse{Chain: chain, Length: &length})
}

func HandleChainHeight(w http.ResponseWriter, r *http.Request, l Ledger) {
	head, err := l.LastBlock()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get chain height: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"height": head.Index})
}

func HandleChainHead(w http.ResponseWriter, r *http.Request, l Ledger) {
	head, err := l.LastBlock()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get head block: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		blockchain.Block
		Hash string `json:"hash"`
	}{head, blockchain.HashBlock(&head)})
}

func HandleChainStats(w http.ResponseWriter, r *http.Request, l Ledger) {
	chain, err := l.Chain()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get chain: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, blockchain.ComputeStats(chain))
}
