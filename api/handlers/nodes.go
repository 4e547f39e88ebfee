package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"powledger/p2p"
)

// HandleRegisterNodes adds every address in the request to the peer
// registry. The whole request is rejected if any address is invalid.
func HandleRegisterNodes(w http.ResponseWriter, r *http.Request, l Ledger) {
	var req p2p.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(req.Nodes) == 0 {
		http.Error(w, "Error: Please supply a valid list of nodes", http.StatusBadRequest)
		return
	}

	addresses := make([]string, 0, len(req.Nodes))
	for _, raw := range req.Nodes {
		address, err := p2p.ParseNodeAddress(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		addresses = append(addresses, address)
	}
	for _, address := range addresses {
		l.RegisterNode(address)
	}

	writeJSON(w, http.StatusCreated, p2p.RegisterResponse{
		Message:    p2p.MessageNodesAdded,
		TotalNodes: l.Nodes(),
	})
}

func HandleListNodes(w http.ResponseWriter, r *http.Request, l Ledger) {
	writeJSON(w, http.StatusOK, map[string][]string{"nodes": l.Nodes()})
}

func HandleResolve(w http.ResponseWriter, r *http.Request, l Ledger) {
	replaced, chain, err := l.ResolveConflicts(r.Context())
	if err != nil {
		slog.Warn("Conflict resolution failed", "error", err)
		http.Error(w, fmt.Sprintf("Failed to resolve conflicts: %v", err), http.StatusInternalServerError)
		return
	}

	message := p2p.MessageChainAuthoritative
	if replaced {
		message = p2p.MessageChainReplaced
	}
	writeJSON(w, http.StatusOK, p2p.ResolveResponse{Message: message, Replaced: replaced, Chain: chain})
}
