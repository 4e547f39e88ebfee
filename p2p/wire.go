package p2p

import (
	"powledger/blockchain"
)

// ChainResponse is the body of GET /chain. Length is a pointer so that a
// response without it can be told apart from an empty chain.
type ChainResponse struct {
	Chain  blockchain.Chain `json:"chain"`
	Length *int             `json:"length"`
}

type MineResponse struct {
	Message      string                   `json:"message"`
	Index        int64                    `json:"index"`
	Transactions []blockchain.Transaction `json:"transactions"`
	Proof        int64                    `json:"proof"`
	PreviousHash string                   `json:"previous_hash"`
}

// TransactionRequest uses pointers so missing fields can be rejected.
type TransactionRequest struct {
	Sender    *string  `json:"sender"`
	Recipient *string  `json:"recipient"`
	Amount    *float64 `json:"amount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Nodes []string `json:"nodes"`
}

type RegisterResponse struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type ResolveResponse struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    blockchain.Chain `json:"chain"`
}

const (
	MessageBlockForged        = "New Block Forged"
	MessageNodesAdded         = "New nodes have been added"
	MessageChainReplaced      = "Our chain was replaced"
	MessageChainAuthoritative = "Our chain is authoritative"
)
