package ledger

import (
	"powledger/blockchain"
)

type EventType string

const (
	EventTransactionStaged EventType = "transaction_staged"
	EventBlockMined        EventType = "block_mined"
	EventChainReplaced     EventType = "chain_replaced"
)

// Event describes a ledger state change. Length is the chain length after
// the change.
type Event struct {
	Type        EventType               `json:"type"`
	Block       *blockchain.Block       `json:"block,omitempty"`
	Transaction *blockchain.Transaction `json:"transaction,omitempty"`
	Length      int                     `json:"length"`
}

// EventSink receives ledger events. It is called without the ledger lock held
// and must not block for long.
type EventSink interface {
	Publish(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) Publish(e Event) { f(e) }
