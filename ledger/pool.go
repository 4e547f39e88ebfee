package ledger

import (
	"powledger/blockchain"
)

// Pool is the FIFO buffer of transactions waiting for a block. It is not
// safe for concurrent use; the Ledger guards it.
type Pool struct {
	txs []blockchain.Transaction
}

func NewPool() *Pool {
	return &Pool{txs: make([]blockchain.Transaction, 0)}
}

// Add appends tx and returns the new pool size.
func (p *Pool) Add(tx blockchain.Transaction) int {
	p.txs = append(p.txs, tx)
	return len(p.txs)
}

func (p *Pool) Len() int {
	return len(p.txs)
}

// Pending returns a copy of the queued transactions in arrival order.
func (p *Pool) Pending() []blockchain.Transaction {
	out := make([]blockchain.Transaction, len(p.txs))
	copy(out, p.txs)
	return out
}

// Take removes and returns the n oldest transactions.
func (p *Pool) Take(n int) []blockchain.Transaction {
	if n > len(p.txs) {
		n = len(p.txs)
	}
	taken := make([]blockchain.Transaction, n)
	copy(taken, p.txs[:n])

	rest := make([]blockchain.Transaction, len(p.txs)-n)
	copy(rest, p.txs[n:])
	p.txs = rest
	return taken
}

// Requeue puts txs back in front of the queue, undoing a Take.
func (p *Pool) Requeue(txs []blockchain.Transaction) {
	p.txs = append(append(make([]blockchain.Transaction, 0, len(txs)+len(p.txs)), txs...), p.txs...)
}
