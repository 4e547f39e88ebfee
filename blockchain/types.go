package blockchain

type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
}

type Block struct {
	Index        int64         `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

// Chain is an ordered block sequence starting at the genesis block.
type Chain []Block

// Last returns the most recently appended block. It panics on an empty chain,
// which can only happen if a caller broke the genesis invariant.
func (c Chain) Last() Block {
	if len(c) == 0 {
		panic("invariant violated: empty chain")
	}
	return c[len(c)-1]
}

// Clone returns a copy that shares no slices with c.
func (c Chain) Clone() Chain {
	out := make(Chain, len(c))
	for i, b := range c {
		out[i] = b.Clone()
	}
	return out
}

func (b Block) Clone() Block {
	txs := make([]Transaction, len(b.Transactions))
	copy(txs, b.Transactions)
	b.Transactions = txs
	return b
}
