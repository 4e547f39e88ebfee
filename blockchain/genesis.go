package blockchain

const (
	GenesisIndex        = 1
	GenesisProof        = 100
	GenesisPreviousHash = "1"
)

// NewGenesisBlock builds the first block of a chain. The genesis block has no
// predecessor, so its previous hash is a fixed marker and its proof is never
// checked.
func NewGenesisBlock(timestamp float64) Block {
	return Block{
		Index:        GenesisIndex,
		Timestamp:    timestamp,
		Transactions: []Transaction{},
		Proof:        GenesisProof,
		PreviousHash: GenesisPreviousHash,
	}
}
