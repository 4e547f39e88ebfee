package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"powledger/blockchain"
	"powledger/blockchain/store"
	"powledger/consensus"
	"powledger/p2p"
)

var (
	ErrNonFiniteAmount = errors.New("amount must be a finite number")

	errSuperseded = errors.New("chain replaced while mining")
)

// RewardSender marks the mining reward transaction as newly created coin.
const RewardSender = "0"

// Ledger owns a node's chain, pending pool and peer registry. All mutations
// of chain and pool happen under mu, so staging, mining and conflict
// resolution never interleave their writes.
type Ledger struct {
	mu         sync.Mutex
	store      store.ChainStore
	pool       *Pool
	generation uint64
	stopMining context.CancelCauseFunc

	// serializes MineBlock calls
	mineMu sync.Mutex

	registry *p2p.Registry
	resolver *consensus.Resolver
	miner    ProofMiner
	clock    func() time.Time
	sink     EventSink
	logger   *slog.Logger

	rewardTo string
}

// ProofMiner finds the next proof after lastProof. blockchain.Miner is the
// production implementation.
type ProofMiner interface {
	Mine(ctx context.Context, lastProof int64) (int64, error)
}

type Option func(*Ledger)

func WithMiner(m ProofMiner) Option {
	return func(l *Ledger) { l.miner = m }
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithEventSink(sink EventSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

func WithRegistry(r *p2p.Registry) Option {
	return func(l *Ledger) { l.registry = r }
}

func WithResolver(r *consensus.Resolver) Option {
	return func(l *Ledger) { l.resolver = r }
}

// WithMiningReward appends a one-unit transaction from RewardSender to
// nodeID to every block this ledger mines.
func WithMiningReward(nodeID string) Option {
	return func(l *Ledger) { l.rewardTo = nodeID }
}

// New opens a ledger on chainStore, writing a genesis block if the store is
// empty. Peer chains are fetched with fetcher, which may be nil for a node
// that never resolves conflicts.
func New(chainStore store.ChainStore, fetcher consensus.ChainFetcher, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:    chainStore,
		pool:     NewPool(),
		registry: p2p.NewRegistry(),
		miner:    blockchain.DefaultMiner(),
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.resolver == nil {
		l.resolver = consensus.NewResolver(fetcher, consensus.WithLogger(l.logger))
	}

	height, err := chainStore.GetChainHeight()
	if err != nil {
		return nil, fmt.Errorf("failed to read chain height: %w", err)
	}
	if height == 0 {
		genesis := blockchain.NewGenesisBlock(l.now())
		if err := chainStore.AddBlock(genesis); err != nil {
			return nil, fmt.Errorf("failed to add genesis block: %w", err)
		}
		l.logger.Info("Blockchain initialized with genesis block", "hash", blockchain.HashBlock(&genesis))
	}
	return l, nil
}

func (l *Ledger) now() float64 {
	return float64(l.clock().UnixNano()) / 1e9
}

func (l *Ledger) publish(e Event) {
	if l.sink != nil {
		l.sink.Publish(e)
	}
}

// lastBlockLocked must be called with mu held.
func (l *Ledger) lastBlockLocked() (blockchain.Block, error) {
	head, err := l.store.GetHeadBlock()
	if errors.Is(err, blockchain.ErrEmptyChain) {
		panic("invariant violated: empty chain")
	}
	if err != nil {
		return blockchain.Block{}, fmt.Errorf("failed to read head block: %w", err)
	}
	return head, nil
}

func (l *Ledger) LastBlock() (blockchain.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastBlockLocked()
}

// Chain returns a copy of the full chain.
func (l *Ledger) Chain() (blockchain.Chain, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainLocked()
}

func (l *Ledger) chainLocked() (blockchain.Chain, error) {
	chain, err := l.store.GetChain()
	if err != nil {
		return nil, fmt.Errorf("failed to read chain: %w", err)
	}
	if len(chain) == 0 {
		panic("invariant violated: empty chain")
	}
	return chain, nil
}

func (l *Ledger) BlockByHash(hash string) (blockchain.Block, error) {
	return l.store.GetBlockByHash(hash)
}

func (l *Ledger) PendingTransactions() []blockchain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool.Pending()
}

// StageTransaction queues a transaction and returns the index of the block
// expected to include it. Sender, recipient and amount are not checked
// beyond requiring a finite amount.
func (l *Ledger) StageTransaction(sender, recipient string, amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrNonFiniteAmount
	}
	tx := blockchain.Transaction{Sender: sender, Recipient: recipient, Amount: amount}

	l.mu.Lock()
	last, err := l.lastBlockLocked()
	if err != nil {
		l.mu.Unlock()
		return 0, err
	}
	height, err := l.store.GetChainHeight()
	if err != nil {
		l.mu.Unlock()
		return 0, fmt.Errorf("failed to read chain height: %w", err)
	}
	l.pool.Add(tx)
	l.mu.Unlock()

	l.publish(Event{Type: EventTransactionStaged, Transaction: &tx, Length: int(height)})
	return last.Index + 1, nil
}

// MineBlock searches a proof on top of the current head and appends a new
// block holding every transaction staged before the call. Transactions
// staged while the search runs wait for the next block. If the chain is
// replaced during the search, mining restarts on the new head. Canceling ctx
// aborts without touching the pool.
func (l *Ledger) MineBlock(ctx context.Context) (blockchain.Block, error) {
	l.mineMu.Lock()
	defer l.mineMu.Unlock()

	l.mu.Lock()
	staged := l.pool.Len()
	l.mu.Unlock()

	for {
		l.mu.Lock()
		last, err := l.lastBlockLocked()
		if err != nil {
			l.mu.Unlock()
			return blockchain.Block{}, err
		}
		generation := l.generation
		attempt, cancel := context.WithCancelCause(ctx)
		l.stopMining = cancel
		l.mu.Unlock()

		l.logger.Debug("Mining started", "last_index", last.Index, "last_proof", last.Proof)
		proof, err := l.miner.Mine(attempt, last.Proof)

		l.mu.Lock()
		l.stopMining = nil
		cancel(nil)

		if err != nil {
			l.mu.Unlock()
			if ctx.Err() != nil {
				return blockchain.Block{}, fmt.Errorf("mining aborted: %w", ctx.Err())
			}
			if errors.Is(context.Cause(attempt), errSuperseded) {
				l.logger.Info("Chain replaced while mining, restarting")
				continue
			}
			return blockchain.Block{}, fmt.Errorf("mining failed: %w", err)
		}
		if l.generation != generation {
			l.mu.Unlock()
			l.logger.Info("Chain replaced while mining, restarting")
			continue
		}

		block, err := l.appendLocked(last, proof, staged)
		if err != nil {
			l.mu.Unlock()
			return blockchain.Block{}, err
		}
		height, _ := l.store.GetChainHeight()
		l.mu.Unlock()

		l.logger.Info("New block forged", "index", block.Index, "proof", block.Proof, "transactions", len(block.Transactions))
		mined := block.Clone()
		l.publish(Event{Type: EventBlockMined, Block: &mined, Length: int(height)})
		return block, nil
	}
}

// appendLocked builds the block on last, moves the first staged pool entries
// into it and stores it. On a store failure the pool is restored.
func (l *Ledger) appendLocked(last blockchain.Block, proof int64, staged int) (blockchain.Block, error) {
	taken := l.pool.Take(staged)
	txs := make([]blockchain.Transaction, 0, len(taken)+1)
	txs = append(txs, taken...)
	if l.rewardTo != "" {
		txs = append(txs, blockchain.Transaction{Sender: RewardSender, Recipient: l.rewardTo, Amount: 1})
	}

	block := blockchain.Block{
		Index:        last.Index + 1,
		Timestamp:    l.now(),
		Transactions: txs,
		Proof:        proof,
		PreviousHash: blockchain.HashBlock(&last),
	}

	if err := l.store.AddBlock(block); err != nil {
		l.pool.Requeue(taken)
		return blockchain.Block{}, fmt.Errorf("failed to persist block %d: %w", block.Index, err)
	}
	return block, nil
}

func (l *Ledger) RegisterNode(address string) bool {
	added := l.registry.Add(address)
	if added {
		l.logger.Info("Registered node", "address", address, "total", l.registry.Len())
	}
	return added
}

func (l *Ledger) Nodes() []string {
	return l.registry.List()
}

// ResolveConflicts fetches every registered peer's chain and replaces the
// local chain with the longest valid one, if it is strictly longer. Peer
// fetches happen without the ledger lock; the comparison against the local
// chain and the replacement happen atomically under it.
func (l *Ledger) ResolveConflicts(ctx context.Context) (bool, blockchain.Chain, error) {
	peers := l.registry.List()
	results := l.resolver.FetchAll(ctx, peers)

	l.mu.Lock()
	local, err := l.chainLocked()
	if err != nil {
		l.mu.Unlock()
		return false, nil, err
	}

	adopted, chain := consensus.SelectLongest(local, results)
	if !adopted {
		l.mu.Unlock()
		l.logger.Debug("Our chain is authoritative", "length", len(local), "peers", len(peers))
		return false, local, nil
	}

	if err := l.store.ReplaceChain(chain); err != nil {
		l.mu.Unlock()
		return false, local, fmt.Errorf("failed to replace chain: %w", err)
	}
	l.generation++
	if l.stopMining != nil {
		l.stopMining(errSuperseded)
	}
	l.mu.Unlock()

	l.logger.Info("Our chain was replaced", "old_length", len(local), "new_length", len(chain))
	head := chain.Last().Clone()
	l.publish(Event{Type: EventChainReplaced, Block: &head, Length: len(chain)})
	return true, chain.Clone(), nil
}
