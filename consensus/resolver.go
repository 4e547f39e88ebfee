package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"powledger/blockchain"
)

const DefaultFetchTimeout = 5 * time.Second

var ErrNoFetcher = errors.New("no chain fetcher configured")

// ChainFetcher retrieves a peer's full chain.
type ChainFetcher interface {
	FetchChain(ctx context.Context, peer string) (blockchain.Chain, error)
}

// FetchResult is the outcome of one peer fetch: either a chain or an error.
type FetchResult struct {
	Peer  string
	Chain blockchain.Chain
	Err   error
}

func (r FetchResult) OK() bool {
	return r.Err == nil && len(r.Chain) > 0
}

// SelectLongest applies the longest-valid-chain rule. It returns the first
// candidate that is strictly longer than local and every earlier accepted
// candidate, and passes validation. Failed and empty results are skipped.
func SelectLongest(local blockchain.Chain, results []FetchResult) (bool, blockchain.Chain) {
	maxLength := len(local)
	var best blockchain.Chain

	for _, res := range results {
		if !res.OK() || len(res.Chain) <= maxLength {
			continue
		}
		if !blockchain.IsValidChain(res.Chain) {
			continue
		}
		best = res.Chain
		maxLength = len(res.Chain)
	}

	if best == nil {
		return false, local
	}
	return true, best
}

type Resolver struct {
	fetcher ChainFetcher
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Resolver)

// WithTimeout bounds each peer fetch. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func NewResolver(fetcher ChainFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		timeout: DefaultFetchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchAll fetches every peer concurrently. Results keep the order of peers.
func (r *Resolver) FetchAll(ctx context.Context, peers []string) []FetchResult {
	results := make([]FetchResult, len(peers))

	var wg sync.WaitGroup
	for i, peer := range peers {
		wg.Add(1)
		go func(i int, peer string) {
			defer wg.Done()
			results[i] = r.fetch(ctx, peer)
		}(i, peer)
	}
	wg.Wait()

	return results
}

func (r *Resolver) fetch(ctx context.Context, peer string) FetchResult {
	if r.fetcher == nil {
		return FetchResult{Peer: peer, Err: ErrNoFetcher}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	chain, err := r.fetcher.FetchChain(ctx, peer)
	if err != nil {
		r.logger.Warn("Skipping peer, chain fetch failed", "peer", peer, "error", err)
		return FetchResult{Peer: peer, Err: fmt.Errorf("fetch chain from %s: %w", peer, err)}
	}
	if len(chain) == 0 {
		r.logger.Warn("Skipping peer, empty chain", "peer", peer)
		return FetchResult{Peer: peer, Err: blockchain.ErrEmptyChain}
	}

	r.logger.Debug("Fetched peer chain", "peer", peer, "length", len(chain))
	return FetchResult{Peer: peer, Chain: chain}
}

// Resolve fetches all peers and selects the chain local should adopt.
func (r *Resolver) Resolve(ctx context.Context, local blockchain.Chain, peers []string) (bool, blockchain.Chain) {
	return SelectLongest(local, r.FetchAll(ctx, peers))
}
