package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"powledger/api"
	"powledger/blockchain"
	"powledger/blockchain/store"
	"powledger/consensus"
	"powledger/ledger"
	"powledger/p2p"
)

// Node wires the store, ledger, peer client and HTTP API of one ledger node.
type Node struct {
	config Config
	logger *slog.Logger

	store  store.ChainStore
	ledger *ledger.Ledger
	client *p2p.Client
	hub    *api.EventHub
	server *http.Server

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(config Config, logger *slog.Logger) (*Node, error) {
	if config.NodeID == "" {
		config.NodeID = NewNodeID()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("node", config.NodeID)

	chainStore, err := openStore(config.Store)
	if err != nil {
		return nil, err
	}

	client := p2p.NewClient(config.Client, logger)
	hub := api.NewEventHub(logger)

	miner := blockchain.DefaultMiner()
	if config.MineWorkers > 0 {
		miner.Workers = config.MineWorkers
	}
	opts := []ledger.Option{
		ledger.WithMiner(miner),
		ledger.WithLogger(logger),
		ledger.WithEventSink(hub),
		ledger.WithResolver(consensus.NewResolver(client,
			consensus.WithTimeout(config.FetchTimeout),
			consensus.WithLogger(logger))),
	}
	if config.Reward {
		opts = append(opts, ledger.WithMiningReward(config.NodeID))
	}
	l, err := ledger.New(chainStore, client, opts...)
	if err != nil {
		closeStore(chainStore)
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	for _, peer := range config.Peers {
		address, _ := p2p.ParseNodeAddress(peer)
		l.RegisterNode(address)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		config: config,
		logger: logger,
		store:  chainStore,
		ledger: l,
		client: client,
		hub:    hub,
		ctx:    ctx,
		cancel: cancel,
	}

	server := api.NewServer(l,
		api.WithEventHub(hub),
		api.WithLogger(logger),
		api.WithRateLimit(rate.Limit(config.RateLimit), config.RateBurst))
	n.server = &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return n, nil
}

func openStore(kind string) (store.ChainStore, error) {
	switch kind {
	case StoreLevelDB:
		s, err := store.NewLevelChainStore()
		if err != nil {
			return nil, fmt.Errorf("failed to open leveldb store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryChainStore(), nil
	}
}

func closeStore(s store.ChainStore) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Start binds the HTTP listener and serves the API in the background.
func (n *Node) Start() error {
	listener, err := net.Listen("tcp", n.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.config.HTTPAddr, err)
	}
	n.listener = listener
	n.logger.Info("Node started", "addr", listener.Addr().String(), "peers", len(n.config.Peers), "store", n.config.Store)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			n.logger.Error("HTTP server failed", "error", err)
		}
	}()

	if n.config.ResolveInterval > 0 {
		n.wg.Add(1)
		go n.periodicResolve()
	}
	return nil
}

// periodicResolve runs conflict resolution on a ticker until the node stops.
func (n *Node) periodicResolve() {
	defer n.wg.Done()
	ticker := time.NewTicker(n.config.ResolveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			if len(n.ledger.Nodes()) == 0 {
				continue
			}
			replaced, chain, err := n.ledger.ResolveConflicts(n.ctx)
			if err != nil {
				n.logger.Warn("Periodic resolution failed", "error", err)
				continue
			}
			if replaced {
				n.logger.Info("Periodic resolution adopted peer chain", "length", len(chain))
			}
		}
	}
}

// Addr is the address the API listens on, valid after Start.
func (n *Node) Addr() string {
	if n.listener == nil {
		return n.config.HTTPAddr
	}
	return n.listener.Addr().String()
}

func (n *Node) ID() string {
	return n.config.NodeID
}

func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Stop shuts the API down gracefully, aborting any mining in progress.
func (n *Node) Stop(ctx context.Context) error {
	n.logger.Info("Stopping node")
	n.cancel()
	n.hub.Close()

	err := n.server.Shutdown(ctx)
	n.wg.Wait()

	if cerr := closeStore(n.store); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to stop node: %w", err)
	}
	n.logger.Info("Node stopped")
	return nil
}
