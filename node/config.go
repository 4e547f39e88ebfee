package node

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"powledger/consensus"
	"powledger/p2p"
)

const (
	StoreMemory  = "memory"
	StoreLevelDB = "leveldb"
)

// Config holds all configuration for a node.
type Config struct {
	HTTPAddr string
	NodeID   string
	Peers    []string

	Store       string
	MineWorkers int // 0 means one per CPU
	Reward      bool

	RateLimit float64 // requests per second, 0 disables
	RateBurst int

	FetchTimeout    time.Duration
	ResolveInterval time.Duration // 0 disables periodic resolution
	Client          p2p.ClientConfig
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:     ":5000",
		Store:        StoreMemory,
		Reward:       true,
		RateBurst:    20,
		FetchTimeout: consensus.DefaultFetchTimeout,
		Client:       p2p.DefaultClientConfig(),
	}
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.Store != StoreMemory && c.Store != StoreLevelDB {
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreLevelDB)
	}
	if c.MineWorkers < 0 {
		return fmt.Errorf("mine workers must not be negative, got %d", c.MineWorkers)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.ResolveInterval < 0 {
		return fmt.Errorf("resolve interval must not be negative, got %v", c.ResolveInterval)
	}
	for _, peer := range c.Peers {
		if _, err := p2p.ParseNodeAddress(peer); err != nil {
			return fmt.Errorf("peer %q: %w", peer, err)
		}
	}
	return nil
}

// NewNodeID returns a random 32 character hex identifier.
func NewNodeID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}
