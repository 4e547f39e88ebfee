package node

import (
	"context"
	"reflect"
	"testing"
	"time"

	"powledger/blockchain"
	"powledger/p2p"
)

func startTestNode(t *testing.T, id string, mutate func(*Config)) *Node {
	t.Helper()
	config := DefaultConfig()
	config.HTTPAddr = "127.0.0.1:0"
	config.NodeID = id
	config.MineWorkers = 2
	if mutate != nil {
		mutate(&config)
	}

	n, err := New(config, nil)
	if err != nil {
		t.Fatalf("Failed to create node %s: %v", id, err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Failed to start node %s: %v", id, err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.Stop(ctx); err != nil {
			t.Errorf("Failed to stop node %s: %v", id, err)
		}
	})
	return n
}

func mineN(t *testing.T, client *p2p.Client, addr string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := client.Mine(context.Background(), addr); err != nil {
			t.Fatalf("Mining on %s failed: %v", addr, err)
		}
	}
}

// TestLongestChainResolution builds three nodes with diverging chains and
// checks that resolution converges on the longest valid one.
func TestLongestChainResolution(t *testing.T) {
	ctx := context.Background()
	client := p2p.NewClient(p2p.DefaultClientConfig(), nil)

	a := startTestNode(t, "node-a", nil)
	b := startTestNode(t, "node-b", nil)
	c := startTestNode(t, "node-c", func(cfg *Config) { cfg.Store = StoreLevelDB })

	if _, err := client.StageTransaction(ctx, a.Addr(), blockchain.Transaction{Sender: "alice", Recipient: "bob", Amount: 3}); err != nil {
		t.Fatalf("Failed to stage transaction: %v", err)
	}
	mineN(t, client, a.Addr(), 3)
	mineN(t, client, b.Addr(), 1)

	for _, n := range []*Node{b, c} {
		if _, err := client.RegisterNodes(ctx, n.Addr(), []string{"http://" + a.Addr(), b.Addr()}); err != nil {
			t.Fatalf("Failed to register peers on %s: %v", n.ID(), err)
		}
	}

	for _, n := range []*Node{b, c} {
		resp, err := client.Resolve(ctx, n.Addr())
		if err != nil {
			t.Fatalf("Resolve on %s failed: %v", n.ID(), err)
		}
		if !resp.Replaced || resp.Message != p2p.MessageChainReplaced {
			t.Errorf("Expected %s to adopt a peer chain, got %q", n.ID(), resp.Message)
		}
	}

	want, err := client.FetchChain(ctx, a.Addr())
	if err != nil {
		t.Fatalf("Failed to fetch chain from a: %v", err)
	}
	if len(want) != 4 {
		t.Fatalf("Expected a to have 4 blocks, got %d", len(want))
	}
	for _, n := range []*Node{b, c} {
		got, err := client.FetchChain(ctx, n.Addr())
		if err != nil {
			t.Fatalf("Failed to fetch chain from %s: %v", n.ID(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s chain differs from a after resolution", n.ID())
		}
	}

	// a is already the longest
	resp, err := client.Resolve(ctx, a.Addr())
	if err != nil {
		t.Fatalf("Resolve on a failed: %v", err)
	}
	if resp.Replaced || resp.Message != p2p.MessageChainAuthoritative {
		t.Errorf("Expected a to stay authoritative, got %q", resp.Message)
	}

	// mining continues on the adopted chain and carries the reward
	mined, err := client.Mine(ctx, b.Addr())
	if err != nil {
		t.Fatalf("Mining on b failed: %v", err)
	}
	if mined.Index != 5 {
		t.Errorf("Expected block 5 on b, got %d", mined.Index)
	}
	reward := mined.Transactions[len(mined.Transactions)-1]
	if reward.Sender != "0" || reward.Recipient != "node-b" || reward.Amount != 1 {
		t.Errorf("Unexpected reward transaction %+v", reward)
	}
}

func TestPeriodicResolve(t *testing.T) {
	client := p2p.NewClient(p2p.DefaultClientConfig(), nil)

	a := startTestNode(t, "node-a", nil)
	mineN(t, client, a.Addr(), 2)

	b := startTestNode(t, "node-b", func(cfg *Config) {
		cfg.Peers = []string{a.Addr()}
		cfg.ResolveInterval = 50 * time.Millisecond
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		chain, err := b.Ledger().Chain()
		if err != nil {
			t.Fatal(err)
		}
		if len(chain) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("b never adopted a's chain, length %d", len(chain))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestMineWithCanceledContext(t *testing.T) {
	n := startTestNode(t, "node-a", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Ledger().MineBlock(ctx); err == nil {
		t.Error("Expected mining with a canceled context to fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"leveldb store", func(c *Config) { c.Store = StoreLevelDB }, false},
		{"missing address", func(c *Config) { c.HTTPAddr = "" }, true},
		{"unknown store", func(c *Config) { c.Store = "redis" }, true},
		{"negative workers", func(c *Config) { c.MineWorkers = -1 }, true},
		{"rate without burst", func(c *Config) { c.RateLimit = 5; c.RateBurst = 0 }, true},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, true},
		{"negative resolve interval", func(c *Config) { c.ResolveInterval = -time.Second }, true},
		{"bad peer", func(c *Config) { c.Peers = []string{"nohost"} }, true},
		{"url peer", func(c *Config) { c.Peers = []string{"http://10.0.0.1:5000"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewNodeID(t *testing.T) {
	id := NewNodeID()
	if len(id) != 32 {
		t.Errorf("Expected 32 characters, got %d", len(id))
	}
	if id == NewNodeID() {
		t.Error("Expected distinct ids")
	}
}
