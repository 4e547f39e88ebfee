package main

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"powledger/api"
	"powledger/blockchain"
	"powledger/blockchain/store"
	"powledger/ledger"
	"powledger/p2p"
)

func TestBotRounds(t *testing.T) {
	l, err := ledger.New(store.NewMemoryChainStore(), nil,
		ledger.WithMiner(blockchain.Miner{Workers: 2, ChunkSize: 512}))
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(api.NewServer(l).Handler())
	defer server.Close()

	bot := &Bot{
		client:      p2p.NewClient(p2p.DefaultClientConfig(), nil),
		node:        strings.TrimPrefix(server.URL, "http://"),
		txsPerBlock: 2,
		rng:         rand.New(rand.NewSource(1)),
	}
	if err := bot.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	chain, err := l.Chain()
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(chain))
	}
	for _, block := range chain[1:] {
		if len(block.Transactions) != 2 {
			t.Errorf("Block %d has %d transactions, want 2", block.Index, len(block.Transactions))
		}
		for _, tx := range block.Transactions {
			if tx.Sender == tx.Recipient {
				t.Errorf("Bot sent to itself: %+v", tx)
			}
		}
	}
	if err := blockchain.ValidateChain(chain); err != nil {
		t.Errorf("Chain invalid: %v", err)
	}
}

func TestBotWait(t *testing.T) {
	bot := &Bot{minWait: time.Second, maxWait: 3 * time.Second, rng: rand.New(rand.NewSource(1))}
	for i := 0; i < 100; i++ {
		if d := bot.wait(); d < time.Second || d >= 3*time.Second {
			t.Fatalf("wait() = %v, want within [1s, 3s)", d)
		}
	}

	bot.maxWait = 0
	if d := bot.wait(); d != time.Second {
		t.Errorf("wait() = %v, want min wait when max is lower", d)
	}
}

func TestScriptContent(t *testing.T) {
	content := scriptContent("localhost:5000", apiScripts[2])
	for _, want := range []string{
		"curl -X POST http://localhost:5000/transactions/new",
		`-d '{"sender": "alice"`,
		"Content-Type: application/json",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Script missing %q:\n%s", want, content)
		}
	}

	if strings.Contains(scriptContent("localhost:5000", apiScripts[0]), "-d '") {
		t.Error("GET script should not carry a body")
	}
}
