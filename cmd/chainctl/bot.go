package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pterm/pterm"

	"powledger/blockchain"
	"powledger/p2p"
)

var botNames = []string{"alice", "bob", "carol", "dave", "erin", "frank"}

// Bot drives a node with random transactions and a block after each batch.
type Bot struct {
	client      *p2p.Client
	node        string
	txsPerBlock int
	minWait     time.Duration
	maxWait     time.Duration
	rng         *rand.Rand
}

func (b *Bot) randomTransaction() blockchain.Transaction {
	from := botNames[b.rng.Intn(len(botNames))]
	to := botNames[b.rng.Intn(len(botNames))]
	for to == from {
		to = botNames[b.rng.Intn(len(botNames))]
	}
	return blockchain.Transaction{Sender: from, Recipient: to, Amount: float64(1 + b.rng.Intn(100))}
}

// Round stages txsPerBlock transactions and mines them.
func (b *Bot) Round(ctx context.Context) error {
	for i := 0; i < b.txsPerBlock; i++ {
		if _, err := b.client.StageTransaction(ctx, b.node, b.randomTransaction()); err != nil {
			return fmt.Errorf("failed to stage transaction %d: %w", i, err)
		}
	}
	resp, err := b.client.Mine(ctx, b.node)
	if err != nil {
		return fmt.Errorf("failed to mine: %w", err)
	}
	pterm.Info.Printfln("Bot mined block %d with %d transactions", resp.Index, len(resp.Transactions))
	return nil
}

func (b *Bot) wait() time.Duration {
	if b.maxWait <= b.minWait {
		return b.minWait
	}
	return b.minWait + time.Duration(b.rng.Int63n(int64(b.maxWait-b.minWait)))
}

// Run plays rounds at random intervals until ctx is done or rounds are used
// up. rounds <= 0 runs forever.
func (b *Bot) Run(ctx context.Context, rounds int) error {
	for i := 0; rounds <= 0 || i < rounds; i++ {
		if err := b.Round(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			pterm.Warning.Println(err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.wait()):
		}
	}
	return nil
}

func runBot(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("bot")
	txs := fs.Int("txs", 3, "transactions per block")
	rounds := fs.Int("rounds", 0, "blocks to mine (0 = until interrupted)")
	minWait := fs.Duration("min-wait", 10*time.Second, "shortest pause between blocks")
	maxWait := fs.Duration("max-wait", 2*time.Minute, "longest pause between blocks")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	bot := &Bot{
		client:      newClient(*timeout),
		node:        node,
		txsPerBlock: *txs,
		minWait:     *minWait,
		maxWait:     *maxWait,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	pterm.Info.Printfln("Bot driving %s", node)
	return bot.Run(ctx, *rounds)
}
