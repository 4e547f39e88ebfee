package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"powledger/blockchain"
	"powledger/p2p"
)

const usage = `usage: chainctl <command> [flags]

commands:
  chain      print a node's chain
  mine       mine a block
  tx         stage a transaction
  register   register peers with a node
  resolve    run conflict resolution on a node
  stats      print chain statistics
  bot        stage random transactions and mine periodically
  scripts    write curl scripts for a node's API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "chain":
		err = runChain(ctx, args)
	case "mine":
		err = runMine(ctx, args)
	case "tx":
		err = runTx(ctx, args)
	case "register":
		err = runRegister(ctx, args)
	case "resolve":
		err = runResolve(ctx, args)
	case "stats":
		err = runStats(ctx, args)
	case "bot":
		err = runBot(ctx, args)
	case "scripts":
		err = runScripts(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// commonFlags registers the flags every command takes.
func commonFlags(name string) (*flag.FlagSet, *string, *time.Duration) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	addr := fs.String("node", "localhost:5000", "node address")
	timeout := fs.Duration("timeout", 2*time.Minute, "request timeout")
	return fs, addr, timeout
}

func newClient(timeout time.Duration) *p2p.Client {
	config := p2p.DefaultClientConfig()
	config.RequestTimeout = timeout
	return p2p.NewClient(config, nil)
}

func nodeAddr(raw string) (string, error) {
	return p2p.ParseNodeAddress(raw)
}

func runChain(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("chain")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	chain, err := newClient(*timeout).FetchChain(ctx, node)
	if err != nil {
		return err
	}
	renderChain(chain)
	return nil
}

func renderChain(chain blockchain.Chain) {
	data := pterm.TableData{{"Index", "Timestamp", "Proof", "Transactions", "Previous hash"}}
	for _, block := range chain {
		data = append(data, []string{
			strconv.FormatInt(block.Index, 10),
			time.Unix(0, int64(block.Timestamp*1e9)).UTC().Format(time.RFC3339),
			strconv.FormatInt(block.Proof, 10),
			strconv.Itoa(len(block.Transactions)),
			shortHash(block.PreviousHash),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Printfln("Chain length %d", len(chain))
}

func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "…"
	}
	return hash
}

func runMine(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("mine")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Mining on " + node + " ...")
	resp, err := newClient(*timeout).Mine(ctx, node)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(fmt.Sprintf("%s: block %d, proof %d, %d transactions",
		resp.Message, resp.Index, resp.Proof, len(resp.Transactions)))
	return nil
}

func runTx(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("tx")
	sender := fs.String("from", "", "sender")
	recipient := fs.String("to", "", "recipient")
	amount := fs.Float64("amount", 0, "amount")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}
	if *sender == "" || *recipient == "" {
		return fmt.Errorf("-from and -to are required")
	}

	resp, err := newClient(*timeout).StageTransaction(ctx, node,
		blockchain.Transaction{Sender: *sender, Recipient: *recipient, Amount: *amount})
	if err != nil {
		return err
	}
	pterm.Success.Println(resp.Message)
	return nil
}

func runRegister(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("register")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no peers given")
	}

	resp, err := newClient(*timeout).RegisterNodes(ctx, node, fs.Args())
	if err != nil {
		return err
	}
	pterm.Success.Println(resp.Message)
	pterm.DefaultBulletList.WithItems(bullets(resp.TotalNodes)).Render()
	return nil
}

func bullets(items []string) []pterm.BulletListItem {
	out := make([]pterm.BulletListItem, 0, len(items))
	for _, item := range items {
		out = append(out, pterm.BulletListItem{Level: 0, Text: item})
	}
	return out
}

func runResolve(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("resolve")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	resp, err := newClient(*timeout).Resolve(ctx, node)
	if err != nil {
		return err
	}
	if resp.Replaced {
		pterm.Warning.Printfln("%s (new length %d)", resp.Message, len(resp.Chain))
	} else {
		pterm.Success.Printfln("%s (length %d)", resp.Message, len(resp.Chain))
	}
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs, addr, timeout := commonFlags("stats")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	stats, err := newClient(*timeout).Stats(ctx, node)
	if err != nil {
		return err
	}
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Blocks", strconv.Itoa(stats.Length)},
		{"Transactions", strconv.Itoa(stats.Transactions)},
		{"Block interval", fmt.Sprintf("%.2fs ± %.2fs", stats.MeanInterval, stats.StdDevInterval)},
		{"Transactions per block", fmt.Sprintf("%.2f ± %.2f", stats.MeanTransactions, stats.StdDevTransactions)},
	}).Render()
	return nil
}
