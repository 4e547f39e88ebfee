package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"powledger/node"
)

const peersEnv = "POWLEDGER_PEERS"

func main() {
	config := node.DefaultConfig()

	port := flag.Int("port", 5000, "port to listen on")
	host := flag.String("host", "", "interface to listen on")
	flag.StringVar(&config.NodeID, "id", "", "node identifier (random if empty)")
	peers := flag.String("peers", os.Getenv(peersEnv), "comma separated peer addresses (env "+peersEnv+")")
	flag.StringVar(&config.Store, "store", config.Store, "chain store: memory or leveldb")
	flag.IntVar(&config.MineWorkers, "workers", 0, "proof search workers (0 = one per CPU)")
	flag.BoolVar(&config.Reward, "reward", config.Reward, "credit this node for every mined block")
	flag.Float64Var(&config.RateLimit, "rate", 0, "API requests per second (0 = unlimited)")
	flag.IntVar(&config.RateBurst, "burst", config.RateBurst, "API request burst")
	flag.DurationVar(&config.FetchTimeout, "fetch-timeout", config.FetchTimeout, "per-peer chain fetch timeout")
	flag.DurationVar(&config.ResolveInterval, "resolve-every", 0, "resolve conflicts periodically (0 = off)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	config.HTTPAddr = fmt.Sprintf("%s:%d", *host, *port)
	if *peers != "" {
		for _, p := range strings.Split(*peers, ",") {
			if p = strings.TrimSpace(p); p != "" {
				config.Peers = append(config.Peers, p)
			}
		}
	}

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	if err := setLogLevel(*logLevel); err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}
	slog.SetDefault(logger)

	n, err := node.New(config, logger)
	if err != nil {
		logger.Error("Failed to create node", "error", err)
		os.Exit(1)
	}
	if err := n.Start(); err != nil {
		logger.Error("Failed to start node", "error", err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Node %s listening on %s", n.ID(), n.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.Stop(shutdown); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}

func setLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	case "info":
		pterm.DefaultLogger.Level = pterm.LogLevelInfo
	case "warn":
		pterm.DefaultLogger.Level = pterm.LogLevelWarn
	case "error":
		pterm.DefaultLogger.Level = pterm.LogLevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
