package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
)

type script struct {
	name   string
	method string
	path   string
	body   string
}

var apiScripts = []script{
	{"get_chain", "GET", "/chain", ""},
	{"mine", "GET", "/mine", ""},
	{"new_transaction", "POST", "/transactions/new", `{"sender": "alice", "recipient": "bob", "amount": 5}`},
	{"register_nodes", "POST", "/nodes/register", `{"nodes": ["http://localhost:5001"]}`},
	{"resolve", "GET", "/nodes/resolve", ""},
	{"chain_stats", "GET", "/chain/stats", ""},
}

func scriptContent(node string, s script) string {
	data := ""
	if s.body != "" {
		data = fmt.Sprintf("  -H \"Content-Type: application/json\" \\\n  -d '%s' \\\n", s.body)
	}
	return fmt.Sprintf(`#!/bin/bash
echo "=== %s %s ==="

curl -X %s http://%s%s \
%s  --max-time 120 \
  --fail-with-body \
  | jq '.' 2>/dev/null || cat
echo -e "\n"
`, s.method, s.path, s.method, node, s.path, data)
}

func runScripts(args []string) error {
	fs := flag.NewFlagSet("scripts", flag.ExitOnError)
	addr := fs.String("node", "localhost:5000", "node address")
	dir := fs.String("out", "curl", "output directory")
	fs.Parse(args)
	node, err := nodeAddr(*addr)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", *dir, err)
	}
	for _, s := range apiScripts {
		filename := filepath.Join(*dir, s.name+".sh")
		if err := os.WriteFile(filename, []byte(scriptContent(node, s)), 0o755); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		pterm.Info.Printfln("Generated: %s", filename)
	}
	return nil
}
