package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"powledger/blockchain"
)

var ErrMalformedChain = errors.New("malformed chain response")

// maxChainBody caps how much of a peer response is read.
const maxChainBody = 64 << 20

// ClientConfig holds the settings for talking to other nodes.
type ClientConfig struct {
	Scheme         string
	RequestTimeout time.Duration // per HTTP attempt
	MaxRetries     uint64        // extra attempts after the first
	RetryInterval  time.Duration // first backoff delay
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Scheme:         "http",
		RequestTimeout: 3 * time.Second,
		MaxRetries:     2,
		RetryInterval:  100 * time.Millisecond,
	}
}

// Client is the HTTP side of the node API. It implements
// consensus.ChainFetcher and is also used by the chainctl tool.
type Client struct {
	config ClientConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Scheme == "" {
		config.Scheme = "http"
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.RequestTimeout},
		logger: logger,
	}
}

// newBackOff bounds retries by MaxRetries and stops waiting as soon as ctx
// is done.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.config.RetryInterval
	eb.MaxInterval = 10 * c.config.RetryInterval
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, c.config.MaxRetries), ctx)
}

func (c *Client) url(node, path string) string {
	return fmt.Sprintf("%s://%s%s", c.config.Scheme, node, path)
}

// do sends one request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxChainBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(limited, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchChain downloads a peer's full chain. A response that lacks the length
// field, or whose length disagrees with the chain, is rejected. Transport
// failures are retried with exponential backoff; malformed responses are not.
func (c *Client) FetchChain(ctx context.Context, peer string) (blockchain.Chain, error) {
	var (
		chain   blockchain.Chain
		attempt int
	)

	op := func() error {
		attempt++
		var resp ChainResponse
		if err := c.do(ctx, http.MethodGet, c.url(peer, "/chain"), nil, &resp); err != nil {
			c.logger.Debug("Chain fetch attempt failed", "peer", peer, "attempt", attempt, "error", err)
			return err
		}
		var err error
		if chain, err = checkChainResponse(resp); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, err
	}
	return chain, nil
}

func checkChainResponse(resp ChainResponse) (blockchain.Chain, error) {
	if resp.Length == nil {
		return nil, fmt.Errorf("%w: missing length", ErrMalformedChain)
	}
	if resp.Chain == nil {
		return nil, fmt.Errorf("%w: missing chain", ErrMalformedChain)
	}
	if *resp.Length != len(resp.Chain) {
		return nil, fmt.Errorf("%w: length %d but %d blocks", ErrMalformedChain, *resp.Length, len(resp.Chain))
	}
	return resp.Chain, nil
}

func (c *Client) Mine(ctx context.Context, node string) (MineResponse, error) {
	var resp MineResponse
	err := c.do(ctx, http.MethodGet, c.url(node, "/mine"), nil, &resp)
	return resp, err
}

func (c *Client) StageTransaction(ctx context.Context, node string, tx blockchain.Transaction) (MessageResponse, error) {
	req := TransactionRequest{Sender: &tx.Sender, Recipient: &tx.Recipient, Amount: &tx.Amount}
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, c.url(node, "/transactions/new"), req, &resp)
	return resp, err
}

func (c *Client) RegisterNodes(ctx context.Context, node string, nodes []string) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(ctx, http.MethodPost, c.url(node, "/nodes/register"), RegisterRequest{Nodes: nodes}, &resp)
	return resp, err
}

func (c *Client) Resolve(ctx context.Context, node string) (ResolveResponse, error) {
	var resp ResolveResponse
	err := c.do(ctx, http.MethodGet, c.url(node, "/nodes/resolve"), nil, &resp)
	return resp, err
}

func (c *Client) Stats(ctx context.Context, node string) (blockchain.Stats, error) {
	var resp blockchain.Stats
	err := c.do(ctx, http.MethodGet, c.url(node, "/chain/stats"), nil, &resp)
	return resp, err
}
