package web3signer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "http://localhost:9000"
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultURL,
		Timeout: DefaultTimeout,
	}
}

// Client talks to a Web3Signer instance. JSON-RPC methods go through the
// go-ethereum rpc client; health checks use the REST api.
type Client struct {
	config     *Config
	logger     *zap.Logger
	httpClient *http.Client

	mu        sync.Mutex
	rpcClient *rpc.Client
}

func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("web3signer base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config:     cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// NewWeb3SignerClientFromRemoteSignerConfig builds a client, configuring mutual
// TLS when certificates are provided.
func NewWeb3SignerClientFromRemoteSignerConfig(rsc *config.RemoteSignerConfig, logger *zap.Logger) (*Client, error) {
	cfg := DefaultConfig()
	if rsc == nil {
		return NewClient(cfg, logger)
	}
	if rsc.Url != "" {
		cfg.BaseURL = rsc.Url
	}
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	if rsc.CACert == "" && rsc.Cert == "" && rsc.Key == "" {
		return client, nil
	}

	tlsConfig, err := buildTLSConfig(rsc)
	if err != nil {
		return nil, err
	}
	client.SetHttpClient(&http.Client{
		Timeout:   cfg.Timeout,
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	})
	return client, nil
}

func buildTLSConfig(rsc *config.RemoteSignerConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if rsc.CACert != "" {
		pem, err := readPEM(rsc.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}
	if rsc.Cert != "" || rsc.Key != "" {
		certPEM, err := readPEM(rsc.Cert)
		if err != nil {
			return nil, fmt.Errorf("failed to read client cert: %w", err)
		}
		keyPEM, err := readPEM(rsc.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to read client key: %w", err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to load client key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// readPEM accepts either inline PEM content or a path to a PEM file
func readPEM(value string) ([]byte, error) {
	if strings.Contains(value, "-----BEGIN") {
		return []byte(value), nil
	}
	return os.ReadFile(value)
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = client
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}

func (c *Client) dial(ctx context.Context) (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpcClient != nil {
		return c.rpcClient, nil
	}
	rc, err := rpc.DialOptions(ctx, c.config.BaseURL, rpc.WithHTTPClient(c.httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial web3signer at %s: %w", c.config.BaseURL, err)
	}
	c.rpcClient = rc
	return rc, nil
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	rc, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.logger.Sugar().Debugw("Calling web3signer", "method", method)
	if err := rc.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("web3signer %s failed: %w", method, err)
	}
	return nil
}

func (c *Client) EthAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// EthSignTransaction returns the RLP encoded signed transaction as a hex string
func (c *Client) EthSignTransaction(ctx context.Context, from string, transaction map[string]interface{}) (string, error) {
	tx := make(map[string]interface{}, len(transaction)+1)
	for k, v := range transaction {
		tx[k] = v
	}
	tx["from"] = from

	var signed string
	if err := c.call(ctx, &signed, "eth_signTransaction", tx); err != nil {
		return "", err
	}
	return signed, nil
}

// Upcheck returns nil when the signer reports itself healthy
func (c *Client) Upcheck(ctx context.Context) error {
	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/upcheck"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build upcheck request: %w", err)
	}

	c.mu.Lock()
	httpClient := c.httpClient
	c.mu.Unlock()

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("web3signer upcheck failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("web3signer upcheck returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}
