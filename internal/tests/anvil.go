package tests

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
)

type AnvilConfig struct {
	PortNumber string
	ChainId    string
	BlockTime  string
	ForkUrl    string
}

func DefaultAnvilConfig() *AnvilConfig {
	return &AnvilConfig{
		PortNumber: "8545",
		ChainId:    "31337",
	}
}

func (c *AnvilConfig) RpcUrl() string {
	return fmt.Sprintf("http://127.0.0.1:%s", c.PortNumber)
}

// SkipUnlessAnvil skips integration tests in short mode or when anvil is not installed
func SkipUnlessAnvil(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := exec.LookPath("anvil"); err != nil {
		t.Skip("anvil not found in PATH")
	}
}

func StartAnvil(ctx context.Context, cfg *AnvilConfig) (*exec.Cmd, error) {
	args := []string{
		"--chain-id", cfg.ChainId,
		"--port", cfg.PortNumber,
	}
	if cfg.BlockTime != "" {
		args = append(args, "--block-time", cfg.BlockTime)
	}
	if cfg.ForkUrl != "" {
		args = append(args, "--fork-url", cfg.ForkUrl)
	}
	cmd := exec.CommandContext(ctx, "anvil", args...)
	cmd.Stderr = os.Stderr

	if os.Getenv("JOIN_ANVIL_OUTPUT") == "true" {
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`
	for i := 1; i < 10; i++ {
		res, err := http.Post(cfg.RpcUrl(), "application/json", strings.NewReader(body))
		if err == nil {
			_ = res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return cmd, nil
			}
		}
		time.Sleep(time.Duration(i) * 200 * time.Millisecond)
	}

	_ = KillAnvil(cmd)
	return nil, fmt.Errorf("anvil did not become ready on %s", cfg.RpcUrl())
}

// WaitForAnvil blocks until the node answers for its latest block
func WaitForAnvil(ctx context.Context, t *testing.T, ethereumClient ethereum.Client) error {
	for {
		block, err := ethereumClient.GetLatestBlock(ctx)
		if err == nil {
			t.Logf("Anvil is up and running, latest block: %v", block)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("anvil not ready: %w", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func KillAnvil(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return fmt.Errorf("anvil command is not running")
	}

	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill anvil process: %w", err)
	}
	_ = cmd.Wait()
	return nil
}
