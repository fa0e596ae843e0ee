//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/thea-protocol/thea-sdk-go/pkg/blockchain"
	"github.com/thea-protocol/thea-sdk-go/pkg/config"
)

func TestETHClientChainID(t *testing.T) {
	rpc := os.Getenv("ETH_RPC_URL")
	if rpc == "" {
		t.Skip("ETH_RPC_URL not set")
	}
	cfg := &config.Config{RPCAddr: rpc, Network: config.Polygon}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	cli, err := blockchain.InitEvm(cfg)
	if err != nil {
		t.Fatalf("InitEvm error: %v", err)
	}
	defer cli.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := cli.Client.ChainID(ctx)
	if err != nil {
		t.Fatalf("ChainID error: %v", err)
	}
	if id == nil {
		t.Fatal("nil chain id")
	}
}
