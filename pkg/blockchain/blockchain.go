// Package blockchain provides the EVM client and helpers the SDK uses to
// interact with the protocol contracts. It initializes an Ethereum client,
// wires bound contracts for the exchange proxy, the ERC-1155 credit token,
// the stable token and the credit lifecycle contracts, and exposes the
// credential sum type, balance/approval checks, and a transaction executor
// that normalizes on-chain failures.
package blockchain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/config"
)

// EVMClient holds a connected ethclient.Client and bound contracts for the
// protocol: the exchange proxy, the ERC-1155 carbon-credit token, the ERC-20
// stable token, the base token manager and the retirement handler.
type EVMClient struct {
	Client *ethclient.Client

	Exchange          *bind.BoundContract
	CarbonCredit      *bind.BoundContract
	StableToken       *bind.BoundContract
	BaseTokenManager  *bind.BoundContract
	RetirementHandler *bind.BoundContract

	Addresses Addresses
	timeouts  config.Timeouts
}

// Addresses is the parsed contract address book.
type Addresses struct {
	Exchange          common.Address
	CarbonCredit      common.Address
	StableToken       common.Address
	BaseTokenManager  common.Address
	RetirementHandler common.Address
}

// InitEvm dials an Ethereum endpoint and binds the protocol contracts using
// the validated configuration. The dial is bounded by the Dial timeout.
// Returns a ready-to-use EVMClient or an error.
func InitEvm(cfg *config.Config) (*EVMClient, error) {
	timeouts := cfg.Timeouts.WithDefaults()

	dialCtx, cancel := withTimeout(context.Background(), timeouts.Dial)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, cfg.RPCAddr)
	if err != nil {
		zap.L().Error("Failed to dial Ethereum endpoint", zap.Error(err))
		return nil, err
	}

	addresses := Addresses{
		Exchange:          common.HexToAddress(cfg.Contracts.Exchange),
		CarbonCredit:      common.HexToAddress(cfg.Contracts.CarbonCredit),
		StableToken:       common.HexToAddress(cfg.Contracts.StableToken),
		BaseTokenManager:  common.HexToAddress(cfg.Contracts.BaseTokenManager),
		RetirementHandler: common.HexToAddress(cfg.Contracts.RetirementHandler),
	}

	evm := &EVMClient{
		Client:            client,
		Exchange:          bind.NewBoundContract(addresses.Exchange, exchangeABI, client, client, client),
		CarbonCredit:      bind.NewBoundContract(addresses.CarbonCredit, erc1155ABI, client, client, client),
		StableToken:       bind.NewBoundContract(addresses.StableToken, erc20ABI, client, client, client),
		BaseTokenManager:  bind.NewBoundContract(addresses.BaseTokenManager, baseTokenManagerABI, client, client, client),
		RetirementHandler: bind.NewBoundContract(addresses.RetirementHandler, retirementHandlerABI, client, client, client),
		Addresses:         addresses,
		timeouts:          timeouts,
	}
	return evm, nil
}

// GetCurrentBlockNumber returns the latest block number.
func (evm *EVMClient) GetCurrentBlockNumber(ctx context.Context) (*big.Int, error) {
	ctx, cancel := withTimeout(ctx, evm.timeouts.ChainRead)
	defer cancel()

	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// Close releases the underlying RPC connection.
func (evm *EVMClient) Close() {
	evm.Client.Close()
}

// withTimeout returns ctx unchanged if d <= 0, otherwise a child context with
// timeout d. The returned cancel function is always non-nil.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
