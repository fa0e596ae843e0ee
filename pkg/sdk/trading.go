package sdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/blockchain"
	"github.com/thea-protocol/thea-sdk-go/pkg/config"
	"github.com/thea-protocol/thea-sdk-go/pkg/orderbook"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// orderBook is the slice of the orderbook client the facade needs.
type orderBook interface {
	OrderByNonce(ctx context.Context, nonce *big.Int) (*trading.SignedOrder, error)
	PriceListings(ctx context.Context, tokenID *big.Int, side trading.Side) ([]trading.PriceListing, error)
	PostOrder(ctx context.Context, order *trading.SignedOrder) (*orderbook.PostConfirmation, error)
}

// assetGate checks balances and grants exchange approvals before an order
// is posted or filled.
type assetGate interface {
	CheckBalance(ctx context.Context, owner common.Address, spec blockchain.TokenSpec, amount *big.Int) error
	EnsureApproval(ctx context.Context, cred *blockchain.Credential, spender common.Address, spec blockchain.TokenSpec, amount *big.Int) error
}

// exchangeGateway submits fills and cancellations to the exchange contract.
type exchangeGateway interface {
	CancelOrder(ctx context.Context, cred *blockchain.Credential, nonce *big.Int) (*types.Receipt, error)
	BatchFill(ctx context.Context, cred *blockchain.Credential, fills []trading.Fill) (*types.Receipt, error)
}

// chainAssets adapts the EVM client and executor to the assetGate surface.
type chainAssets struct {
	evm  *blockchain.EVMClient
	exec *blockchain.Executor
}

func (a chainAssets) CheckBalance(ctx context.Context, owner common.Address, spec blockchain.TokenSpec, amount *big.Int) error {
	return a.evm.CheckBalance(ctx, owner, spec, amount)
}

func (a chainAssets) EnsureApproval(ctx context.Context, cred *blockchain.Credential, spender common.Address, spec blockchain.TokenSpec, amount *big.Int) error {
	return a.evm.EnsureApproval(ctx, a.exec, cred, spender, spec, amount)
}

// Trading orchestrates order entry against the exchange contract and the
// off-chain orderbook. Each operation is a short linear flow: capability
// gate, balance check, approval, then build/sign/post or fill. No state is
// shared between calls, so concurrent operations need no locking.
type Trading struct {
	cred     *blockchain.Credential
	builder  *trading.Builder
	book     orderBook
	assets   assetGate
	exchange exchangeGateway

	chainID        int64
	exchangeAddr   common.Address
	creditToken    common.Address
	stableToken    common.Address
	stableDecimals int32
}

func newTrading(cfg *config.Config, cred *blockchain.Credential, evm *blockchain.EVMClient, exec *blockchain.Executor, exchange *blockchain.ExchangeClient, book *orderbook.Client) *Trading {
	market := trading.Market{
		NFTToken:       evm.Addresses.CarbonCredit,
		StableToken:    evm.Addresses.StableToken,
		StableDecimals: cfg.StableTokenDecimals,
	}
	return &Trading{
		cred:           cred,
		builder:        trading.NewBuilder(market),
		book:           book,
		assets:         chainAssets{evm: evm, exec: exec},
		exchange:       exchange,
		chainID:        cfg.Network.ChainID,
		exchangeAddr:   evm.Addresses.Exchange,
		creditToken:    evm.Addresses.CarbonCredit,
		stableToken:    evm.Addresses.StableToken,
		stableDecimals: cfg.StableTokenDecimals,
	}
}

// EnterLimitOrder builds, signs and posts a resting order. For a sell the
// maker must hold the credits and have the exchange approved as ERC-1155
// operator; for a buy the maker must hold price*quantity stable tokens and
// have the exchange approved to spend them. Both gates run before signing
// so an unfillable order is never posted.
func (t *Trading) EnterLimitOrder(ctx context.Context, tokenID *big.Int, side trading.Side, pricePerUnit decimal.Decimal, quantity *big.Int, opts *trading.BuildOptions) (*orderbook.PostConfirmation, error) {
	if err := t.cred.RequireTypedDataSigner(); err != nil {
		return nil, err
	}
	maker := t.cred.Address()

	if err := t.gate(ctx, side, tokenID, quantity, trading.StableAmount(pricePerUnit, quantity, t.stableDecimals)); err != nil {
		return nil, err
	}

	order, err := t.builder.BuildOrder(tokenID, side, pricePerUnit, quantity, maker, opts)
	if err != nil {
		return nil, err
	}
	signed, err := trading.SignOrder(order, t.cred, t.chainID, t.exchangeAddr)
	if err != nil {
		return nil, err
	}

	confirmation, err := t.book.PostOrder(ctx, signed)
	if err != nil {
		return nil, err
	}
	zap.L().Info("limit order posted",
		zap.String("tokenId", tokenID.String()),
		zap.String("side", string(side)),
		zap.String("nonce", order.Nonce.String()))
	return confirmation, nil
}

// CancelOrder invalidates the maker's resting order with the given nonce
// on chain and returns the mined receipt. A plain signer is sufficient.
func (t *Trading) CancelOrder(ctx context.Context, nonce *big.Int) (*types.Receipt, error) {
	if err := t.cred.RequireSigner(); err != nil {
		return nil, err
	}
	return t.exchange.CancelOrder(ctx, t.cred, nonce)
}

// OrderUpdateError reports an UpdateOrder that cancelled the original
// order but failed to place its replacement. The original order stays
// cancelled; the caller decides whether to re-enter.
type OrderUpdateError struct {
	// CancelledNonce is the nonce of the order that was cancelled.
	CancelledNonce *big.Int
	// CancelReceipt is the mined cancellation receipt.
	CancelReceipt *types.Receipt
	// Err is the failure that prevented the replacement order.
	Err error
}

func (e *OrderUpdateError) Error() string {
	return fmt.Sprintf("order %s cancelled but replacement failed: %v", e.CancelledNonce, e.Err)
}

func (e *OrderUpdateError) Unwrap() error {
	return e.Err
}

// UpdateOrder replaces a resting order: it cancels the order with the
// given nonce, recovers the order's token and side from the orderbook and
// enters a fresh limit order at the new price and quantity.
//
// The sequence is not atomic. When cancellation succeeds but the lookup or
// re-entry fails, the returned error is an *OrderUpdateError carrying the
// cancelled nonce and receipt.
func (t *Trading) UpdateOrder(ctx context.Context, nonce *big.Int, newPrice decimal.Decimal, newQuantity *big.Int) (*orderbook.PostConfirmation, error) {
	if err := t.cred.RequireTypedDataSigner(); err != nil {
		return nil, err
	}

	receipt, err := t.CancelOrder(ctx, nonce)
	if err != nil {
		return nil, err
	}

	previous, err := t.book.OrderByNonce(ctx, nonce)
	if err != nil {
		return nil, &OrderUpdateError{CancelledNonce: nonce, CancelReceipt: receipt, Err: err}
	}
	side := trading.SideSell
	if previous.Direction == trading.BuyNFT {
		side = trading.SideBuy
	}

	confirmation, err := t.EnterLimitOrder(ctx, previous.Erc1155TokenID, side, newPrice, newQuantity, nil)
	if err != nil {
		return nil, &OrderUpdateError{CancelledNonce: nonce, CancelReceipt: receipt, Err: err}
	}
	return confirmation, nil
}

// EnterMarketOrder fills the wanted quantity against the best resting
// orders on the opposite side of the book. Selection is greedy over the
// price-sorted listing; the boundary order may be taken partially. After
// selection, the same balance and approval gates as the limit path run
// against the aggregate selected amounts, then all fills go to the
// exchange in one batch transaction.
func (t *Trading) EnterMarketOrder(ctx context.Context, tokenID *big.Int, side trading.Side, quantity *big.Int) (*types.Receipt, *trading.FillSet, error) {
	if err := t.cred.RequireSigner(); err != nil {
		return nil, nil, err
	}

	listings, err := t.book.PriceListings(ctx, tokenID, side.Opposite())
	if err != nil {
		return nil, nil, err
	}
	fillSet, err := trading.SelectFillSet(listings, quantity)
	if err != nil {
		return nil, nil, err
	}

	if err := t.gate(ctx, side, tokenID, fillSet.TotalAmount, fillSet.TotalCost); err != nil {
		return nil, nil, err
	}

	receipt, err := t.exchange.BatchFill(ctx, t.cred, fillSet.Fills)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("market order filled",
		zap.String("tokenId", tokenID.String()),
		zap.String("side", string(side)),
		zap.Int("orders", len(fillSet.Fills)),
		zap.String("amount", fillSet.TotalAmount.String()),
		zap.String("cost", fillSet.TotalCost.String()))
	return receipt, fillSet, nil
}

// gate runs the side-dependent balance check and exchange approval. A
// seller needs the credits themselves, a buyer the stable-token cost.
func (t *Trading) gate(ctx context.Context, side trading.Side, tokenID, creditAmount, stableCost *big.Int) error {
	owner := t.cred.Address()
	var spec blockchain.TokenSpec
	var amount *big.Int
	if side == trading.SideSell {
		spec = blockchain.TokenSpec{Kind: blockchain.TokenERC1155, Token: t.creditToken, TokenID: tokenID}
		amount = creditAmount
	} else {
		spec = blockchain.TokenSpec{Kind: blockchain.TokenERC20, Token: t.stableToken}
		amount = stableCost
	}
	if err := t.assets.CheckBalance(ctx, owner, spec, amount); err != nil {
		return err
	}
	return t.assets.EnsureApproval(ctx, t.cred, t.exchangeAddr, spec, amount)
}
