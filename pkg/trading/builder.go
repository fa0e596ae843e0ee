package trading

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// Market identifies the token pair orders are built against.
type Market struct {
	// NFTToken is the ERC-1155 credit contract.
	NFTToken common.Address
	// StableToken is the ERC-20 quote token.
	StableToken common.Address
	// StableDecimals is the quote token's decimals (6 for USDC-style tokens).
	StableDecimals int32
}

// BuildOptions override the defaults applied by BuildOrder.
type BuildOptions struct {
	// AppID namespaces the order nonce. Defaults to DefaultAppID.
	AppID string
	// Expiry overrides the far-future default expiry.
	Expiry *big.Int
	// Taker restricts who may fill the order. Defaults to anyone.
	Taker common.Address
}

// NonceSource produces order nonces. The default is GenerateNonce.
type NonceSource func(appID string) (string, error)

// Builder constructs canonical limit-order records for one market.
type Builder struct {
	market Market
	nonce  NonceSource
}

// NewBuilder returns a Builder for the given market using GenerateNonce.
func NewBuilder(market Market) *Builder {
	return &Builder{market: market, nonce: GenerateNonce}
}

// NewBuilderWithNonceSource returns a Builder with a custom nonce source.
func NewBuilderWithNonceSource(market Market, nonce NonceSource) *Builder {
	return &Builder{market: market, nonce: nonce}
}

// BuildOrder constructs an unsigned order from trade intent. pricePerUnit is
// the human-readable stable-token price of one credit unit; quantity the
// number of credit units.
//
// The stable-token amount is the floor of quantity * pricePerUnit scaled to
// the token's smallest unit. Truncation happens on the product, not per
// factor, so the maker is never over-charged by rounding.
//
// BuildOrder is a pure construction: it touches neither the network nor any
// signer.
func (b *Builder) BuildOrder(tokenID *big.Int, side Side, pricePerUnit decimal.Decimal, quantity *big.Int, maker common.Address, opts *BuildOptions) (*Order, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "token id must be a non-negative integer")
	}
	if quantity == nil || quantity.Sign() <= 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "quantity must be a positive integer")
	}
	if pricePerUnit.IsNegative() {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "price per unit must not be negative")
	}
	if side != SideSell && side != SideBuy {
		return nil, sdkerrors.Newf(sdkerrors.KindInvalidAmount, "unknown side %q", side)
	}

	if opts == nil {
		opts = &BuildOptions{}
	}

	nonce, err := b.nonce(opts.AppID)
	if err != nil {
		return nil, err
	}
	nonceInt, err := ParseNonce(nonce)
	if err != nil {
		return nil, err
	}

	expiry := DefaultExpiry
	if opts.Expiry != nil {
		expiry = opts.Expiry
	}

	return &Order{
		Direction:              side.Direction(),
		Maker:                  maker,
		Taker:                  opts.Taker,
		Expiry:                 expiry,
		Nonce:                  nonceInt,
		Erc20Token:             b.market.StableToken,
		Erc20TokenAmount:       StableAmount(pricePerUnit, quantity, b.market.StableDecimals),
		Fees:                   []Fee{},
		Erc1155Token:           b.market.NFTToken,
		Erc1155TokenID:         tokenID,
		Erc1155TokenProperties: []Property{},
		Erc1155TokenAmount:     quantity,
	}, nil
}

// StableAmount converts a per-unit price and quantity into the stable token's
// smallest unit, truncating the product toward zero.
func StableAmount(pricePerUnit decimal.Decimal, quantity *big.Int, decimals int32) *big.Int {
	product := decimal.NewFromBigInt(quantity, 0).
		Mul(pricePerUnit).
		Shift(decimals).
		Floor()
	return product.BigInt()
}
