package trading

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TradeDirection is the side of the NFT/stable-token pair the maker offers.
type TradeDirection uint8

const (
	// SellNFT means the maker offers ERC-1155 credits and wants stable tokens.
	SellNFT TradeDirection = 0
	// BuyNFT means the maker offers stable tokens and wants ERC-1155 credits.
	BuyNFT TradeDirection = 1
)

// Side is the caller-facing trade side.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

// Direction maps a Side to the on-chain trade direction.
func (s Side) Direction() TradeDirection {
	if s == SideSell {
		return SellNFT
	}
	return BuyNFT
}

// Opposite returns the counterparty side.
func (s Side) Opposite() Side {
	if s == SideSell {
		return SideBuy
	}
	return SideSell
}

// DefaultExpiry is the far-future sentinel used for orders that should
// effectively never expire (2050-01-01 UTC).
var DefaultExpiry = big.NewInt(2524604400)

// NilTaker marks an order fillable by anyone.
var NilTaker = common.Address{}

// Fee is an exchange fee entry. Orders produced by this SDK carry none, but
// the field participates in hashing and wire encoding.
type Fee struct {
	Recipient common.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
	FeeData   []byte         `json:"feeData"`
}

// Property is an on-chain property constraint for the NFT side of an order.
// Unused by this SDK but part of the order shape.
type Property struct {
	PropertyValidator common.Address `json:"propertyValidator"`
	PropertyData      []byte         `json:"propertyData"`
}

// Order is an offer to trade an ERC-1155 credit position against a stable
// token amount. It is immutable once signed.
type Order struct {
	Direction TradeDirection `json:"direction"`
	Maker     common.Address `json:"maker"`
	Taker     common.Address `json:"taker"`
	Expiry    *big.Int       `json:"expiry"`
	Nonce     *big.Int       `json:"nonce"`

	Erc20Token       common.Address `json:"erc20Token"`
	Erc20TokenAmount *big.Int       `json:"erc20TokenAmount"`
	Fees             []Fee          `json:"fees"`

	Erc1155Token           common.Address `json:"erc1155Token"`
	Erc1155TokenID         *big.Int       `json:"erc1155TokenId"`
	Erc1155TokenProperties []Property     `json:"erc1155TokenProperties"`
	Erc1155TokenAmount     *big.Int       `json:"erc1155TokenAmount"`
}

// SignedOrder is an Order plus its exchange signature. It is created by
// SignOrder and never mutated afterwards.
type SignedOrder struct {
	Order
	Signature Signature `json:"signature"`
}
