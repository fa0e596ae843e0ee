package trading_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

var testMarket = trading.Market{
	NFTToken:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
	StableToken:    common.HexToAddress("0x2222222222222222222222222222222222222222"),
	StableDecimals: 6,
}

func TestBuildOrder_Defaults(t *testing.T) {
	b := trading.NewBuilder(testMarket)
	maker := common.HexToAddress("0x3333333333333333333333333333333333333333")

	order, err := b.BuildOrder(big.NewInt(9), trading.SideSell, decimal.RequireFromString("7.35"), big.NewInt(10), maker, nil)
	require.NoError(t, err)

	assert.Equal(t, trading.SellNFT, order.Direction)
	assert.Equal(t, maker, order.Maker)
	assert.Equal(t, trading.NilTaker, order.Taker)
	assert.Equal(t, trading.DefaultExpiry, order.Expiry)
	assert.Equal(t, testMarket.NFTToken, order.Erc1155Token)
	assert.Equal(t, testMarket.StableToken, order.Erc20Token)
	assert.Equal(t, big.NewInt(9), order.Erc1155TokenID)
	assert.Equal(t, big.NewInt(10), order.Erc1155TokenAmount)
	// 10 * 7.35 * 10^6
	assert.Equal(t, big.NewInt(73_500_000), order.Erc20TokenAmount)
	assert.NotNil(t, order.Nonce)
	assert.Empty(t, order.Fees)
	assert.Empty(t, order.Erc1155TokenProperties)
}

func TestBuildOrder_FloorsOnProductNotPerFactor(t *testing.T) {
	b := trading.NewBuilder(trading.Market{StableDecimals: 2})

	// 7 * 0.015 = 0.105 -> 10.5 smallest units -> floor 10.
	// Truncating the price factor first (0.01) would yield 7.
	order, err := b.BuildOrder(big.NewInt(1), trading.SideBuy, decimal.RequireFromString("0.015"), big.NewInt(7),
		common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), order.Erc20TokenAmount)
}

func TestBuildOrder_Overrides(t *testing.T) {
	b := trading.NewBuilder(testMarket)
	taker := common.HexToAddress("0x4444444444444444444444444444444444444444")
	expiry := big.NewInt(1_900_000_000)

	order, err := b.BuildOrder(big.NewInt(1), trading.SideBuy, decimal.NewFromInt(1), big.NewInt(1),
		common.Address{}, &trading.BuildOptions{AppID: "55", Expiry: expiry, Taker: taker})
	require.NoError(t, err)

	assert.Equal(t, trading.BuyNFT, order.Direction)
	assert.Equal(t, taker, order.Taker)
	assert.Equal(t, expiry, order.Expiry)
	assert.Equal(t, "100155", new(big.Int).Rsh(order.Nonce, 128).String())
}

func TestBuildOrder_Validation(t *testing.T) {
	b := trading.NewBuilder(testMarket)
	one := big.NewInt(1)
	price := decimal.NewFromInt(1)

	cases := []struct {
		name string
		call func() (*trading.Order, error)
	}{
		{"nil token id", func() (*trading.Order, error) {
			return b.BuildOrder(nil, trading.SideSell, price, one, common.Address{}, nil)
		}},
		{"zero quantity", func() (*trading.Order, error) {
			return b.BuildOrder(one, trading.SideSell, price, big.NewInt(0), common.Address{}, nil)
		}},
		{"negative price", func() (*trading.Order, error) {
			return b.BuildOrder(one, trading.SideSell, decimal.NewFromInt(-1), one, common.Address{}, nil)
		}},
		{"unknown side", func() (*trading.Order, error) {
			return b.BuildOrder(one, trading.Side("hold"), price, one, common.Address{}, nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.call()
			assert.Equal(t, sdkerrors.KindInvalidAmount, sdkerrors.KindOf(err))
		})
	}
}

func TestBuildOrder_NonceSourceFailurePropagates(t *testing.T) {
	b := trading.NewBuilderWithNonceSource(testMarket, func(string) (string, error) {
		return "", sdkerrors.New(sdkerrors.KindInvalidAppID, "boom")
	})
	_, err := b.BuildOrder(big.NewInt(1), trading.SideSell, decimal.NewFromInt(1), big.NewInt(1), common.Address{}, nil)
	assert.Equal(t, sdkerrors.KindInvalidAppID, sdkerrors.KindOf(err))
}
