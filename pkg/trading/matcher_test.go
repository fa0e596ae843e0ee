package trading_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// listing builds a resting sell order offering nftAmount credits for
// erc20Amount stable units in total.
func listing(nonce, nftAmount, erc20Amount int64) trading.PriceListing {
	order := trading.SignedOrder{
		Order: trading.Order{
			Direction:          trading.SellNFT,
			Nonce:              big.NewInt(nonce),
			Erc20TokenAmount:   big.NewInt(erc20Amount),
			Erc1155TokenAmount: big.NewInt(nftAmount),
		},
	}
	return trading.PriceListing{
		PricePerUnit:    decimal.NewFromInt(erc20Amount).Div(decimal.NewFromInt(nftAmount)),
		AvailableAmount: big.NewInt(nftAmount),
		Nonce:           big.NewInt(nonce),
		Order:           order,
	}
}

func TestSelectFillSet_EmptyBook(t *testing.T) {
	_, err := trading.SelectFillSet(nil, big.NewInt(5))
	assert.Equal(t, sdkerrors.KindNoPriceListingFound, sdkerrors.KindOf(err))
}

func TestSelectFillSet_InvalidQuantity(t *testing.T) {
	_, err := trading.SelectFillSet([]trading.PriceListing{listing(1, 10, 100)}, big.NewInt(0))
	assert.Equal(t, sdkerrors.KindInvalidAmount, sdkerrors.KindOf(err))
}

func TestSelectFillSet_InsufficientLiquidity(t *testing.T) {
	listings := []trading.PriceListing{listing(1, 10, 100), listing(2, 5, 60)}

	_, err := trading.SelectFillSet(listings, big.NewInt(16))
	require.Equal(t, sdkerrors.KindNoPriceListingFound, sdkerrors.KindOf(err))
	assert.Contains(t, err.Error(), "not enough liquidity")
}

func TestSelectFillSet_BoundaryPartialFill(t *testing.T) {
	listings := []trading.PriceListing{
		listing(1, 10, 100), // 10 units per credit
		listing(2, 10, 120), // 12 units per credit
		listing(3, 10, 200), // never reached
	}

	set, err := trading.SelectFillSet(listings, big.NewInt(13))
	require.NoError(t, err)

	require.Len(t, set.Fills, 2)
	assert.Equal(t, big.NewInt(10), set.Fills[0].Amount)
	assert.Equal(t, big.NewInt(3), set.Fills[1].Amount)
	assert.Equal(t, big.NewInt(13), set.TotalAmount)

	// Cost counts only the selected amounts: 100 + ceil(120*3/10) = 136.
	assert.Equal(t, big.NewInt(136), set.TotalCost)
	assert.Equal(t, big.NewInt(1), set.Fills[0].Order.Nonce)
	assert.Equal(t, big.NewInt(2), set.Fills[1].Order.Nonce)
}

func TestSelectFillSet_PartialCostRoundsUp(t *testing.T) {
	// 1 of 3 credits priced 100 in total: 100/3 = 33.33 -> 34.
	set, err := trading.SelectFillSet([]trading.PriceListing{listing(1, 3, 100)}, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(34), set.TotalCost)
}

func TestSelectFillSet_ExactFullFills(t *testing.T) {
	listings := []trading.PriceListing{listing(1, 10, 100), listing(2, 5, 60)}

	set, err := trading.SelectFillSet(listings, big.NewInt(15))
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(15), set.TotalAmount)
	assert.Equal(t, big.NewInt(160), set.TotalCost)
}

func TestSelectFillSet_SkipsEmptyListings(t *testing.T) {
	empty := listing(1, 1, 1)
	empty.AvailableAmount = big.NewInt(0)
	listings := []trading.PriceListing{empty, listing(2, 5, 50)}

	set, err := trading.SelectFillSet(listings, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, set.Fills, 1)
	assert.Equal(t, big.NewInt(2), set.Fills[0].Order.Nonce)
}
