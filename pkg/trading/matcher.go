package trading

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// PriceListing is a read-only view of a resting order for market matching.
// Listings are built fresh on every orderbook query and never persisted.
type PriceListing struct {
	// PricePerUnit is the human-readable stable-token price of one credit
	// unit: erc20TokenAmount / 10^decimals / erc1155TokenAmount.
	PricePerUnit decimal.Decimal
	// AvailableAmount is the credit quantity the resting order still offers.
	AvailableAmount *big.Int
	// Nonce identifies the resting order.
	Nonce *big.Int
	// Order is the full signed resting order, needed to submit a fill.
	Order SignedOrder
}

// Fill pairs a resting order with the amount taken from it.
type Fill struct {
	Order  SignedOrder
	Amount *big.Int
}

// FillSet is the outcome of market matching: the selected fills, the exact
// aggregate credit amount (equal to the requested quantity) and the
// stable-token cost of the selected amounts only.
type FillSet struct {
	Fills       []Fill
	TotalAmount *big.Int
	TotalCost   *big.Int
}

// SelectFillSet greedily walks listings, which must already be sorted best
// price first, and selects resting orders until the wanted quantity is
// covered. The boundary order is taken partially so the aggregate never
// overshoots wantedQuantity, and the aggregate cost reflects only the
// selected amounts.
//
// Fails with NoPriceListingFound when there are no listings at all or the
// book does not hold enough liquidity.
func SelectFillSet(listings []PriceListing, wantedQuantity *big.Int) (*FillSet, error) {
	if wantedQuantity == nil || wantedQuantity.Sign() <= 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "wanted quantity must be a positive integer")
	}
	if len(listings) == 0 {
		return nil, sdkerrors.New(sdkerrors.KindNoPriceListingFound, "no resting orders for this token and side")
	}

	set := &FillSet{
		TotalAmount: new(big.Int),
		TotalCost:   new(big.Int),
	}
	remaining := new(big.Int).Set(wantedQuantity)

	for _, listing := range listings {
		if listing.AvailableAmount == nil || listing.AvailableAmount.Sign() <= 0 {
			continue
		}

		amount := new(big.Int).Set(listing.AvailableAmount)
		if amount.Cmp(remaining) > 0 {
			amount.Set(remaining)
		}

		cost, err := fillCost(&listing.Order, amount)
		if err != nil {
			return nil, err
		}

		set.Fills = append(set.Fills, Fill{Order: listing.Order, Amount: amount})
		set.TotalAmount.Add(set.TotalAmount, amount)
		set.TotalCost.Add(set.TotalCost, cost)
		remaining.Sub(remaining, amount)

		if remaining.Sign() == 0 {
			return set, nil
		}
	}

	return nil, sdkerrors.New(sdkerrors.KindNoPriceListingFound, "not enough liquidity for the wanted quantity")
}

// fillCost is the stable-token cost of taking fillAmount units from order:
// ceil(erc20TokenAmount * fillAmount / erc1155TokenAmount). Rounding up keeps
// balance and approval checks on the safe side.
func fillCost(order *SignedOrder, fillAmount *big.Int) (*big.Int, error) {
	if order.Erc1155TokenAmount == nil || order.Erc1155TokenAmount.Sign() <= 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "resting order has no credit amount")
	}
	if fillAmount.Cmp(order.Erc1155TokenAmount) > 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidChunkSize, "fill amount exceeds the order's remaining amount")
	}

	cost := new(big.Int).Mul(order.Erc20TokenAmount, fillAmount)
	rem := new(big.Int)
	cost.DivMod(cost, order.Erc1155TokenAmount, rem)
	if rem.Sign() != 0 {
		cost.Add(cost, big.NewInt(1))
	}
	return cost, nil
}
