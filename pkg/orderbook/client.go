// Package orderbook is the client for the off-chain orderbook service. It
// posts signed orders, queries the resting order index and derives sorted
// price listings for market matching.
package orderbook

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/config"
	"github.com/thea-protocol/thea-sdk-go/pkg/httpapi"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// Order status filters understood by the service.
const (
	StatusOpen = "open"
	StatusAll  = "all"
)

// Client queries and posts orders against the off-chain orderbook service.
// It holds no mutable state beyond the HTTP transport handle, so concurrent
// use is safe.
type Client struct {
	api            *httpapi.Client
	chainID        int64
	nftToken       common.Address
	stableToken    common.Address
	stableDecimals int32
}

// New creates an orderbook client bound to the configured network and market.
func New(cfg *config.Config, api *httpapi.Client) *Client {
	return &Client{
		api:            api,
		chainID:        cfg.Network.ChainID,
		nftToken:       common.HexToAddress(cfg.Contracts.CarbonCredit),
		stableToken:    common.HexToAddress(cfg.Contracts.StableToken),
		stableDecimals: cfg.StableTokenDecimals,
	}
}

// ordersResponse is the query envelope returned by the service.
type ordersResponse struct {
	Orders []orderEnvelope `json:"orders"`
}

type orderEnvelope struct {
	Order OrderRecord `json:"order"`
}

// PostConfirmation is the service's acknowledgement of a posted order.
type PostConfirmation struct {
	Status string      `json:"status"`
	Order  OrderRecord `json:"order"`
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("nftToken", strings.ToLower(c.nftToken.Hex()))
	params.Set("erc20Token", strings.ToLower(c.stableToken.Hex()))
	params.Set("chainId", strconv.FormatInt(c.chainID, 10))
	return params
}

func (c *Client) queryOrders(ctx context.Context, params url.Values) ([]trading.SignedOrder, error) {
	var resp ordersResponse
	if err := c.api.Get(ctx, "/orders", params, &resp); err != nil {
		return nil, err
	}

	orders := make([]trading.SignedOrder, 0, len(resp.Orders))
	for _, env := range resp.Orders {
		order, err := env.Order.SignedOrder()
		if err != nil {
			return nil, fmt.Errorf("malformed order in response: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// OrdersByTokenAndOwner returns every order (any status) resting in the index
// for the given credit token id and maker.
func (c *Client) OrdersByTokenAndOwner(ctx context.Context, tokenID *big.Int, owner common.Address) ([]trading.SignedOrder, error) {
	params := c.baseParams()
	params.Set("nftTokenId", tokenID.String())
	params.Set("maker", strings.ToLower(owner.Hex()))
	params.Set("status", StatusAll)
	return c.queryOrders(ctx, params)
}

// OrderByNonce returns the first order matching the given nonce, or an error
// when the index holds none.
func (c *Client) OrderByNonce(ctx context.Context, nonce *big.Int) (*trading.SignedOrder, error) {
	params := c.baseParams()
	params.Set("nonce", nonce.String())
	params.Set("status", StatusAll)

	orders, err := c.queryOrders(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no order with nonce %s", nonce.String())
	}
	return &orders[0], nil
}

// PriceListings returns the open resting orders on the given side of the
// book as price listings, sorted best price first: ascending for sell-side
// listings (a buyer wants the cheapest sellers) and descending for buy-side
// listings (a seller wants the highest-paying buyers). Orders at equal
// prices keep the order the service returned them in.
func (c *Client) PriceListings(ctx context.Context, tokenID *big.Int, side trading.Side) ([]trading.PriceListing, error) {
	params := c.baseParams()
	params.Set("nftTokenId", tokenID.String())
	params.Set("sellOrBuyNft", string(side))
	params.Set("status", StatusOpen)

	orders, err := c.queryOrders(ctx, params)
	if err != nil {
		return nil, err
	}

	listings := make([]trading.PriceListing, 0, len(orders))
	for _, order := range orders {
		if order.Erc1155TokenAmount == nil || order.Erc1155TokenAmount.Sign() <= 0 {
			zap.L().Warn("skipping resting order with no credit amount",
				zap.String("nonce", order.Nonce.String()))
			continue
		}
		price := decimal.NewFromBigInt(order.Erc20TokenAmount, -c.stableDecimals).
			Div(decimal.NewFromBigInt(order.Erc1155TokenAmount, 0))
		listings = append(listings, trading.PriceListing{
			PricePerUnit:    price,
			AvailableAmount: order.Erc1155TokenAmount,
			Nonce:           order.Nonce,
			Order:           order,
		})
	}

	// Stable sort: ties keep source order, no secondary key.
	if side == trading.SideSell {
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].PricePerUnit.LessThan(listings[j].PricePerUnit)
		})
	} else {
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].PricePerUnit.GreaterThan(listings[j].PricePerUnit)
		})
	}
	return listings, nil
}

// PostOrder submits a signed order to the service. All big-integer fields go
// over the wire as decimal strings.
func (c *Client) PostOrder(ctx context.Context, order *trading.SignedOrder) (*PostConfirmation, error) {
	params := url.Values{}
	params.Set("chainId", strconv.FormatInt(c.chainID, 10))

	var confirmation PostConfirmation
	if err := c.api.Post(ctx, "/order", NewOrderRecord(order), params, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}
