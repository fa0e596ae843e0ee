package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// ExchangeClient submits order lifecycle transactions to the exchange
// contract: nonce-based cancellation and batch fills against resting orders.
type ExchangeClient struct {
	evm  *EVMClient
	exec *Executor
}

func NewExchangeClient(evm *EVMClient, exec *Executor) *ExchangeClient {
	return &ExchangeClient{evm: evm, exec: exec}
}

// CancelOrder invalidates the resting order with the given nonce on chain.
// Only the order's maker can cancel it; the contract reverts otherwise.
func (ec *ExchangeClient) CancelOrder(ctx context.Context, cred *Credential, nonce *big.Int) (*types.Receipt, error) {
	meta := ec.meta("cancelERC1155Order")
	return ec.exec.Execute(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return ec.evm.Exchange.Transact(opts, "cancelERC1155Order", nonce)
	})
}

// BatchFill fills all orders in the set with a single transaction. The
// resting orders' side decides the contract entry point: filling resting
// sell orders goes through batchBuyERC1155s, filling resting buy orders
// through batchSellERC1155s. The call reverts if any fill cannot complete.
func (ec *ExchangeClient) BatchFill(ctx context.Context, cred *Credential, fills []trading.Fill) (*types.Receipt, error) {
	if len(fills) == 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "no fills to submit")
	}

	orders := make([]LibNFTOrderERC1155Order, 0, len(fills))
	signatures := make([]LibSignatureSignature, 0, len(fills))
	amounts := make([]*big.Int, 0, len(fills))
	restingDirection := fills[0].Order.Direction
	for _, fill := range fills {
		if fill.Order.Direction != restingDirection {
			return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "fills mix sell and buy orders")
		}
		orders = append(orders, orderTuple(&fill.Order.Order))
		signatures = append(signatures, signatureTuple(&fill.Order.Signature))
		amounts = append(amounts, fill.Amount)
	}

	method := "batchBuyERC1155s"
	if restingDirection == trading.BuyNFT {
		method = "batchSellERC1155s"
	}
	meta := ec.meta(method)
	return ec.exec.Execute(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return ec.evm.Exchange.Transact(opts, method, orders, signatures, amounts, true)
	})
}

func (ec *ExchangeClient) meta(function string) sdkerrors.ContractMeta {
	return sdkerrors.ContractMeta{
		Name:     "Exchange",
		Address:  ec.evm.Addresses.Exchange.Hex(),
		Function: function,
	}
}

func orderTuple(o *trading.Order) LibNFTOrderERC1155Order {
	fees := make([]LibNFTOrderFee, 0, len(o.Fees))
	for _, f := range o.Fees {
		fees = append(fees, LibNFTOrderFee{
			Recipient: f.Recipient,
			Amount:    f.Amount,
			FeeData:   f.FeeData,
		})
	}
	props := make([]LibNFTOrderProperty, 0, len(o.Erc1155TokenProperties))
	for _, p := range o.Erc1155TokenProperties {
		props = append(props, LibNFTOrderProperty{
			PropertyValidator: p.PropertyValidator,
			PropertyData:      p.PropertyData,
		})
	}
	return LibNFTOrderERC1155Order{
		Direction:              uint8(o.Direction),
		Maker:                  o.Maker,
		Taker:                  o.Taker,
		Expiry:                 o.Expiry,
		Nonce:                  o.Nonce,
		Erc20Token:             o.Erc20Token,
		Erc20TokenAmount:       o.Erc20TokenAmount,
		Fees:                   fees,
		Erc1155Token:           o.Erc1155Token,
		Erc1155TokenId:         o.Erc1155TokenID,
		Erc1155TokenProperties: props,
		Erc1155TokenAmount:     o.Erc1155TokenAmount,
	}
}

func signatureTuple(s *trading.Signature) LibSignatureSignature {
	return LibSignatureSignature{
		SignatureType: s.SignatureType,
		V:             s.V,
		R:             s.R,
		S:             s.S,
	}
}
