package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/config"
	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// SendFunc submits a prepared transaction using the supplied transactor.
type SendFunc func(opts *bind.TransactOpts) (*types.Transaction, error)

// EventExtractor parses fields of interest out of a mined receipt.
type EventExtractor func(receipt *types.Receipt) (map[string]string, error)

// Response is a mined receipt optionally merged with extractor-parsed fields.
type Response struct {
	Receipt *types.Receipt
	Fields  map[string]string
}

// Executor submits transactions and awaits their receipts, normalizing every
// failure into a TransactionFailed error carrying the contract metadata.
type Executor struct {
	evm      *EVMClient
	timeouts config.Timeouts
}

// NewExecutor creates an Executor for the given client.
func NewExecutor(evm *EVMClient, timeouts config.Timeouts) *Executor {
	return &Executor{evm: evm, timeouts: timeouts.WithDefaults()}
}

// Execute signs and submits the transaction produced by send, waits for it
// to be mined and verifies it did not revert.
func (e *Executor) Execute(ctx context.Context, cred *Credential, meta sdkerrors.ContractMeta, send SendFunc) (*types.Receipt, error) {
	submitCtx, cancel := withTimeout(ctx, e.timeouts.ChainSubmit)
	defer cancel()

	opts, err := cred.TransactOpts(submitCtx)
	if err != nil {
		return nil, err
	}

	tx, err := send(opts)
	if err != nil {
		return nil, sdkerrors.NewTransactionFailed(meta, "transaction submission failed", err)
	}

	zap.L().Debug("transaction submitted",
		zap.String("contract", meta.Name),
		zap.String("function", meta.Function),
		zap.String("hash", tx.Hash().Hex()))

	waitCtx, cancelWait := withTimeout(ctx, e.timeouts.ReceiptWait)
	defer cancelWait()

	receipt, err := bind.WaitMined(waitCtx, e.evm.Client, tx)
	if err != nil {
		return nil, sdkerrors.NewTransactionFailed(meta, "waiting for receipt failed", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, sdkerrors.NewTransactionFailed(meta, "transaction reverted", nil)
	}
	return receipt, nil
}

// ExecuteWithResponse is Execute plus receipt post-processing: the extractor
// parses event fields out of the mined receipt and the result is returned
// alongside it.
func (e *Executor) ExecuteWithResponse(ctx context.Context, cred *Credential, meta sdkerrors.ContractMeta, send SendFunc, extract EventExtractor) (*Response, error) {
	receipt, err := e.Execute(ctx, cred, meta, send)
	if err != nil {
		return nil, err
	}

	resp := &Response{Receipt: receipt}
	if extract != nil {
		fields, err := extract(receipt)
		if err != nil {
			return nil, sdkerrors.NewTransactionFailed(meta, "parsing receipt events failed", err)
		}
		resp.Fields = fields
	}
	return resp, nil
}
