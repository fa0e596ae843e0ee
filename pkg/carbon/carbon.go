// Package carbon wraps the credit-lifecycle contracts: converting credit
// batches to base tokens, unwrapping them back to a registry account,
// retiring them against a beneficiary and rolling expired vintages.
package carbon

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/thea-protocol/thea-sdk-go/pkg/blockchain"
	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// Client submits credit-lifecycle transactions through the shared executor.
type Client struct {
	evm  *blockchain.EVMClient
	exec *blockchain.Executor
}

func New(evm *blockchain.EVMClient, exec *blockchain.Executor) *Client {
	return &Client{evm: evm, exec: exec}
}

// RequestResult reports a mined lifecycle transaction together with the
// request ID the contract assigned for off-chain settlement.
type RequestResult struct {
	Receipt   *types.Receipt
	RequestID *big.Int
}

// Convert exchanges amount units of the credit batch for fungible base
// tokens of the batch's vintage. The caller must hold the batch tokens and
// have approved the base token manager.
func (c *Client) Convert(ctx context.Context, cred *blockchain.Credential, tokenID, amount *big.Int) (*types.Receipt, error) {
	if err := c.checkAmount(amount); err != nil {
		return nil, err
	}
	spec := blockchain.TokenSpec{Kind: blockchain.TokenERC1155, Token: c.evm.Addresses.CarbonCredit, TokenID: tokenID}
	if err := c.prepare(ctx, cred, spec, amount); err != nil {
		return nil, err
	}
	meta := c.managerMeta("convert")
	return c.exec.Execute(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.evm.BaseTokenManager.Transact(opts, "convert", tokenID, amount)
	})
}

// Unwrap burns amount base tokens of the given batch and opens an off-chain
// transfer of the underlying registry credits to offchainAccount. The
// returned request ID tracks the registry-side settlement.
func (c *Client) Unwrap(ctx context.Context, cred *blockchain.Credential, tokenID, amount *big.Int, offchainAccount string) (*RequestResult, error) {
	if err := c.checkAmount(amount); err != nil {
		return nil, err
	}
	if offchainAccount == "" {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "offchain registry account is required")
	}
	if err := cred.RequireSigner(); err != nil {
		return nil, err
	}
	meta := c.managerMeta("unwrap")
	resp, err := c.exec.ExecuteWithResponse(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.evm.BaseTokenManager.Transact(opts, "unwrap", tokenID, amount, offchainAccount)
	}, blockchain.UnwrapRequestExtractor())
	if err != nil {
		return nil, err
	}
	return requestResult(meta, resp)
}

// Recover redeems amount base tokens back into units of the original
// credit batch.
func (c *Client) Recover(ctx context.Context, cred *blockchain.Credential, tokenID, amount *big.Int) (*types.Receipt, error) {
	if err := c.checkAmount(amount); err != nil {
		return nil, err
	}
	if err := cred.RequireSigner(); err != nil {
		return nil, err
	}
	meta := c.managerMeta("recover")
	return c.exec.Execute(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.evm.BaseTokenManager.Transact(opts, "recover", tokenID, amount)
	})
}

// Offset retires amount units of the credit batch in the name of
// beneficiary. Retirement is permanent; the returned request ID tracks the
// registry-side retirement record.
func (c *Client) Offset(ctx context.Context, cred *blockchain.Credential, tokenID, amount *big.Int, beneficiary common.Address) (*RequestResult, error) {
	if err := c.checkAmount(amount); err != nil {
		return nil, err
	}
	spec := blockchain.TokenSpec{Kind: blockchain.TokenERC1155, Token: c.evm.Addresses.CarbonCredit, TokenID: tokenID}
	if err := c.prepareFor(ctx, cred, spec, amount, c.evm.Addresses.RetirementHandler); err != nil {
		return nil, err
	}
	meta := sdkerrors.ContractMeta{
		Name:     "RetirementHandler",
		Address:  c.evm.Addresses.RetirementHandler.Hex(),
		Function: "retire",
	}
	resp, err := c.exec.ExecuteWithResponse(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.evm.RetirementHandler.Transact(opts, "retire", tokenID, amount, beneficiary)
	}, blockchain.RetireRequestExtractor())
	if err != nil {
		return nil, err
	}
	return requestResult(meta, resp)
}

// RollTokens moves the caller's expired base tokens of the given vintage
// into the current vintage.
func (c *Client) RollTokens(ctx context.Context, cred *blockchain.Credential, vintage *big.Int) (*types.Receipt, error) {
	if vintage == nil || vintage.Sign() <= 0 {
		return nil, sdkerrors.New(sdkerrors.KindInvalidAmount, "vintage must be a positive year")
	}
	if err := cred.RequireSigner(); err != nil {
		return nil, err
	}
	meta := c.managerMeta("rollTokens")
	return c.exec.Execute(ctx, cred, meta, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.evm.BaseTokenManager.Transact(opts, "rollTokens", vintage)
	})
}

func (c *Client) checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return sdkerrors.New(sdkerrors.KindInvalidAmount, "amount must be positive")
	}
	return nil
}

// prepare gates a manager call: signer present, balance sufficient and the
// base token manager approved to move the tokens.
func (c *Client) prepare(ctx context.Context, cred *blockchain.Credential, spec blockchain.TokenSpec, amount *big.Int) error {
	return c.prepareFor(ctx, cred, spec, amount, c.evm.Addresses.BaseTokenManager)
}

func (c *Client) prepareFor(ctx context.Context, cred *blockchain.Credential, spec blockchain.TokenSpec, amount *big.Int, spender common.Address) error {
	if err := cred.RequireSigner(); err != nil {
		return err
	}
	if err := c.evm.CheckBalance(ctx, cred.Address(), spec, amount); err != nil {
		return err
	}
	return c.evm.EnsureApproval(ctx, c.exec, cred, spender, spec, amount)
}

func (c *Client) managerMeta(function string) sdkerrors.ContractMeta {
	return sdkerrors.ContractMeta{
		Name:     "BaseTokenManager",
		Address:  c.evm.Addresses.BaseTokenManager.Hex(),
		Function: function,
	}
}

func requestResult(meta sdkerrors.ContractMeta, resp *blockchain.Response) (*RequestResult, error) {
	raw, ok := resp.Fields[blockchain.FieldRequestID]
	if !ok {
		return nil, sdkerrors.NewTransactionFailed(meta, "receipt carries no request id", nil)
	}
	requestID, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, sdkerrors.NewTransactionFailed(meta, "request id is not numeric", nil)
	}
	return &RequestResult{Receipt: resp.Receipt, RequestID: requestID}, nil
}
