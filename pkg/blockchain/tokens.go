package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// TokenKind selects the token standard a balance or approval check targets.
type TokenKind int

const (
	TokenERC20 TokenKind = iota + 1
	TokenERC1155
)

// TokenSpec identifies a token position: the standard, the contract, and for
// ERC-1155 the token id.
type TokenSpec struct {
	Kind    TokenKind
	Token   common.Address
	TokenID *big.Int
}

func (evm *EVMClient) boundToken(spec TokenSpec) *bind.BoundContract {
	switch {
	case spec.Token == evm.Addresses.StableToken:
		return evm.StableToken
	case spec.Token == evm.Addresses.CarbonCredit:
		return evm.CarbonCredit
	case spec.Kind == TokenERC20:
		return bind.NewBoundContract(spec.Token, erc20ABI, evm.Client, evm.Client, evm.Client)
	default:
		return bind.NewBoundContract(spec.Token, erc1155ABI, evm.Client, evm.Client, evm.Client)
	}
}

// BalanceOf reads the owner's balance of the given token position.
func (evm *EVMClient) BalanceOf(ctx context.Context, owner common.Address, spec TokenSpec) (*big.Int, error) {
	ctx, cancel := withTimeout(ctx, evm.timeouts.ChainRead)
	defer cancel()

	opts := &bind.CallOpts{Context: ctx}
	contract := evm.boundToken(spec)

	var out []interface{}
	var err error
	switch spec.Kind {
	case TokenERC20:
		err = contract.Call(opts, &out, "balanceOf", owner)
	case TokenERC1155:
		err = contract.Call(opts, &out, "balanceOf", owner, spec.TokenID)
	default:
		return nil, fmt.Errorf("unknown token kind %d", spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", spec.Token.Hex(), err)
	}
	return abiBig(out[0]), nil
}

// CheckBalance verifies the owner holds at least amount of the token
// position, failing with InsufficientFunds otherwise.
func (evm *EVMClient) CheckBalance(ctx context.Context, owner common.Address, spec TokenSpec, amount *big.Int) error {
	balance, err := evm.BalanceOf(ctx, owner, spec)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return sdkerrors.Newf(sdkerrors.KindInsufficientFunds,
			"balance %s of token %s is below the required %s", balance, spec.Token.Hex(), amount)
	}
	return nil
}

// EnsureApproval grants the spender the right to move the owner's tokens.
// It is idempotent: when the existing ERC-20 allowance already covers amount,
// or ERC-1155 operator approval is already set, no transaction is submitted.
// ERC-20 approvals are set to unlimited to avoid repeated approval
// transactions on later trades.
func (evm *EVMClient) EnsureApproval(ctx context.Context, exec *Executor, cred *Credential, spender common.Address, spec TokenSpec, amount *big.Int) error {
	readCtx, cancel := withTimeout(ctx, evm.timeouts.ChainRead)
	defer cancel()

	opts := &bind.CallOpts{Context: readCtx}
	contract := evm.boundToken(spec)
	owner := cred.Address()

	switch spec.Kind {
	case TokenERC20:
		var out []interface{}
		if err := contract.Call(opts, &out, "allowance", owner, spender); err != nil {
			return fmt.Errorf("allowance %s: %w", spec.Token.Hex(), err)
		}
		if abiBig(out[0]).Cmp(amount) >= 0 {
			zap.L().Debug("allowance already sufficient", zap.String("token", spec.Token.Hex()))
			return nil
		}

		meta := sdkerrors.ContractMeta{Name: "StableToken", Address: spec.Token.Hex(), Function: "approve"}
		_, err := exec.Execute(ctx, cred, meta, func(topts *bind.TransactOpts) (*types.Transaction, error) {
			return contract.Transact(topts, "approve", spender, maxUint256)
		})
		return err

	case TokenERC1155:
		var out []interface{}
		if err := contract.Call(opts, &out, "isApprovedForAll", owner, spender); err != nil {
			return fmt.Errorf("isApprovedForAll %s: %w", spec.Token.Hex(), err)
		}
		if out[0].(bool) {
			zap.L().Debug("operator already approved", zap.String("token", spec.Token.Hex()))
			return nil
		}

		meta := sdkerrors.ContractMeta{Name: "CarbonCredit", Address: spec.Token.Hex(), Function: "setApprovalForAll"}
		_, err := exec.Execute(ctx, cred, meta, func(topts *bind.TransactOpts) (*types.Transaction, error) {
			return contract.Transact(topts, "setApprovalForAll", spender, true)
		})
		return err

	default:
		return fmt.Errorf("unknown token kind %d", spec.Kind)
	}
}

func abiBig(v interface{}) *big.Int {
	return v.(*big.Int)
}
