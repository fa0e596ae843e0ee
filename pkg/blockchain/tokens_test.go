package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/thea-protocol/thea-sdk-go/pkg/config"
	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

var errNoChain = errors.New("no chain")

// tokenBackend serves contract reads from a canned return value and counts
// every touch of the transaction machinery, so a test can assert that an
// already-sufficient approval submits nothing.
type tokenBackend struct {
	callReturn []byte
	callErr    error
	readCalls  int
	txTouches  int
}

func (b *tokenBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func (b *tokenBackend) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.readCalls++
	return b.callReturn, b.callErr
}

func (b *tokenBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	b.txTouches++
	return nil, errNoChain
}

func (b *tokenBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{1}, nil
}

func (b *tokenBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.txTouches++
	return 0, errNoChain
}

func (b *tokenBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	b.txTouches++
	return nil, errNoChain
}

func (b *tokenBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	b.txTouches++
	return nil, errNoChain
}

func (b *tokenBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	b.txTouches++
	return 0, errNoChain
}

func (b *tokenBackend) SendTransaction(context.Context, *types.Transaction) error {
	b.txTouches++
	return errNoChain
}

func (b *tokenBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *tokenBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not supported")
}

func testTokenClient(backend *tokenBackend) *EVMClient {
	addresses := Addresses{
		Exchange:     common.HexToAddress("0x1000000000000000000000000000000000000001"),
		CarbonCredit: common.HexToAddress("0x1000000000000000000000000000000000000002"),
		StableToken:  common.HexToAddress("0x1000000000000000000000000000000000000003"),
	}
	return &EVMClient{
		CarbonCredit: bind.NewBoundContract(addresses.CarbonCredit, erc1155ABI, backend, backend, backend),
		StableToken:  bind.NewBoundContract(addresses.StableToken, erc20ABI, backend, backend, backend),
		Addresses:    addresses,
	}
}

func uint256Word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func boolWord(v bool) []byte {
	word := make([]byte, 32)
	if v {
		word[31] = 1
	}
	return word
}

func TestEnsureApprovalSkipsWhenAllowanceSufficient(t *testing.T) {
	cred, err := NewSignerCredential(testKeyHex(t), 137)
	if err != nil {
		t.Fatalf("NewSignerCredential: %v", err)
	}
	spender := common.HexToAddress("0x1000000000000000000000000000000000000001")

	for _, allowance := range []int64{500, 1_000} {
		backend := &tokenBackend{callReturn: uint256Word(big.NewInt(allowance))}
		evm := testTokenClient(backend)
		exec := NewExecutor(evm, config.Timeouts{})
		spec := TokenSpec{Kind: TokenERC20, Token: evm.Addresses.StableToken}

		if err := evm.EnsureApproval(context.Background(), exec, cred, spender, spec, big.NewInt(500)); err != nil {
			t.Fatalf("allowance %d: EnsureApproval: %v", allowance, err)
		}
		if backend.readCalls != 1 {
			t.Fatalf("allowance %d: expected one allowance read, got %d", allowance, backend.readCalls)
		}
		if backend.txTouches != 0 {
			t.Fatalf("allowance %d: expected no transaction, backend touched %d times", allowance, backend.txTouches)
		}
	}
}

func TestEnsureApprovalSkipsWhenOperatorApproved(t *testing.T) {
	cred, err := NewSignerCredential(testKeyHex(t), 137)
	if err != nil {
		t.Fatalf("NewSignerCredential: %v", err)
	}
	backend := &tokenBackend{callReturn: boolWord(true)}
	evm := testTokenClient(backend)
	exec := NewExecutor(evm, config.Timeouts{})
	spec := TokenSpec{Kind: TokenERC1155, Token: evm.Addresses.CarbonCredit, TokenID: big.NewInt(7)}

	if err := evm.EnsureApproval(context.Background(), exec, cred, evm.Addresses.Exchange, spec, big.NewInt(3)); err != nil {
		t.Fatalf("EnsureApproval: %v", err)
	}
	if backend.txTouches != 0 {
		t.Fatalf("expected no transaction, backend touched %d times", backend.txTouches)
	}
}

func TestEnsureApprovalSubmitsWhenAllowanceShort(t *testing.T) {
	cred, err := NewSignerCredential(testKeyHex(t), 137)
	if err != nil {
		t.Fatalf("NewSignerCredential: %v", err)
	}
	backend := &tokenBackend{callReturn: uint256Word(big.NewInt(499))}
	evm := testTokenClient(backend)
	exec := NewExecutor(evm, config.Timeouts{})
	spec := TokenSpec{Kind: TokenERC20, Token: evm.Addresses.StableToken}

	err = evm.EnsureApproval(context.Background(), exec, cred, evm.Addresses.Exchange, spec, big.NewInt(500))
	if sdkerrors.KindOf(err) != sdkerrors.KindTransactionFailed {
		t.Fatalf("expected TransactionFailed from the approve attempt, got %v", err)
	}
	if backend.txTouches == 0 {
		t.Fatal("expected the approve transaction machinery to be exercised")
	}
}
