package blockchain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// CredentialKind tags what a credential is capable of. The tag is determined
// once at SDK initialization; downstream code switches on it instead of
// probing for capabilities at each call site.
type CredentialKind int

const (
	// ReadOnlyProvider can only read chain state.
	ReadOnlyProvider CredentialKind = iota + 1
	// PlainSigner can send transactions but not sign EIP-712 typed data
	// (e.g. a key behind a transaction-only signing back-end).
	PlainSigner
	// TypedSigner can additionally produce EIP-712 typed-data signatures.
	TypedSigner
)

// Credential is the tagged credential used by every signed SDK operation.
type Credential struct {
	kind    CredentialKind
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewReadOnlyCredential returns a credential without signing capability.
func NewReadOnlyCredential() *Credential {
	return &Credential{kind: ReadOnlyProvider}
}

// NewSignerCredential parses a hex private key into a transaction-capable
// credential without the typed-data capability.
func NewSignerCredential(privateKeyHex string, chainID int64) (*Credential, error) {
	return newKeyCredential(privateKeyHex, chainID, PlainSigner)
}

// NewTypedDataCredential parses a hex private key into a credential capable
// of both transactions and EIP-712 typed-data signing.
func NewTypedDataCredential(privateKeyHex string, chainID int64) (*Credential, error) {
	return newKeyCredential(privateKeyHex, chainID, TypedSigner)
}

func newKeyCredential(privateKeyHex string, chainID int64, kind CredentialKind) (*Credential, error) {
	address, key, err := ParsePrivateKeyECDSA(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return &Credential{
		kind:    kind,
		key:     key,
		address: address,
		chainID: big.NewInt(chainID),
	}, nil
}

// Kind returns the capability tag.
func (c *Credential) Kind() CredentialKind {
	return c.kind
}

// Address returns the signer address, or the zero address for a read-only
// credential.
func (c *Credential) Address() common.Address {
	return c.address
}

// RequireSigner fails with SignerRequired when the credential cannot send
// transactions.
func (c *Credential) RequireSigner() error {
	if c.kind != PlainSigner && c.kind != TypedSigner {
		return sdkerrors.New(sdkerrors.KindSignerRequired, "operation requires a transaction-capable credential")
	}
	return nil
}

// RequireTypedDataSigner fails with TypedDataSignerRequired when the
// credential cannot sign EIP-712 typed data.
func (c *Credential) RequireTypedDataSigner() error {
	if c.kind != TypedSigner {
		return sdkerrors.New(sdkerrors.KindTypedDataSignerRequired, "operation requires an EIP-712 capable credential")
	}
	return nil
}

// TransactOpts creates a transactor bound to the credential's chain ID with
// the given context attached.
func (c *Credential) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if err := c.RequireSigner(); err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// SignTypedData hashes the EIP-712 payload and signs the digest, returning
// the 65-byte raw signature exactly as the signing back-end produced it
// (recovery byte 0 or 1, last). Callers normalize it through the trading
// signature codec.
func (c *Credential) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	if err := c.RequireTypedDataSigner(); err != nil {
		return nil, err
	}
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest, c.key)
}
