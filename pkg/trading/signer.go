package trading

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TypedDataSigner is the capability required to sign orders: produce a
// 65-byte raw ECDSA signature over EIP-712 typed structured data.
// The blockchain package's credential satisfies it when constructed from a
// private key.
type TypedDataSigner interface {
	SignTypedData(data apitypes.TypedData) ([]byte, error)
}

// SignOrder produces an EIP-712 signature over the order and merges it into
// a SignedOrder. The raw signature is normalized through the signature codec,
// so both R||S||V and V||R||S back-ends are accepted. Signer failures are
// propagated verbatim.
func SignOrder(order *Order, signer TypedDataSigner, chainID int64, verifyingContract common.Address) (*SignedOrder, error) {
	typed := OrderTypedData(order, chainID, verifyingContract)

	raw, err := signer.SignTypedData(typed)
	if err != nil {
		return nil, err
	}

	sig, err := ParseRawSignature(hexutil.Encode(raw))
	if err != nil {
		return nil, err
	}

	return &SignedOrder{
		Order: *order,
		Signature: Signature{
			SignatureType: SignatureTypeEIP712,
			V:             sig.V,
			R:             sig.R,
			S:             sig.S,
		},
	}, nil
}
