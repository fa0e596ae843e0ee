// Package trading implements order construction, EIP-712 signing and market
// matching for ERC-1155 carbon-credit positions traded against a stable
// token on the protocol exchange.
package trading

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

// Signature scheme identifiers as understood by the exchange contract.
const (
	// SignatureTypeEIP712 marks a signature produced over EIP-712 typed data.
	SignatureTypeEIP712 uint8 = 2
)

// ECSignature is a canonical {v, r, s} ECDSA signature triple with
// v normalized to 27 or 28.
type ECSignature struct {
	V uint8       `json:"v"`
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
}

// Signature is an ECSignature tagged with the scheme the exchange contract
// should use to validate it.
type Signature struct {
	SignatureType uint8       `json:"signatureType"`
	V             uint8       `json:"v"`
	R             common.Hash `json:"r"`
	S             common.Hash `json:"s"`
}

// isRecoveryByte reports whether b is a recognizable ECDSA recovery value.
func isRecoveryByte(b byte) bool {
	return b == 0 || b == 1 || b == 27 || b == 28
}

// ParseRawSignature normalizes a 65-byte raw ECDSA signature of ambiguous
// byte layout into a canonical {v, r, s} triple.
//
// Some signing back-ends emit R||S||V with the recovery byte last, others
// emit V||R||S with it first. The last byte is tried as the recovery value
// first; if it is not one of {0, 1, 27, 28} the first byte is tried instead.
// Recovery values below 27 are shifted up by 27.
func ParseRawSignature(rawSignature string) (ECSignature, error) {
	raw, err := hexutil.Decode(rawSignature)
	if err != nil {
		return ECSignature{}, sdkerrors.Wrap(sdkerrors.KindInvalidSignatureSize, "signature is not valid hex", err)
	}
	return ParseRawSignatureBytes(raw)
}

// ParseRawSignatureBytes is ParseRawSignature for an already-decoded signature.
func ParseRawSignatureBytes(raw []byte) (ECSignature, error) {
	if len(raw) != 65 {
		return ECSignature{}, sdkerrors.Newf(sdkerrors.KindInvalidSignatureSize,
			"expected 65 signature bytes, got %d", len(raw))
	}

	if v := raw[64]; isRecoveryByte(v) {
		if v < 27 {
			v += 27
		}
		return ECSignature{
			V: v,
			R: common.BytesToHash(raw[0:32]),
			S: common.BytesToHash(raw[32:64]),
		}, nil
	}

	v := raw[0]
	if !isRecoveryByte(v) {
		return ECSignature{}, sdkerrors.New(sdkerrors.KindInvalidSignatureLayout,
			"signature carries no recovery byte at either end")
	}
	if v < 27 {
		v += 27
	}
	return ECSignature{
		V: v,
		R: common.BytesToHash(raw[1:33]),
		S: common.BytesToHash(raw[33:65]),
	}, nil
}
