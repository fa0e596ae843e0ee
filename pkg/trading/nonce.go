package trading

import (
	"math/big"

	"github.com/google/uuid"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

const (
	// reservedAppIDPrefix namespaces every nonce produced by this SDK.
	reservedAppIDPrefix = "1001"

	// DefaultAppID is used when the caller supplies no application ID.
	DefaultAppID = "0"

	// nonceHalfBits is the bit width of each nonce half.
	nonceHalfBits = 128
)

// GenerateNonce produces a 256-bit order nonce embedding an application
// identifier and a random value. The high 128 bits hold the reserved prefix
// concatenated with appID, read as one decimal integer; the low 128 bits
// are random. The result is returned as a decimal string and always fits
// a uint256.
//
// Nonces only need to be unique, not secret, so a UUID is an acceptable
// randomness source. Collisions against existing orders are not checked;
// 128 bits of entropy makes them negligible.
func GenerateNonce(appID string) (string, error) {
	if appID == "" {
		appID = DefaultAppID
	}
	if !isDigits(appID) {
		return "", sdkerrors.Newf(sdkerrors.KindInvalidAppID, "app id %q is not numeric", appID)
	}

	high, ok := new(big.Int).SetString(reservedAppIDPrefix+appID, 10)
	if !ok || high.BitLen() > nonceHalfBits {
		return "", sdkerrors.Newf(sdkerrors.KindInvalidAppID, "app id is too long (%d digits)", len(appID))
	}

	id := uuid.New()
	low := new(big.Int).SetBytes(id[:])

	nonce := new(big.Int).Lsh(high, nonceHalfBits)
	nonce.Or(nonce, low)
	return nonce.String(), nil
}

// ParseNonce converts a decimal nonce string into the integer submitted
// on-chain. Values wider than 256 bits are rejected since the exchange
// contract takes the nonce as a uint256.
func ParseNonce(nonce string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(nonce, 10)
	if !ok {
		return nil, sdkerrors.Newf(sdkerrors.KindInvalidAppID, "nonce %q is not a decimal integer", nonce)
	}
	if n.BitLen() > 2*nonceHalfBits {
		return nil, sdkerrors.Newf(sdkerrors.KindInvalidAppID, "nonce %q does not fit a uint256", nonce)
	}
	return n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
