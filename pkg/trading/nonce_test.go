package trading_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

func TestGenerateNonce_Structure(t *testing.T) {
	nonce, err := trading.GenerateNonce("42")
	require.NoError(t, err)

	n, err := trading.ParseNonce(nonce)
	require.NoError(t, err)
	require.LessOrEqual(t, n.BitLen(), 256, "nonce must fit a uint256")

	// The high 128 bits hold prefix+appID read as one decimal integer.
	high := new(big.Int).Rsh(n, 128)
	assert.Equal(t, "100142", high.String())

	low := new(big.Int).And(n, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
	assert.LessOrEqual(t, low.BitLen(), 128)
}

func TestGenerateNonce_DefaultAppID(t *testing.T) {
	nonce, err := trading.GenerateNonce("")
	require.NoError(t, err)

	n, err := trading.ParseNonce(nonce)
	require.NoError(t, err)
	assert.Equal(t, "10010", new(big.Int).Rsh(n, 128).String())
}

func TestGenerateNonce_Unique(t *testing.T) {
	a, err := trading.GenerateNonce("7")
	require.NoError(t, err)
	b, err := trading.GenerateNonce("7")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	// The app namespace is shared between the two.
	na, err := trading.ParseNonce(a)
	require.NoError(t, err)
	nb, err := trading.ParseNonce(b)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Rsh(na, 128), new(big.Int).Rsh(nb, 128))
}

func TestGenerateNonce_RejectsBadAppID(t *testing.T) {
	for _, appID := range []string{"abc", "12x", "-5", strings.Repeat("9", 125)} {
		_, err := trading.GenerateNonce(appID)
		assert.Equal(t, sdkerrors.KindInvalidAppID, sdkerrors.KindOf(err), "appID %q", appID)
	}
}

func TestParseNonce_Invalid(t *testing.T) {
	_, err := trading.ParseNonce("12ab")
	assert.Equal(t, sdkerrors.KindInvalidAppID, sdkerrors.KindOf(err))

	// 848-bit value: parseable as an integer but not submittable on-chain.
	huge := "1" + strings.Repeat("0", 255)
	_, err = trading.ParseNonce(huge)
	assert.Equal(t, sdkerrors.KindInvalidAppID, sdkerrors.KindOf(err))
}
