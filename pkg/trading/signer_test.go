package trading_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// keySigner signs typed data with a raw ECDSA key, emitting R||S||V with
// the recovery byte left at 0/1 the way geth's crypto.Sign does.
type keySigner struct {
	key *ecdsa.PrivateKey
}

func (s keySigner) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest, s.key)
}

func testOrder(t *testing.T, maker common.Address) *trading.Order {
	t.Helper()
	b := trading.NewBuilder(testMarket)
	order, err := b.BuildOrder(big.NewInt(3), trading.SideSell, decimal.RequireFromString("2.5"), big.NewInt(4), maker, nil)
	require.NoError(t, err)
	return order
}

func TestSignOrder_RecoversMakerAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	maker := crypto.PubkeyToAddress(key.PublicKey)
	order := testOrder(t, maker)
	verifying := common.HexToAddress("0x5555555555555555555555555555555555555555")

	signed, err := trading.SignOrder(order, keySigner{key: key}, 137, verifying)
	require.NoError(t, err)

	assert.Equal(t, trading.SignatureTypeEIP712, signed.Signature.SignatureType)
	require.Contains(t, []uint8{27, 28}, signed.Signature.V)

	digest, err := trading.OrderDigest(order, 137, verifying)
	require.NoError(t, err)

	raw := make([]byte, 65)
	copy(raw[0:32], signed.Signature.R.Bytes())
	copy(raw[32:64], signed.Signature.S.Bytes())
	raw[64] = signed.Signature.V - 27

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	require.NoError(t, err)
	assert.Equal(t, maker, crypto.PubkeyToAddress(*pub))
}

func TestOrderDigest_AcceptsGeneratedNonce(t *testing.T) {
	// The typed-data encoder rejects uint256 values wider than 256 bits, so
	// every nonce the default source produces must hash cleanly.
	order := testOrder(t, common.HexToAddress("0x6666666666666666666666666666666666666666"))
	require.LessOrEqual(t, order.Nonce.BitLen(), 256)

	_, err := trading.OrderDigest(order, 137, common.HexToAddress("0x5555555555555555555555555555555555555555"))
	require.NoError(t, err)
}

func TestSignOrder_DigestDependsOnChainAndContract(t *testing.T) {
	order := testOrder(t, common.HexToAddress("0x6666666666666666666666666666666666666666"))
	verifying := common.HexToAddress("0x5555555555555555555555555555555555555555")

	base, err := trading.OrderDigest(order, 137, verifying)
	require.NoError(t, err)

	otherChain, err := trading.OrderDigest(order, 80001, verifying)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherChain)

	otherContract, err := trading.OrderDigest(order, 137, common.HexToAddress("0x7777777777777777777777777777777777777777"))
	require.NoError(t, err)
	assert.NotEqual(t, base, otherContract)
}

func TestOrderTypedData_WireValues(t *testing.T) {
	order := testOrder(t, common.HexToAddress("0xAbCd000000000000000000000000000000000001"))

	data := trading.OrderTypedData(order, 137, common.HexToAddress("0x5555555555555555555555555555555555555555"))

	assert.Equal(t, "ZeroEx", data.Domain.Name)
	assert.Equal(t, "1.0.0", data.Domain.Version)
	assert.Equal(t, "ERC1155Order", data.PrimaryType)

	message := data.Message
	// Numbers travel as decimal strings, addresses lower-case.
	assert.Equal(t, "0", message["direction"])
	assert.Equal(t, order.Erc20TokenAmount.String(), message["erc20TokenAmount"])
	assert.Equal(t, "0xabcd000000000000000000000000000000000001", message["maker"])
}

func TestSignOrder_PropagatesSignerFailure(t *testing.T) {
	order := testOrder(t, common.Address{})
	_, err := trading.SignOrder(order, failingSigner{}, 137, common.Address{})
	assert.Error(t, err)
}

type failingSigner struct{}

func (failingSigner) SignTypedData(apitypes.TypedData) ([]byte, error) {
	return nil, assert.AnError
}
