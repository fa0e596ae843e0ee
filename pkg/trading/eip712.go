package trading

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// EIP-712 domain of the exchange proxy.
const (
	EIP712DomainName    = "ZeroEx"
	EIP712DomainVersion = "1.0.0"
)

// orderTypes is the typed-data schema of an ERC-1155 order, including the
// Fee and Property sub-schemas even when those lists are empty.
var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"ERC1155Order": {
		{Name: "direction", Type: "uint8"},
		{Name: "maker", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "expiry", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "erc20Token", Type: "address"},
		{Name: "erc20TokenAmount", Type: "uint256"},
		{Name: "fees", Type: "Fee[]"},
		{Name: "erc1155Token", Type: "address"},
		{Name: "erc1155TokenId", Type: "uint256"},
		{Name: "erc1155TokenProperties", Type: "Property[]"},
		{Name: "erc1155TokenAmount", Type: "uint128"},
	},
	"Fee": {
		{Name: "recipient", Type: "address"},
		{Name: "amount", Type: "uint256"},
		{Name: "feeData", Type: "bytes"},
	},
	"Property": {
		{Name: "propertyValidator", Type: "address"},
		{Name: "propertyData", Type: "bytes"},
	},
}

// OrderTypedData builds the EIP-712 typed-data payload for an order, bound to
// the given chain and verifying exchange contract.
func OrderTypedData(order *Order, chainID int64, verifyingContract common.Address) apitypes.TypedData {
	fees := make([]interface{}, 0, len(order.Fees))
	for _, fee := range order.Fees {
		fees = append(fees, map[string]interface{}{
			"recipient": strings.ToLower(fee.Recipient.Hex()),
			"amount":    bigString(fee.Amount),
			"feeData":   hexutil.Encode(fee.FeeData),
		})
	}

	properties := make([]interface{}, 0, len(order.Erc1155TokenProperties))
	for _, prop := range order.Erc1155TokenProperties {
		properties = append(properties, map[string]interface{}{
			"propertyValidator": strings.ToLower(prop.PropertyValidator.Hex()),
			"propertyData":      hexutil.Encode(prop.PropertyData),
		})
	}

	return apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "ERC1155Order",
		Domain: apitypes.TypedDataDomain{
			Name:              EIP712DomainName,
			Version:           EIP712DomainVersion,
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: strings.ToLower(verifyingContract.Hex()),
		},
		Message: apitypes.TypedDataMessage{
			"direction":              strconv.Itoa(int(order.Direction)),
			"maker":                  strings.ToLower(order.Maker.Hex()),
			"taker":                  strings.ToLower(order.Taker.Hex()),
			"expiry":                 bigString(order.Expiry),
			"nonce":                  bigString(order.Nonce),
			"erc20Token":             strings.ToLower(order.Erc20Token.Hex()),
			"erc20TokenAmount":       bigString(order.Erc20TokenAmount),
			"fees":                   fees,
			"erc1155Token":           strings.ToLower(order.Erc1155Token.Hex()),
			"erc1155TokenId":         bigString(order.Erc1155TokenID),
			"erc1155TokenProperties": properties,
			"erc1155TokenAmount":     bigString(order.Erc1155TokenAmount),
		},
	}
}

// OrderDigest returns the EIP-712 digest a signer commits to:
// keccak256("\x19\x01" || domainSeparator || hashStruct(order)).
func OrderDigest(order *Order, chainID int64, verifyingContract common.Address) (common.Hash, error) {
	typed := OrderTypedData(order, chainID, verifyingContract)
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(digest), nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
