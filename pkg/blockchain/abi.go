package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal contract ABIs. Only the functions the SDK actually calls are
// declared; the full interfaces live in the protocol contracts repo.

const erc20ABIJSON = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const erc1155ABIJSON = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]},
{"type":"function","name":"uri","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"string"}]}
]`

const orderComponentsJSON = `[
{"name":"direction","type":"uint8"},
{"name":"maker","type":"address"},
{"name":"taker","type":"address"},
{"name":"expiry","type":"uint256"},
{"name":"nonce","type":"uint256"},
{"name":"erc20Token","type":"address"},
{"name":"erc20TokenAmount","type":"uint256"},
{"name":"fees","type":"tuple[]","components":[
  {"name":"recipient","type":"address"},
  {"name":"amount","type":"uint256"},
  {"name":"feeData","type":"bytes"}]},
{"name":"erc1155Token","type":"address"},
{"name":"erc1155TokenId","type":"uint256"},
{"name":"erc1155TokenProperties","type":"tuple[]","components":[
  {"name":"propertyValidator","type":"address"},
  {"name":"propertyData","type":"bytes"}]},
{"name":"erc1155TokenAmount","type":"uint128"}
]`

const signatureComponentsJSON = `[
{"name":"signatureType","type":"uint8"},
{"name":"v","type":"uint8"},
{"name":"r","type":"bytes32"},
{"name":"s","type":"bytes32"}
]`

var exchangeABIJSON = `[
{"type":"function","name":"cancelERC1155Order","stateMutability":"nonpayable","inputs":[{"name":"orderNonce","type":"uint256"}],"outputs":[]},
{"type":"function","name":"batchBuyERC1155s","stateMutability":"payable","inputs":[
  {"name":"sellOrders","type":"tuple[]","components":` + orderComponentsJSON + `},
  {"name":"signatures","type":"tuple[]","components":` + signatureComponentsJSON + `},
  {"name":"erc1155FillAmounts","type":"uint128[]"},
  {"name":"revertIfIncomplete","type":"bool"}],
 "outputs":[{"name":"successes","type":"bool[]"}]},
{"type":"function","name":"batchSellERC1155s","stateMutability":"nonpayable","inputs":[
  {"name":"buyOrders","type":"tuple[]","components":` + orderComponentsJSON + `},
  {"name":"signatures","type":"tuple[]","components":` + signatureComponentsJSON + `},
  {"name":"erc1155FillAmounts","type":"uint128[]"},
  {"name":"revertIfIncomplete","type":"bool"}],
 "outputs":[{"name":"successes","type":"bool[]"}]}
]`

const baseTokenManagerABIJSON = `[
{"type":"function","name":"convert","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"unwrap","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"offchainAccount","type":"string"}],"outputs":[{"name":"requestId","type":"uint256"}]},
{"type":"function","name":"recover","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"rollTokens","stateMutability":"nonpayable","inputs":[{"name":"vintage","type":"uint256"}],"outputs":[]},
{"type":"event","name":"UnwrapRequested","inputs":[
  {"name":"requestId","type":"uint256","indexed":false},
  {"name":"id","type":"uint256","indexed":false},
  {"name":"amount","type":"uint256","indexed":false},
  {"name":"offchainAccount","type":"string","indexed":false}]}
]`

const retirementHandlerABIJSON = `[
{"type":"function","name":"retire","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"beneficiary","type":"address"}],"outputs":[{"name":"requestId","type":"uint256"}]},
{"type":"event","name":"RetireRequested","inputs":[
  {"name":"requestId","type":"uint256","indexed":false},
  {"name":"id","type":"uint256","indexed":false},
  {"name":"amount","type":"uint256","indexed":false},
  {"name":"beneficiary","type":"address","indexed":false}]}
]`

var (
	erc20ABI             = mustParseABI(erc20ABIJSON)
	erc1155ABI           = mustParseABI(erc1155ABIJSON)
	exchangeABI          = mustParseABI(exchangeABIJSON)
	baseTokenManagerABI  = mustParseABI(baseTokenManagerABIJSON)
	retirementHandlerABI = mustParseABI(retirementHandlerABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid embedded ABI: " + err.Error())
	}
	return parsed
}

// LibNFTOrderERC1155Order mirrors the exchange's order tuple for ABI packing.
// Field names follow the ABI component names.
type LibNFTOrderERC1155Order struct {
	Direction              uint8
	Maker                  common.Address
	Taker                  common.Address
	Expiry                 *big.Int
	Nonce                  *big.Int
	Erc20Token             common.Address
	Erc20TokenAmount       *big.Int
	Fees                   []LibNFTOrderFee
	Erc1155Token           common.Address
	Erc1155TokenId         *big.Int
	Erc1155TokenProperties []LibNFTOrderProperty
	Erc1155TokenAmount     *big.Int
}

// LibNFTOrderFee mirrors the exchange's fee tuple.
type LibNFTOrderFee struct {
	Recipient common.Address
	Amount    *big.Int
	FeeData   []byte
}

// LibNFTOrderProperty mirrors the exchange's property tuple.
type LibNFTOrderProperty struct {
	PropertyValidator common.Address
	PropertyData      []byte
}

// LibSignatureSignature mirrors the exchange's signature tuple.
type LibSignatureSignature struct {
	SignatureType uint8
	V             uint8
	R             [32]byte
	S             [32]byte
}
