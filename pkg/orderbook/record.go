package orderbook

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/thea-protocol/thea-sdk-go/pkg/trading"
)

// OrderRecord is the wire representation of a signed order. Every numeric
// field is a decimal string (values exceed 2^53, so native JSON numbers would
// lose precision) and addresses are lower-case.
type OrderRecord struct {
	Direction string `json:"direction"`
	Maker     string `json:"maker"`
	Taker     string `json:"taker"`
	Expiry    string `json:"expiry"`
	Nonce     string `json:"nonce"`

	Erc20Token       string      `json:"erc20Token"`
	Erc20TokenAmount string      `json:"erc20TokenAmount"`
	Fees             []FeeRecord `json:"fees"`

	Erc1155Token           string           `json:"erc1155Token"`
	Erc1155TokenID         string           `json:"erc1155TokenId"`
	Erc1155TokenProperties []PropertyRecord `json:"erc1155TokenProperties"`
	Erc1155TokenAmount     string           `json:"erc1155TokenAmount"`

	Signature SignatureRecord `json:"signature"`
}

// FeeRecord is the wire form of a fee entry.
type FeeRecord struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	FeeData   string `json:"feeData"`
}

// PropertyRecord is the wire form of an NFT property constraint.
type PropertyRecord struct {
	PropertyValidator string `json:"propertyValidator"`
	PropertyData      string `json:"propertyData"`
}

// SignatureRecord is the wire form of an order signature.
type SignatureRecord struct {
	SignatureType string `json:"signatureType"`
	V             string `json:"v"`
	R             string `json:"r"`
	S             string `json:"s"`
}

func lower(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// NewOrderRecord converts a signed order to its wire representation.
func NewOrderRecord(order *trading.SignedOrder) *OrderRecord {
	fees := make([]FeeRecord, 0, len(order.Fees))
	for _, fee := range order.Fees {
		fees = append(fees, FeeRecord{
			Recipient: lower(fee.Recipient),
			Amount:    fee.Amount.String(),
			FeeData:   hexutil.Encode(fee.FeeData),
		})
	}

	properties := make([]PropertyRecord, 0, len(order.Erc1155TokenProperties))
	for _, prop := range order.Erc1155TokenProperties {
		properties = append(properties, PropertyRecord{
			PropertyValidator: lower(prop.PropertyValidator),
			PropertyData:      hexutil.Encode(prop.PropertyData),
		})
	}

	return &OrderRecord{
		Direction:              strconv.Itoa(int(order.Direction)),
		Maker:                  lower(order.Maker),
		Taker:                  lower(order.Taker),
		Expiry:                 order.Expiry.String(),
		Nonce:                  order.Nonce.String(),
		Erc20Token:             lower(order.Erc20Token),
		Erc20TokenAmount:       order.Erc20TokenAmount.String(),
		Fees:                   fees,
		Erc1155Token:           lower(order.Erc1155Token),
		Erc1155TokenID:         order.Erc1155TokenID.String(),
		Erc1155TokenProperties: properties,
		Erc1155TokenAmount:     order.Erc1155TokenAmount.String(),
		Signature: SignatureRecord{
			SignatureType: strconv.Itoa(int(order.Signature.SignatureType)),
			V:             strconv.Itoa(int(order.Signature.V)),
			R:             order.Signature.R.Hex(),
			S:             order.Signature.S.Hex(),
		},
	}
}

// SignedOrder converts the wire record back into a signed order.
func (r *OrderRecord) SignedOrder() (*trading.SignedOrder, error) {
	direction, err := parseUint8(r.Direction, "direction")
	if err != nil {
		return nil, err
	}

	expiry, err := parseBig(r.Expiry, "expiry")
	if err != nil {
		return nil, err
	}
	nonce, err := parseBig(r.Nonce, "nonce")
	if err != nil {
		return nil, err
	}
	erc20Amount, err := parseBig(r.Erc20TokenAmount, "erc20TokenAmount")
	if err != nil {
		return nil, err
	}
	tokenID, err := parseBig(r.Erc1155TokenID, "erc1155TokenId")
	if err != nil {
		return nil, err
	}
	nftAmount, err := parseBig(r.Erc1155TokenAmount, "erc1155TokenAmount")
	if err != nil {
		return nil, err
	}

	fees := make([]trading.Fee, 0, len(r.Fees))
	for _, fee := range r.Fees {
		amount, err := parseBig(fee.Amount, "fee amount")
		if err != nil {
			return nil, err
		}
		data, err := hexutil.Decode(fee.FeeData)
		if err != nil {
			return nil, fmt.Errorf("fee data: %w", err)
		}
		fees = append(fees, trading.Fee{
			Recipient: common.HexToAddress(fee.Recipient),
			Amount:    amount,
			FeeData:   data,
		})
	}

	properties := make([]trading.Property, 0, len(r.Erc1155TokenProperties))
	for _, prop := range r.Erc1155TokenProperties {
		data, err := hexutil.Decode(prop.PropertyData)
		if err != nil {
			return nil, fmt.Errorf("property data: %w", err)
		}
		properties = append(properties, trading.Property{
			PropertyValidator: common.HexToAddress(prop.PropertyValidator),
			PropertyData:      data,
		})
	}

	sigType, err := parseUint8(r.Signature.SignatureType, "signatureType")
	if err != nil {
		return nil, err
	}
	v, err := parseUint8(r.Signature.V, "v")
	if err != nil {
		return nil, err
	}

	return &trading.SignedOrder{
		Order: trading.Order{
			Direction:              trading.TradeDirection(direction),
			Maker:                  common.HexToAddress(r.Maker),
			Taker:                  common.HexToAddress(r.Taker),
			Expiry:                 expiry,
			Nonce:                  nonce,
			Erc20Token:             common.HexToAddress(r.Erc20Token),
			Erc20TokenAmount:       erc20Amount,
			Fees:                   fees,
			Erc1155Token:           common.HexToAddress(r.Erc1155Token),
			Erc1155TokenID:         tokenID,
			Erc1155TokenProperties: properties,
			Erc1155TokenAmount:     nftAmount,
		},
		Signature: trading.Signature{
			SignatureType: sigType,
			V:             v,
			R:             common.HexToHash(r.Signature.R),
			S:             common.HexToHash(r.Signature.S),
		},
	}, nil
}

func parseBig(s, field string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("field %s: %q is not a decimal integer", field, s)
	}
	return v, nil
}

func parseUint8(s, field string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	return uint8(v), nil
}
