package blockchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// FieldRequestID names the receipt field carrying the off-chain request
// identifier emitted by unwrap and retire transactions.
const FieldRequestID = "requestId"

// UnwrapRequestExtractor pulls the request ID out of the UnwrapRequested
// event emitted by the base token manager.
func UnwrapRequestExtractor() EventExtractor {
	return requestIDExtractor(baseTokenManagerABI, "UnwrapRequested")
}

// RetireRequestExtractor pulls the request ID out of the RetireRequested
// event emitted by the retirement handler.
func RetireRequestExtractor() EventExtractor {
	return requestIDExtractor(retirementHandlerABI, "RetireRequested")
}

func requestIDExtractor(contractABI abi.ABI, eventName string) EventExtractor {
	event := contractABI.Events[eventName]
	return func(receipt *types.Receipt) (map[string]string, error) {
		for _, entry := range receipt.Logs {
			if len(entry.Topics) == 0 || entry.Topics[0] != event.ID {
				continue
			}
			values, err := contractABI.Unpack(eventName, entry.Data)
			if err != nil {
				return nil, fmt.Errorf("unpacking %s event: %w", eventName, err)
			}
			requestID, ok := values[0].(*big.Int)
			if !ok {
				return nil, fmt.Errorf("%s event has no numeric request id", eventName)
			}
			return map[string]string{FieldRequestID: requestID.String()}, nil
		}
		return nil, fmt.Errorf("no %s event found in receipt", eventName)
	}
}
