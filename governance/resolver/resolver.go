package resolver

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// ResolveProposalID extracts the proposal identifier from a receipt's event
// logs. The scan is heuristic, not a semantic event-signature match: it
// assumes the first indexed argument of the first qualifying log is the
// proposal id. This tolerates governor ABI variants at the cost of possible
// false positives; a strict ProposalCreated decoder can replace it behind this
// function without touching the pipeline.
//
// Order, first match wins:
//  1. first log emitted by the governor address carrying more than one topic
//  2. first log from any address carrying more than one topic
//
// The identifier is topic[1] interpreted as a big unsigned integer, rendered
// in decimal. Returns ("", false) when no log qualifies.
func ResolveProposalID(receipt *ethtypes.Receipt, governor common.Address) (string, bool) {
	if receipt == nil || len(receipt.Logs) == 0 {
		return "", false
	}

	for _, record := range receipt.Logs {
		if record.Address == governor && len(record.Topics) > 1 {
			return decodeIdentifier(record.Topics[1]), true
		}
	}

	for _, record := range receipt.Logs {
		if len(record.Topics) > 1 {
			return decodeIdentifier(record.Topics[1]), true
		}
	}

	return "", false
}

func decodeIdentifier(topic common.Hash) string {
	return new(big.Int).SetBytes(topic.Bytes()).String()
}
