package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"govpipe/internal/models"
)

// SubmissionRequest is the fixed-arity form of a draft, ready for the
// governor's propose call. The three slices are index-aligned and always have
// length >= 1.
type SubmissionRequest struct {
	Targets     []common.Address
	Values      []*big.Int
	CallData    [][]byte
	Description string

	Proposer common.Address
}

// BuildSubmissionRequest resolves a draft into a SubmissionRequest. A draft
// with no treasury actions is substituted with a single no-op action (governor
// target, zero value, empty calldata) so the contract call always receives
// non-empty arrays.
func BuildSubmissionRequest(draft *models.ProposalDraft, governor common.Address, proposer common.Address) (*SubmissionRequest, error) {
	actions := draft.TreasuryActions
	if len(actions) == 0 {
		actions = []models.TreasuryAction{{Target: governor.Hex(), Value: "0", CallData: "0x"}}
	}

	req := &SubmissionRequest{
		Targets:     make([]common.Address, 0, len(actions)),
		Values:      make([]*big.Int, 0, len(actions)),
		CallData:    make([][]byte, 0, len(actions)),
		Description: draft.ComposeDescription(),
		Proposer:    proposer,
	}

	for i, action := range actions {
		if !common.IsHexAddress(action.Target) {
			return nil, fmt.Errorf("treasury action %d: invalid target address '%s'", i, action.Target)
		}
		value, err := action.ValueBig()
		if err != nil {
			return nil, fmt.Errorf("treasury action %d: %w", i, err)
		}
		data, err := decodeCallData(action.CallData)
		if err != nil {
			return nil, fmt.Errorf("treasury action %d: %w", i, err)
		}
		req.Targets = append(req.Targets, common.HexToAddress(action.Target))
		req.Values = append(req.Values, value)
		req.CallData = append(req.CallData, data)
	}

	return req, nil
}

func decodeCallData(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("call data must be 0x-prefixed hex, got '%s'", s)
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid call data hex: %w", err)
	}
	return data, nil
}
