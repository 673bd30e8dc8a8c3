package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Category enumerates the proposal categories accepted by the gateway.
type Category string

const (
	CategoryGovernance Category = "governance"
	CategoryTreasury   Category = "treasury"
	CategoryProtocol   Category = "protocol"
	CategoryCommunity  Category = "community"
	CategoryTechnical  Category = "technical"
)

// Valid reports whether the category is one of the accepted values.
func (c Category) Valid() bool {
	switch c {
	case CategoryGovernance, CategoryTreasury, CategoryProtocol, CategoryCommunity, CategoryTechnical:
		return true
	}
	return false
}

// VotingPeriod enumerates the voting duration buckets a draft may request.
type VotingPeriod string

const (
	VotingPeriod3Days  VotingPeriod = "3d"
	VotingPeriod1Week  VotingPeriod = "1w"
	VotingPeriod2Weeks VotingPeriod = "2w"
	VotingPeriod1Month VotingPeriod = "1m"
)

// Seconds returns the voting period length in seconds, or an error for an
// unknown bucket.
func (p VotingPeriod) Seconds() (int64, error) {
	switch p {
	case VotingPeriod3Days:
		return 3 * 24 * 3600, nil
	case VotingPeriod1Week:
		return 7 * 24 * 3600, nil
	case VotingPeriod2Weeks:
		return 14 * 24 * 3600, nil
	case VotingPeriod1Month:
		return 30 * 24 * 3600, nil
	}
	return 0, fmt.Errorf("unknown voting period '%s'", p)
}

// TreasuryAction is a single call the proposal asks the treasury to execute.
// Value is a decimal string in the chain's smallest denomination; CallData is
// 0x-prefixed hex (may be empty or "0x").
type TreasuryAction struct {
	Target   string `json:"target"`
	Value    string `json:"value"`
	CallData string `json:"call_data"`
}

// ValueBig parses the action value as a non-negative big integer. An empty
// value means zero.
func (a TreasuryAction) ValueBig() (*big.Int, error) {
	if a.Value == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(a.Value, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid treasury action value '%s'", a.Value)
	}
	return v, nil
}

// ProposalDraft carries everything the caller supplies for one proposal.
// Read-only once handed to the submission path.
type ProposalDraft struct {
	Title            string           `json:"title"`
	Summary          string           `json:"summary"`
	ShortDescription string           `json:"short_description"`
	FullDescription  string           `json:"full_description"`
	Category         Category         `json:"category"`
	VotingPeriod     VotingPeriod     `json:"voting_period"`
	TreasuryActions  []TreasuryAction `json:"treasury_actions,omitempty"`
}

// ComposeDescription renders the single description string sent on-chain.
// The template is fixed; downstream indexers rely on the section order.
func (d *ProposalDraft) ComposeDescription() string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(d.Title)
	b.WriteString("\n\n")
	b.WriteString(d.Summary)
	b.WriteString("\n\n")
	b.WriteString(d.ShortDescription)
	b.WriteString("\n\n")
	b.WriteString(d.FullDescription)
	return b.String()
}

// ProposalMessage is the Kafka message the gateway publishes for each accepted
// draft and the engine consumes.
type ProposalMessage struct {
	RequestID       string        `json:"RequestID"`
	Draft           ProposalDraft `json:"Draft"`
	ProposerAddress string        `json:"ProposerAddress"`
	EnqueuedAt      string        `json:"EnqueuedAt"` // RFC3339Nano, string for easy JSON serialization
}

// OutcomeStatus enumerates terminal pipeline outcomes.
type OutcomeStatus string

const (
	OutcomeSucceeded      OutcomeStatus = "Succeeded"
	OutcomeSucceededNoID  OutcomeStatus = "SucceededNoIdentifier"
	OutcomePartialFailure OutcomeStatus = "PartialFailure"
	OutcomeFailed         OutcomeStatus = "Failed"
)

// OutcomeEvent is published to the outcomes topic once a pipeline run ends.
// The presentation layer consumes it to drive toasts and navigation.
type OutcomeEvent struct {
	RequestID   string        `json:"RequestID"`
	Status      OutcomeStatus `json:"Status"`
	ProposalID  string        `json:"ProposalID,omitempty"`
	TxHash      string        `json:"TxHash,omitempty"`
	ChainID     uint64        `json:"ChainID"`
	Error       string        `json:"Error,omitempty"`
	CompletedAt time.Time     `json:"CompletedAt"`
}
