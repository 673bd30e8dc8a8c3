package store

import (
	"context"
	"time"
)

// ProposalStatus is the lifecycle state of a persisted proposal. This pipeline
// only ever writes StatusPending; later stages own subsequent transitions.
type ProposalStatus string

const (
	StatusPending ProposalStatus = "Pending"
	StatusActive  ProposalStatus = "Active"
	StatusClosed  ProposalStatus = "Closed"
)

// ProposalRecord is the off-chain metadata row keyed by the on-chain proposal
// identifier.
type ProposalRecord struct {
	ID                  string
	Title               string
	Description         string
	Summary             string
	Category            string
	ProposerAddress     string
	VotingPeriodSeconds int64
	ChainID             uint64
	Status              ProposalStatus
	VotesFor            int64
	VotesAgainst        int64
	VotesAbstain        int64
	Views               int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Store persists proposal metadata.
type Store interface {
	// InsertProposal inserts exactly one row per identifier. Inserting an
	// identifier that already exists is benign success, under the invariant
	// that identifiers are unique and monotonically assigned by the chain.
	InsertProposal(ctx context.Context, rec *ProposalRecord) error

	// Close releases the underlying connections.
	Close()
}
