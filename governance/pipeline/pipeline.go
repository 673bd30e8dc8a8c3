package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"

	blockchain "govpipe/blockchain/client"
	"govpipe/blockchain/types"
	"govpipe/governance/resolver"
	"govpipe/internal/models"
	"govpipe/storage/store"
)

// State names the stages of a single proposal resolution run.
type State string

const (
	StateIdle            State = "Idle"
	StateSubmitting      State = "Submitting"
	StateAwaitingReceipt State = "AwaitingReceipt"
	StateResolving       State = "Resolving"
	StatePersisting      State = "Persisting"
	StateDone            State = "Done"
	StateFailed          State = "Failed"
)

// ErrReceiptTimeout marks the ambiguous case where a transaction hash was
// obtained but no receipt materialized before the deadline. The on-chain state
// is unknown; the transaction may still confirm.
var ErrReceiptTimeout = errors.New("transaction submitted but receipt never materialized")

// Submitter is the submission executor's surface the pipeline depends on.
type Submitter interface {
	Submit(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error)
}

// Outcome is the terminal result of one pipeline run, consumed by the
// presentation layer (toast/navigation are driven off these variants, never
// from inside the pipeline).
type Outcome struct {
	Status     models.OutcomeStatus
	ProposalID string
	TxHash     common.Hash
	Err        error
}

// Timeouts bounds the three suspension points of a run. Zero values mean no
// internal bound beyond the caller's context.
type Timeouts struct {
	Submission  time.Duration
	Receipt     time.Duration
	Persistence time.Duration
}

// Pipeline orchestrates submit -> await receipt -> scan logs -> persist for a
// single proposal. Each Run is an independent instance; the pipeline itself
// holds no per-run state.
type Pipeline struct {
	submitter Submitter
	client    blockchain.ChainClient
	store     store.Store
	timeouts  Timeouts
	logger    *log.Logger
}

// New creates a Pipeline.
func New(submitter Submitter, client blockchain.ChainClient, s store.Store, timeouts Timeouts, logger *log.Logger) *Pipeline {
	return &Pipeline{
		submitter: submitter,
		client:    client,
		store:     s,
		timeouts:  timeouts,
		logger:    logger,
	}
}

// Run executes the full resolution pipeline for one validated draft.
// The returned Outcome is always terminal:
//
//	Succeeded             - on-chain success, identifier resolved, metadata saved
//	SucceededNoIdentifier - on-chain success, no qualifying log; manual lookup required
//	PartialFailure        - on-chain success, metadata not saved
//	Failed                - submission failed or the receipt never materialized
func (p *Pipeline) Run(ctx context.Context, requestID string, draft *models.ProposalDraft, proposerAddress string) Outcome {
	state := StateIdle
	advance := func(next State) {
		p.logger.Printf("Pipeline %s: %s -> %s", requestID, state, next)
		state = next
	}

	// Idle -> Submitting: build the fixed-arity request.
	advance(StateSubmitting)
	req, err := types.BuildSubmissionRequest(draft, p.client.GovernorAddress(), common.HexToAddress(proposerAddress))
	if err != nil {
		advance(StateFailed)
		return Outcome{Status: models.OutcomeFailed, Err: fmt.Errorf("failed to build submission request: %w", err)}
	}

	submitCtx, cancel := p.bound(ctx, p.timeouts.Submission)
	txHash, err := p.submitter.Submit(submitCtx, req)
	cancel()
	if err != nil {
		advance(StateFailed)
		return Outcome{Status: models.OutcomeFailed, Err: err}
	}

	// Submitting -> AwaitingReceipt: hash obtained, path-agnostic.
	advance(StateAwaitingReceipt)
	receiptCtx, cancel := p.bound(ctx, p.timeouts.Receipt)
	receipt, err := p.client.WaitForReceipt(receiptCtx, txHash)
	cancel()
	if err != nil {
		advance(StateFailed)
		return Outcome{
			Status: models.OutcomeFailed,
			TxHash: txHash,
			Err:    fmt.Errorf("%w: %v", ErrReceiptTimeout, err),
		}
	}

	advance(StateResolving)
	proposalID, found := resolver.ResolveProposalID(receipt, p.client.GovernorAddress())
	if !found {
		// Deliberate soft failure: the proposal exists on-chain but its
		// identifier could not be recovered from the logs. Persistence is
		// skipped and the caller reconciles via the governor's proposal count.
		p.logger.Printf("Pipeline %s: no qualifying log in receipt %s, manual lookup required", requestID, txHash.Hex())
		advance(StateDone)
		return Outcome{Status: models.OutcomeSucceededNoID, TxHash: txHash}
	}

	// Resolving -> Persisting: single attempt, no automatic retries.
	advance(StatePersisting)
	persistCtx, cancel := p.bound(ctx, p.timeouts.Persistence)
	err = p.store.InsertProposal(persistCtx, p.buildRecord(proposalID, draft, proposerAddress))
	cancel()
	if err != nil {
		// The on-chain action already succeeded; report this distinctly from a
		// submission failure.
		advance(StateFailed)
		return Outcome{
			Status:     models.OutcomePartialFailure,
			ProposalID: proposalID,
			TxHash:     txHash,
			Err:        fmt.Errorf("proposal %s created on-chain but metadata not saved: %w", proposalID, err),
		}
	}

	advance(StateDone)
	return Outcome{Status: models.OutcomeSucceeded, ProposalID: proposalID, TxHash: txHash}
}

func (p *Pipeline) buildRecord(proposalID string, draft *models.ProposalDraft, proposerAddress string) *store.ProposalRecord {
	// Draft validation upstream guarantees the voting period parses.
	seconds, err := draft.VotingPeriod.Seconds()
	if err != nil {
		p.logger.Printf("Warning: %v, persisting zero voting period", err)
	}

	now := time.Now().UTC()
	return &store.ProposalRecord{
		ID:                  proposalID,
		Title:               draft.Title,
		Description:         draft.ComposeDescription(),
		Summary:             draft.Summary,
		Category:            string(draft.Category),
		ProposerAddress:     proposerAddress,
		VotingPeriodSeconds: seconds,
		ChainID:             p.client.ChainID(),
		Status:              store.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (p *Pipeline) bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
