package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"govpipe/internal/messaging/producer"
	"govpipe/internal/models"
)

// ErrValidation marks caller errors so the transport layer can map them to a
// 400 response.
var ErrValidation = errors.New("invalid proposal draft")

// ProposalInput defines the core information required for a proposal submission
type ProposalInput struct {
	Draft           models.ProposalDraft
	ProposerAddress string
}

// ProposalResult defines the return information after successful acceptance
type ProposalResult struct {
	RequestID         string
	ReceivedTimestamp time.Time
}

// Service encapsulates the core business logic of the API gateway
type Service struct {
	producer producer.SubmissionProducer
	logger   *log.Logger
}

// NewService creates a new Service instance
func NewService(p producer.SubmissionProducer, l *log.Logger) *Service {
	return &Service{producer: p, logger: l}
}

// SubmitProposal validates a draft, assigns it a request ID and hands it to
// the submission engine via the message queue. The proposal is accepted, not
// yet on-chain, when this returns.
func (s *Service) SubmitProposal(ctx context.Context, input *ProposalInput) (*ProposalResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	receivedTimestamp := time.Now().UTC()
	requestID := uuid.NewString()

	msg := &models.ProposalMessage{
		RequestID:       requestID,
		Draft:           input.Draft,
		ProposerAddress: input.ProposerAddress,
		EnqueuedAt:      receivedTimestamp.Format(time.RFC3339Nano),
	}

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.logger.Printf("Service: Failed to enqueue proposal (RequestID: %s): %v", requestID, err)
		return nil, fmt.Errorf("failed to enqueue proposal: %w", err)
	}

	return &ProposalResult{
		RequestID:         requestID,
		ReceivedTimestamp: receivedTimestamp,
	}, nil
}

func validateInput(input *ProposalInput) error {
	draft := &input.Draft

	if draft.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if draft.Summary == "" {
		return fmt.Errorf("%w: summary is required", ErrValidation)
	}
	if !draft.Category.Valid() {
		return fmt.Errorf("%w: unknown category '%s'", ErrValidation, draft.Category)
	}
	if _, err := draft.VotingPeriod.Seconds(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !common.IsHexAddress(input.ProposerAddress) {
		return fmt.Errorf("%w: invalid proposer address '%s'", ErrValidation, input.ProposerAddress)
	}
	for i, action := range draft.TreasuryActions {
		if !common.IsHexAddress(action.Target) {
			return fmt.Errorf("%w: treasury action %d has invalid target '%s'", ErrValidation, i, action.Target)
		}
		if _, err := action.ValueBig(); err != nil {
			return fmt.Errorf("%w: treasury action %d: %v", ErrValidation, i, err)
		}
	}
	return nil
}

// Close gracefully shuts down the service
func (s *Service) Close() {
	// The producer is owned and closed by the caller.
}
