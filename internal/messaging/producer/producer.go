package producer

import (
	"context"

	"govpipe/internal/models"
)

// SubmissionProducer publishes accepted proposal drafts for the engine to pick up.
type SubmissionProducer interface {
	// Publish sends a single proposal message to the submissions topic.
	Publish(ctx context.Context, msg *models.ProposalMessage) error

	// Close closes the producer connection
	Close() error
}

// OutcomeProducer publishes terminal pipeline outcomes for the presentation
// layer (toasts, navigation) and downstream indexers.
type OutcomeProducer interface {
	// Publish sends a single outcome event to the outcomes topic.
	Publish(ctx context.Context, event *models.OutcomeEvent) error

	// Close closes the producer connection
	Close() error
}
