package consumer

import (
	"context"
	"errors"
	"log"
	"time"

	"govpipe/internal/models"
)

// MockConsumer uses fixed predefined messages for testing.
type MockConsumer struct {
	logger   *log.Logger
	messages chan *models.ProposalMessage
}

// PredefinedMessages stores the messages to be simulated.
var PredefinedMessages []*models.ProposalMessage

// init generates fixed test data when the package is loaded.
func init() {
	PredefinedMessages = []*models.ProposalMessage{
		{
			RequestID: "a1b1c1d1-e1f1-1111-2222-1234567890ab",
			Draft: models.ProposalDraft{
				Title:            "Mock governance proposal",
				Summary:          "Adjust quorum threshold",
				ShortDescription: "Quorum change",
				FullDescription:  "Lower the quorum from 10% to 8%.",
				Category:         models.CategoryGovernance,
				VotingPeriod:     models.VotingPeriod1Week,
			},
			ProposerAddress: "0x1111111111111111111111111111111111111111",
			EnqueuedAt:      time.Now().UTC().Format(time.RFC3339Nano),
		},
		{
			RequestID: "a2b2c2d2-e2f2-3333-4444-abcdef123456",
			Draft: models.ProposalDraft{
				Title:            "Mock treasury proposal",
				Summary:          "Fund integration work",
				ShortDescription: "Integration grant",
				FullDescription:  "Grant for wallet integration work.",
				Category:         models.CategoryTreasury,
				VotingPeriod:     models.VotingPeriod2Weeks,
				TreasuryActions: []models.TreasuryAction{
					{Target: "0x2222222222222222222222222222222222222222", Value: "1000000000000000000", CallData: "0x"},
				},
			},
			ProposerAddress: "0x1111111111111111111111111111111111111111",
			EnqueuedAt:      time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

// NewMockConsumer creates a MockConsumer and loads predefined messages.
func NewMockConsumer(logger *log.Logger) *MockConsumer {
	mc := &MockConsumer{
		logger:   logger,
		messages: make(chan *models.ProposalMessage, len(PredefinedMessages)+5),
	}
	logger.Println("[MockConsumer] Initializing with predefined messages...")
	for _, msg := range PredefinedMessages {
		mc.messages <- msg
		logger.Printf("[MockConsumer] Added predefined message: request_id=%s", msg.RequestID)
	}
	logger.Println("[MockConsumer] Predefined messages loaded")
	return mc
}

// Consume reads predefined messages from the channel.
func (m *MockConsumer) Consume(ctx context.Context) (msg *models.ProposalMessage, ack func(success bool), err error) {
	m.logger.Println("[MockConsumer] Waiting for message...")
	select {
	case <-ctx.Done():
		m.logger.Println("[MockConsumer] Context cancelled, stopping consumption")
		return nil, nil, ctx.Err()
	case msg := <-m.messages:
		if msg == nil {
			m.logger.Println("[MockConsumer] Message channel closed")
			return nil, nil, errors.New("message channel closed")
		}
		m.logger.Printf("[MockConsumer] Consumed message: request_id=%s", msg.RequestID)

		ackCallback := func(success bool) {
			if success {
				m.logger.Printf("[MockConsumer] ACK received for message: request_id=%s", msg.RequestID)
			} else {
				m.logger.Printf("[MockConsumer] NACK received for message: request_id=%s. Re-queueing (mock)", msg.RequestID)
				select {
				case m.messages <- msg:
					m.logger.Printf("[MockConsumer] Message re-queued: request_id=%s", msg.RequestID)
				default:
					m.logger.Printf("[MockConsumer] Warning: Failed to re-queue message (channel full?): request_id=%s", msg.RequestID)
				}
			}
		}
		return msg, ackCallback, nil
	}
}

// Close closes the message channel.
func (m *MockConsumer) Close() error {
	m.logger.Println("[MockConsumer] Closing...")
	close(m.messages)
	return nil
}

var _ Consumer = (*MockConsumer)(nil)
