package worker

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govpipe/config"
	"govpipe/governance/pipeline"
	"govpipe/internal/models"
)

type scriptedConsumer struct {
	mu       sync.Mutex
	messages []*models.ProposalMessage
	acks     []bool
}

func (c *scriptedConsumer) Consume(ctx context.Context) (*models.ProposalMessage, func(success bool), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return msg, func(success bool) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.acks = append(c.acks, success)
	}, nil
}

func (c *scriptedConsumer) Close() error { return nil }

type fakeRunner struct {
	mu      sync.Mutex
	outcome pipeline.Outcome
	runs    int
}

func (r *fakeRunner) Run(ctx context.Context, requestID string, draft *models.ProposalDraft, proposer string) pipeline.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return r.outcome
}

type capturingOutcomes struct {
	mu     sync.Mutex
	events []*models.OutcomeEvent
}

func (p *capturingOutcomes) Publish(ctx context.Context, event *models.OutcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingOutcomes) Close() error { return nil }

func testMessage() *models.ProposalMessage {
	return &models.ProposalMessage{
		RequestID: "req-w1",
		Draft: models.ProposalDraft{
			Title:        "t",
			Summary:      "s",
			Category:     models.CategoryGovernance,
			VotingPeriod: models.VotingPeriod1Week,
		},
		ProposerAddress: "0x2222222222222222222222222222222222222222",
	}
}

func runWorkerOnce(t *testing.T, cons *scriptedConsumer, runner *fakeRunner, outcomes *capturingOutcomes) {
	t.Helper()
	cfg := config.WorkerConfig{Concurrency: 1, ConsumerRetryDelay: "10ms"}
	w := New(cfg, log.New(io.Discard, "", 0), cons, runner, outcomes, 31337)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		outcomes.mu.Lock()
		defer outcomes.mu.Unlock()
		return len(outcomes.events) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWorkerPublishesSuccessOutcome(t *testing.T) {
	txHash := common.HexToHash("0xbeef")
	cons := &scriptedConsumer{messages: []*models.ProposalMessage{testMessage()}}
	runner := &fakeRunner{outcome: pipeline.Outcome{
		Status:     models.OutcomeSucceeded,
		ProposalID: "42",
		TxHash:     txHash,
	}}
	outcomes := &capturingOutcomes{}

	runWorkerOnce(t, cons, runner, outcomes)

	assert.Equal(t, 1, runner.runs)
	require.Len(t, outcomes.events, 1)
	event := outcomes.events[0]
	assert.Equal(t, "req-w1", event.RequestID)
	assert.Equal(t, models.OutcomeSucceeded, event.Status)
	assert.Equal(t, "42", event.ProposalID)
	assert.Equal(t, txHash.Hex(), event.TxHash)
	assert.Equal(t, uint64(31337), event.ChainID)
	assert.Empty(t, event.Error)

	assert.Equal(t, []bool{true}, cons.acks)
}

func TestWorkerAcksFailedRunsWithoutRedelivery(t *testing.T) {
	cons := &scriptedConsumer{messages: []*models.ProposalMessage{testMessage()}}
	runner := &fakeRunner{outcome: pipeline.Outcome{
		Status: models.OutcomeFailed,
		Err:    errors.New("both paths exhausted"),
	}}
	outcomes := &capturingOutcomes{}

	runWorkerOnce(t, cons, runner, outcomes)

	require.Len(t, outcomes.events, 1)
	assert.Equal(t, models.OutcomeFailed, outcomes.events[0].Status)
	assert.Equal(t, "both paths exhausted", outcomes.events[0].Error)
	assert.Empty(t, outcomes.events[0].TxHash)

	// A failed run is still acked: redelivery would re-broadcast a transaction.
	assert.Equal(t, []bool{true}, cons.acks)
}

func TestParseTimeoutsFallsBackOnGarbage(t *testing.T) {
	cfg := config.WorkerConfig{
		SubmissionTimeout:  "nope",
		ReceiptTimeout:     "90s",
		PersistenceTimeout: "",
	}
	timeouts := ParseTimeouts(cfg, log.New(io.Discard, "", 0))
	assert.Equal(t, 3*time.Minute, timeouts.Submission)
	assert.Equal(t, 90*time.Second, timeouts.Receipt)
	assert.Equal(t, 15*time.Second, timeouts.Persistence)
}
