package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"govpipe/config"
	"govpipe/governance/pipeline"
	"govpipe/internal/messaging/consumer"
	"govpipe/internal/messaging/producer"
	"govpipe/internal/models"
)

// outcomePublishTimeout bounds the outcome event publish after a run.
const outcomePublishTimeout = 10 * time.Second

// PipelineRunner runs one resolution pipeline invocation.
type PipelineRunner interface {
	Run(ctx context.Context, requestID string, draft *models.ProposalDraft, proposerAddress string) pipeline.Outcome
}

// Worker consumes proposal messages and runs the resolution pipeline
type Worker struct {
	workerConfig       config.WorkerConfig
	consumerRetryDelay time.Duration // Parsed from workerConfig.ConsumerRetryDelay

	logger   *log.Logger
	consumer consumer.Consumer
	pipeline PipelineRunner
	outcomes producer.OutcomeProducer
	chainID  uint64
}

// New creates a new Worker instance
func New(cfg config.WorkerConfig, logger *log.Logger, c consumer.Consumer, p PipelineRunner, outcomes producer.OutcomeProducer, chainID uint64) *Worker {
	consumerRetryDelay, err := time.ParseDuration(cfg.ConsumerRetryDelay)
	if err != nil {
		logger.Printf("Warning: Invalid consumer_retry_delay '%s', using default 5s", cfg.ConsumerRetryDelay)
		consumerRetryDelay = 5 * time.Second
	}

	return &Worker{
		workerConfig:       cfg,
		consumerRetryDelay: consumerRetryDelay,
		logger:             logger,
		consumer:           c,
		pipeline:           p,
		outcomes:           outcomes,
		chainID:            chainID,
	}
}

// ParseTimeouts builds the pipeline stage bounds from the worker configuration
func ParseTimeouts(cfg config.WorkerConfig, logger *log.Logger) pipeline.Timeouts {
	parse := func(name, value, fallback string) time.Duration {
		d, err := time.ParseDuration(value)
		if err != nil {
			logger.Printf("Warning: Invalid %s '%s', using default %s", name, value, fallback)
			d, _ = time.ParseDuration(fallback)
		}
		return d
	}

	return pipeline.Timeouts{
		Submission:  parse("submission_timeout", cfg.SubmissionTimeout, "3m"),
		Receipt:     parse("receipt_timeout", cfg.ReceiptTimeout, "5m"),
		Persistence: parse("persistence_timeout", cfg.PersistenceTimeout, "15s"),
	}
}

// Run starts the worker pool
func (w *Worker) Run(ctx context.Context) {
	w.logger.Printf("Starting worker pool with concurrency: %d", w.workerConfig.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < w.workerConfig.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.logger.Printf("Worker %d started", workerID)
			w.processMessages(ctx, workerID)
			w.logger.Printf("Worker %d stopped", workerID)
		}(i + 1)
	}
	wg.Wait()
	w.logger.Println("Worker pool stopped.")
}

// processMessages is the main loop for a worker goroutine
func (w *Worker) processMessages(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("Worker %d: Context cancelled, stopping.", workerID)
			return
		default:
		}

		consumeCtx, consumeCancel := context.WithTimeout(ctx, 100*time.Millisecond)
		msg, ack, err := w.consumer.Consume(consumeCtx)
		consumeCancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			// Only log real consumer errors
			w.logger.Printf("Worker %d: Consumer error: %v", workerID, err)
			time.Sleep(w.consumerRetryDelay)
			continue
		}
		if msg == nil {
			continue
		}

		w.handleMessage(ctx, workerID, msg)

		// Always ack, regardless of outcome: a redelivery would re-broadcast
		// an on-chain transaction, and the pipeline promises no automatic
		// retries beyond its single primary->fallback attempt.
		ack(true)
	}
}

// handleMessage runs one pipeline invocation and publishes its outcome
func (w *Worker) handleMessage(ctx context.Context, workerID int, msg *models.ProposalMessage) {
	runStart := time.Now()
	outcome := w.pipeline.Run(ctx, msg.RequestID, &msg.Draft, msg.ProposerAddress)
	runDuration := time.Since(runStart)

	switch outcome.Status {
	case models.OutcomeSucceeded:
		w.logger.Printf("Worker %d: Proposal %s created (request_id=%s, tx=%s, duration=%v)",
			workerID, outcome.ProposalID, msg.RequestID, outcome.TxHash.Hex(), runDuration)
	case models.OutcomeSucceededNoID:
		w.logger.Printf("Worker %d: Proposal submitted but identifier unresolved, manual lookup required (request_id=%s, tx=%s)",
			workerID, msg.RequestID, outcome.TxHash.Hex())
	case models.OutcomePartialFailure:
		w.logger.Printf("Worker %d: Proposal %s on-chain but metadata not saved (request_id=%s): %v",
			workerID, outcome.ProposalID, msg.RequestID, outcome.Err)
	default:
		w.logger.Printf("Worker %d: Submission failed (request_id=%s): %v", workerID, msg.RequestID, outcome.Err)
	}

	event := &models.OutcomeEvent{
		RequestID:   msg.RequestID,
		Status:      outcome.Status,
		ProposalID:  outcome.ProposalID,
		ChainID:     w.chainID,
		CompletedAt: time.Now().UTC(),
	}
	if outcome.TxHash != (common.Hash{}) {
		event.TxHash = outcome.TxHash.Hex()
	}
	if outcome.Err != nil {
		event.Error = outcome.Err.Error()
	}

	publishCtx, cancel := context.WithTimeout(context.Background(), outcomePublishTimeout)
	defer cancel()
	if err := w.outcomes.Publish(publishCtx, event); err != nil {
		w.logger.Printf("CRITICAL: Worker %d failed to publish outcome for request_id=%s: %v", workerID, msg.RequestID, err)
	}
}
