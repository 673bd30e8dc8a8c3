package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"govpipe/config"
	"govpipe/internal/models"
)

// newWriter configures a kafka.Writer from the shared producer config.
func newWriter(cfg config.KafkaProducerConfig, logger *log.Logger) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka producer configuration incomplete: both brokers and topic are required")
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 100 * time.Millisecond
	}

	batchBytes := cfg.BatchBytes
	if batchBytes == 0 {
		batchBytes = 5 * 1024 * 1024 // 5MB
	}

	// Parse required_acks setting
	var requiredAcks kafka.RequiredAcks
	switch cfg.RequiredAcks {
	case "all":
		requiredAcks = kafka.RequireAll
	case "none":
		requiredAcks = kafka.RequireNone
	default:
		requiredAcks = kafka.RequireOne // Default to wait for leader
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},

		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		BatchBytes:   int64(batchBytes),

		// Reliability settings
		RequiredAcks: requiredAcks,
		Async:        cfg.Async,

		// Performance settings
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,

		// Error handling
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Printf("Kafka Writer Error: "+msg, args...)
		}),
	}

	logger.Printf("Kafka producer created, connected to Brokers: %v, Topic: %s", cfg.Brokers, cfg.Topic)
	return w, nil
}

// KafkaSubmissionProducer implements SubmissionProducer
type KafkaSubmissionProducer struct {
	writer *kafka.Writer
	logger *log.Logger
}

// NewKafkaSubmissionProducer creates a producer for the submissions topic
func NewKafkaSubmissionProducer(cfg config.KafkaProducerConfig, logger *log.Logger) (*KafkaSubmissionProducer, error) {
	w, err := newWriter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &KafkaSubmissionProducer{writer: w, logger: logger}, nil
}

// Publish sends a proposal message, keyed by RequestID for partitioning
func (p *KafkaSubmissionProducer) Publish(ctx context.Context, msg *models.ProposalMessage) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize proposal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RequestID),
		Value: msgBytes,
	})
	if err != nil {
		p.logger.Printf("Failed to send Kafka message to buffer (RequestID: %s): %v", msg.RequestID, err)
		return fmt.Errorf("failed to write to Kafka buffer: %w", err)
	}
	return nil
}

// Close closes the producer
func (p *KafkaSubmissionProducer) Close() error {
	p.logger.Println("Closing Kafka submission producer (and flushing buffer)...")
	return p.writer.Close()
}

// KafkaOutcomeProducer implements OutcomeProducer
type KafkaOutcomeProducer struct {
	writer *kafka.Writer
	logger *log.Logger
}

// NewKafkaOutcomeProducer creates a producer for the outcomes topic
func NewKafkaOutcomeProducer(cfg config.KafkaProducerConfig, logger *log.Logger) (*KafkaOutcomeProducer, error) {
	w, err := newWriter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &KafkaOutcomeProducer{writer: w, logger: logger}, nil
}

// Publish sends an outcome event, keyed by RequestID
func (p *KafkaOutcomeProducer) Publish(ctx context.Context, event *models.OutcomeEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize outcome event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RequestID),
		Value: msgBytes,
	})
	if err != nil {
		p.logger.Printf("Failed to send outcome event to buffer (RequestID: %s): %v", event.RequestID, err)
		return fmt.Errorf("failed to write to Kafka buffer: %w", err)
	}
	return nil
}

// Close closes the producer
func (p *KafkaOutcomeProducer) Close() error {
	p.logger.Println("Closing Kafka outcome producer (and flushing buffer)...")
	return p.writer.Close()
}

// Compile-time interface checks
var (
	_ SubmissionProducer = (*KafkaSubmissionProducer)(nil)
	_ OutcomeProducer    = (*KafkaOutcomeProducer)(nil)
)
