package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	blockchain "govpipe/blockchain/client"
	"govpipe/config"
	"govpipe/governance/executor"
	"govpipe/governance/pipeline"
	"govpipe/internal/messaging/consumer"
	"govpipe/internal/messaging/producer"
	worker "govpipe/processing"
	"govpipe/storage/store"
)

const engineConfigPath = "./config/engine.defaults.yml"

func main() {
	logger := log.New(os.Stdout, "[ENGINE] ", log.LstdFlags|log.Lshortfile)
	logger.Println("Starting Submission Engine...")

	// 1. Load Engine Config
	engineCfg, err := config.LoadEngineConfig(engineConfigPath)
	if err != nil {
		logger.Fatalf("FATAL: Failed to load engine configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Dependencies
	logger.Println("Initializing database connection...")
	dbStore, err := store.NewPostgresStore(ctx, engineCfg.Database.DSN, engineCfg.Database.MinConnections, engineCfg.Database.MaxConnections, logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize database store: %v", err)
	}
	defer dbStore.Close()

	logger.Println("Initializing chain client using configuration files...")
	chainClient, provider, err := blockchain.NewChainClientFromFile(engineCfg.BlockchainClientConfigPath, logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize chain client: %v", err)
	}
	defer chainClient.Close()

	logger.Println("Initializing Kafka outcome producer...")
	outcomeProducer, err := producer.NewKafkaOutcomeProducer(engineCfg.OutcomeProducer, logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize outcome producer: %v", err)
	}
	defer outcomeProducer.Close()

	// 3. Initialize Multiple Consumers
	var mqConsumers []consumer.Consumer
	if len(engineCfg.KafkaConsumer.Brokers) > 0 && engineCfg.KafkaConsumer.Brokers[0] != "mock://local" {
		logger.Printf("Initializing %d Kafka message queue consumers...", engineCfg.KafkaConsumer.Count)
		for i := 0; i < engineCfg.KafkaConsumer.Count; i++ {
			kafkaConsumer, err := consumer.NewKafkaConsumer(engineCfg.KafkaConsumer, logger)
			if err != nil {
				logger.Fatalf("FATAL: Failed to initialize Kafka consumer %d: %v", i, err)
			}
			mqConsumers = append(mqConsumers, kafkaConsumer)
		}
	} else {
		logger.Println("Initializing Mock message queue consumer...")
		mqConsumers = append(mqConsumers, consumer.NewMockConsumer(logger))
	}

	// Ensure all consumers are closed on exit
	defer func() {
		for _, c := range mqConsumers {
			c.Close()
		}
	}()

	// 4. Build the resolution pipeline shared by all workers
	submissionExecutor := executor.New(chainClient, provider, logger)
	timeouts := worker.ParseTimeouts(engineCfg.Worker, logger)
	resolutionPipeline := pipeline.New(submissionExecutor, chainClient, dbStore, timeouts, logger)

	// 5. Create and Start Multiple Workers
	var wg sync.WaitGroup
	for i, mqConsumer := range mqConsumers {
		workerInstance := worker.New(engineCfg.Worker, logger, mqConsumer, resolutionPipeline, outcomeProducer, chainClient.ChainID())

		wg.Add(1)
		go func(id int, w *worker.Worker) {
			defer wg.Done()
			logger.Printf("Starting worker pool %d...", id)
			w.Run(ctx)
		}(i, workerInstance)
	}

	// 6. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Printf("Received signal %v, shutting down...", sig)

	cancel()
	wg.Wait()
	logger.Println("Submission Engine stopped.")
}
