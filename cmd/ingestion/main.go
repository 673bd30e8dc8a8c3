package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apiconfig "govpipe/config"
	core "govpipe/ingestion/service/core"
	httphandler "govpipe/ingestion/service/http"
	"govpipe/internal/messaging/producer"
)

// API Gateway configuration file path
const apiConfigPath = "./config/ingestion.defaults.yml"

func main() {
	logger := log.New(os.Stdout, "[API-GW] ", log.LstdFlags|log.Lshortfile)
	logger.Println("Starting API Gateway (Proposal Ingestion Service)...")

	// 1. Load API Gateway configuration
	cfg, err := apiconfig.LoadApiGatewayConfig(apiConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load API Gateway configuration: %v", err)
	}

	// 2. Initialize dependencies (only need the Kafka producer)
	logger.Println("Initializing Kafka producer...")
	kafkaProducer, err := producer.NewKafkaSubmissionProducer(cfg.KafkaProducer, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka producer: %v", err)
	}
	defer kafkaProducer.Close()

	// 3. Create core Service and Handlers
	coreService := core.NewService(kafkaProducer, logger)
	defer coreService.Close()
	proposalHandler := httphandler.NewProposalHandler(coreService, logger)

	var wg sync.WaitGroup

	// 4. HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/proposals", proposalHandler.SubmitProposal)
	mux.HandleFunc(cfg.Monitoring.HealthCheckPath, proposalHandler.HealthCheck)
	if cfg.Monitoring.EnableMetrics {
		mux.HandleFunc(cfg.Monitoring.MetricsPath, proposalHandler.Metrics)
	}

	// Use HTTP server configuration with defaults
	readTimeout := cfg.HttpServer.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}

	writeTimeout := cfg.HttpServer.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	idleTimeout := cfg.HttpServer.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	maxHeaderBytes := cfg.HttpServer.MaxHeaderBytes
	if maxHeaderBytes == 0 {
		maxHeaderBytes = 1 << 20 // 1 MB
	}

	httpServer := &http.Server{
		Addr:           cfg.HttpListenAddr,
		Handler:        mux,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Printf("HTTP server listening on %s", cfg.HttpListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server startup failed: %v", err)
		}
		logger.Println("HTTP server stopped listening.")
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Printf("Received shutdown signal: %s, starting graceful shutdown of API Gateway...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	logger.Println("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server shutdown failed: %v", err)
	} else {
		logger.Println("HTTP server shutdown.")
	}

	wg.Wait()
	logger.Println("All servers stopped. API Gateway shutdown.")
}
