package blockchain

import (
	"fmt"
	"log"
	"path/filepath"

	"govpipe/blockchain/client/ethereum"
	"govpipe/config"
)

// BlockchainType represents the type of chain client
type BlockchainType string

const (
	Ethereum BlockchainType = "ethereum"
	// Future client types can be added here (alternative EVM providers, etc.)
)

// LoadChainSpecificConfig loads chain-specific configuration based on blockchain type
func LoadChainSpecificConfig(blockchainType string, configDir string) (any, error) {
	switch BlockchainType(blockchainType) {
	case Ethereum, "":
		// Default to Ethereum if not specified
		ethereumConfigPath := filepath.Join(configDir, "clients", "ethereum.yml")
		return ethereum.LoadEthereumConfig(ethereumConfigPath)
	default:
		return nil, fmt.Errorf("unsupported blockchain type: %s", blockchainType)
	}
}

// NewChainClient creates a chain client based on the configuration
func NewChainClient(cfg *config.BlockchainConfig, logger *log.Logger) (ChainClient, Provider, error) {
	switch BlockchainType(cfg.BlockchainType) {
	case Ethereum, "":
		client, err := ethereum.NewEthereumClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, client.RawProvider(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported blockchain type: %s", cfg.BlockchainType)
	}
}

// NewChainClientFromFile creates a chain client from configuration files
func NewChainClientFromFile(configPath string, logger *log.Logger) (ChainClient, Provider, error) {
	// Load common configuration
	cfg, err := config.LoadBlockchainConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load common config from file '%s': %w", configPath, err)
	}

	// Load chain-specific configuration
	configDir := filepath.Dir(configPath)
	chainSpecificCfg, err := LoadChainSpecificConfig(cfg.BlockchainType, configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load chain-specific config: %w", err)
	}

	cfg.ChainSpecific = chainSpecificCfg
	return NewChainClient(cfg, logger)
}
