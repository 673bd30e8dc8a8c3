package ethereum

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// EthereumConfig stores Ethereum-specific configuration
type EthereumConfig struct {
	// --- RPC Connection Required ---
	RPCURL  string `yaml:"rpc_url"`
	ChainID uint64 `yaml:"chain_id"`

	// --- Signing ---
	// Hex-encoded private key of the proposer account. In production this is
	// injected through the environment variable named by PrivateKeyEnv.
	PrivateKeyHex string `yaml:"private_key_hex"`
	PrivateKeyEnv string `yaml:"private_key_env"`

	// --- Governor Contract ---
	GovernorAddress string `yaml:"governor_address"`

	// --- Fee / Gas ---
	GasLimit    uint64 `yaml:"gas_limit"`     // 0 lets the node estimate
	GasPriceWei int64  `yaml:"gas_price_wei"` // 0 lets the node suggest

	// --- Receipt Polling ---
	ReceiptPollInterval string `yaml:"receipt_poll_interval"` // e.g. "2s"
}

// PrivateKey resolves the signing key, preferring the environment variable
// over the inline config value.
func (c *EthereumConfig) PrivateKey() (string, error) {
	if c.PrivateKeyEnv != "" {
		if v := os.Getenv(c.PrivateKeyEnv); v != "" {
			return v, nil
		}
	}
	if c.PrivateKeyHex != "" {
		return c.PrivateKeyHex, nil
	}
	return "", fmt.Errorf("no signing key configured: set private_key_env or private_key_hex")
}

// LoadEthereumConfig loads Ethereum configuration from the specified YAML file path
func LoadEthereumConfig(path string) (*EthereumConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path of Ethereum config file: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Ethereum config file '%s': %w", absPath, err)
	}

	var cfg EthereumConfig
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ethereum YAML config file: %w", err)
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc_url is required in Ethereum config")
	}
	if cfg.GovernorAddress == "" {
		return nil, fmt.Errorf("governor_address is required in Ethereum config")
	}

	return &cfg, nil
}
