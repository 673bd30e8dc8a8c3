package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"govpipe/blockchain/types"
	"govpipe/config"
)

// governorABI is the minimal governor surface this service needs. Only the
// propose entrypoint is bound; events are read from raw receipt logs.
const governorABI = `[{"type":"function","name":"propose","stateMutability":"nonpayable","inputs":[{"name":"targets","type":"address[]"},{"name":"values","type":"uint256[]"},{"name":"calldatas","type":"bytes[]"},{"name":"description","type":"string"}],"outputs":[{"name":"proposalId","type":"uint256"}]}]`

const defaultReceiptPollInterval = 2 * time.Second

// Client is the wrapper around go-ethereum for governor proposal submission
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	contract  *bind.BoundContract
	provider  *RPCProvider

	governor   common.Address
	chainID    *big.Int
	privateKey *ecdsa.PrivateKey
	signer     common.Address

	pollInterval time.Duration

	cfg    *config.BlockchainConfig
	logger *log.Logger
}

// NewEthereumClient initializes the go-ethereum based client with the combined
// configuration and verifies the node's chain ID against the configured one.
func NewEthereumClient(cfg *config.BlockchainConfig, logger *log.Logger) (*Client, error) {
	ethCfg, ok := cfg.ChainSpecific.(*EthereumConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Ethereum configuration type")
	}

	rpcClient, err := rpc.Dial(ethCfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC '%s': %w", ethCfg.RPCURL, err)
	}
	ethClient := ethclient.NewClient(rpcClient)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	networkChainID, err := ethClient.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	chainID := networkChainID
	if ethCfg.ChainID != 0 {
		if networkChainID.Uint64() != ethCfg.ChainID {
			rpcClient.Close()
			return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", ethCfg.ChainID, networkChainID.Uint64())
		}
		chainID = new(big.Int).SetUint64(ethCfg.ChainID)
	}

	keyHex, err := ethCfg.PrivateKey()
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	signer := crypto.PubkeyToAddress(privateKey.PublicKey)

	if !common.IsHexAddress(ethCfg.GovernorAddress) {
		rpcClient.Close()
		return nil, fmt.Errorf("invalid governor address '%s'", ethCfg.GovernorAddress)
	}
	governor := common.HexToAddress(ethCfg.GovernorAddress)

	parsedABI, err := abi.JSON(strings.NewReader(governorABI))
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to parse governor ABI: %w", err)
	}
	contract := bind.NewBoundContract(governor, parsedABI, ethClient, ethClient, ethClient)

	pollInterval := defaultReceiptPollInterval
	if ethCfg.ReceiptPollInterval != "" {
		d, err := time.ParseDuration(ethCfg.ReceiptPollInterval)
		if err != nil {
			logger.Printf("Warning: Invalid receipt_poll_interval '%s', using default %s", ethCfg.ReceiptPollInterval, defaultReceiptPollInterval)
		} else {
			pollInterval = d
		}
	}

	logger.Printf("Ethereum client initialized: chain %d, governor %s, signer %s", chainID.Uint64(), governor.Hex(), signer.Hex())

	return &Client{
		rpcClient:    rpcClient,
		ethClient:    ethClient,
		contract:     contract,
		provider:     NewRPCProvider(rpcClient, logger),
		governor:     governor,
		chainID:      chainID,
		privateKey:   privateKey,
		signer:       signer,
		pollInterval: pollInterval,
		cfg:          cfg,
		logger:       logger,
	}, nil
}

// CreateProposal invokes the governor's propose operation through the bound
// contract and returns the transaction hash.
func (c *Client) CreateProposal(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error) {
	if len(req.Targets) == 0 || len(req.Targets) != len(req.Values) || len(req.Targets) != len(req.CallData) {
		return common.Hash{}, fmt.Errorf("malformed submission request: targets=%d values=%d calldata=%d",
			len(req.Targets), len(req.Values), len(req.CallData))
	}

	auth, err := c.newTransactOpts(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transaction options: %w", err)
	}

	tx, err := c.contract.Transact(auth, "propose", req.Targets, req.Values, req.CallData, req.Description)
	if err != nil {
		return common.Hash{}, fmt.Errorf("propose invocation failed: %w", err)
	}

	c.logger.Printf("Submitted propose transaction %s (%d actions)", tx.Hash().Hex(), len(req.Targets))
	return tx.Hash(), nil
}

// WaitForReceipt polls for the receipt of the given transaction until it is
// retrievable or the context expires. "not found" responses are expected while
// the transaction is pending and are not treated as errors.
func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("receipt for %s not available: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// newTransactOpts builds signing options for a single propose call, applying
// the configured gas limits and letting the node fill in the rest.
func (c *Client) newTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainID)
	if err != nil {
		return nil, err
	}
	auth.Context = ctx

	ethCfg := c.cfg.ChainSpecific.(*EthereumConfig)
	if ethCfg.GasLimit > 0 {
		auth.GasLimit = ethCfg.GasLimit
	}
	if ethCfg.GasPriceWei > 0 {
		auth.GasPrice = big.NewInt(ethCfg.GasPriceWei)
	}
	return auth, nil
}

// RawProvider returns the raw JSON-RPC provider backing this client.
func (c *Client) RawProvider() *RPCProvider {
	return c.provider
}

// GovernorAddress returns the governor contract address.
func (c *Client) GovernorAddress() common.Address {
	return c.governor
}

// SignerAddress returns the proposer account the client signs from.
func (c *Client) SignerAddress() common.Address {
	return c.signer
}

// ChainID returns the connected chain's identifier.
func (c *Client) ChainID() uint64 {
	return c.chainID.Uint64()
}

// Config returns the configuration associated with the client.
func (c *Client) Config() any {
	if c.cfg == nil || c.cfg.ChainSpecific == nil {
		log.Println("Warning: Accessing client config before initialization.")
		return &EthereumConfig{}
	}
	return c.cfg.ChainSpecific
}

// Close closes the underlying RPC connection
func (c *Client) Close() error {
	c.logger.Println("Closing Ethereum client...")
	c.rpcClient.Close()
	return nil
}
