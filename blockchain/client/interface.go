package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"govpipe/blockchain/types"
)

// ChainClient defines the generic interface for governor contract interactions.
// The interface is chain-agnostic so alternative EVM client implementations can
// be swapped in without touching the pipeline.
type ChainClient interface {
	// CreateProposal invokes the governor's propose operation and returns the
	// transaction hash once the write is accepted by the signer/node.
	CreateProposal(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error)

	// WaitForReceipt blocks until a receipt for the given transaction hash is
	// retrievable or the context expires.
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)

	// GovernorAddress returns the governor contract address this client talks to.
	GovernorAddress() common.Address

	// SignerAddress returns the account the client signs and sends from.
	SignerAddress() common.Address

	// ChainID returns the identifier of the chain the client is connected to.
	ChainID() uint64

	// Close closes the chain client and releases resources.
	Close() error

	// Config returns the configuration associated with the client.
	Config() any // Return any to accommodate different config types
}

// Provider is the raw JSON-RPC surface of the wallet/node, used only by the
// submission fallback path to nudge an unresponsive signer back to life.
type Provider interface {
	// Request performs a raw RPC request (eth_requestAccounts, eth_chainId,
	// eth_sendTransaction, ...) and returns the raw result.
	Request(ctx context.Context, method string, params ...any) (any, error)
}
