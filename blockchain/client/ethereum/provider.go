package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider exposes the raw JSON-RPC request surface of the node/wallet.
// The submission fallback path uses it for the wake sequence
// (eth_requestAccounts, eth_chainId, self-directed eth_sendTransaction).
type RPCProvider struct {
	rpcClient *rpc.Client
	logger    *log.Logger
}

// NewRPCProvider wraps an established RPC connection.
func NewRPCProvider(rpcClient *rpc.Client, logger *log.Logger) *RPCProvider {
	return &RPCProvider{rpcClient: rpcClient, logger: logger}
}

// Request performs a raw RPC call and returns the undecoded JSON result.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (any, error) {
	var result json.RawMessage
	if err := p.rpcClient.CallContext(ctx, &result, method, params...); err != nil {
		return nil, fmt.Errorf("rpc request '%s' failed: %w", method, err)
	}
	return result, nil
}
