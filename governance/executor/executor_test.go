package executor

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govpipe/blockchain/types"
)

var testHash = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000ff")

type fakeChainClient struct {
	results []error // one entry per CreateProposal call
	calls   int
}

func (f *fakeChainClient) CreateProposal(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error) {
	err := f.results[f.calls]
	f.calls++
	if err != nil {
		return common.Hash{}, err
	}
	return testHash, nil
}

func (f *fakeChainClient) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChainClient) GovernorAddress() common.Address {
	return common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
}

func (f *fakeChainClient) SignerAddress() common.Address {
	return common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
}

func (f *fakeChainClient) ChainID() uint64 { return 31337 }
func (f *fakeChainClient) Close() error    { return nil }
func (f *fakeChainClient) Config() any     { return nil }

type fakeProvider struct {
	methods  []string
	nudgeErr error
}

func (f *fakeProvider) Request(ctx context.Context, method string, params ...any) (any, error) {
	f.methods = append(f.methods, method)
	if method == "eth_sendTransaction" {
		return nil, f.nudgeErr
	}
	return "0x1", nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testRequest() *types.SubmissionRequest {
	return &types.SubmissionRequest{
		Targets:  []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111")},
		Values:   nil,
		CallData: nil,
	}
}

func TestSubmitPrimarySucceeds(t *testing.T) {
	client := &fakeChainClient{results: []error{nil}}
	provider := &fakeProvider{}

	hash, err := New(client, provider, discardLogger()).Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, testHash, hash)
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, provider.methods, "wake sequence must not run when the primary path succeeds")
}

func TestSubmitFallbackSucceedsAfterWake(t *testing.T) {
	client := &fakeChainClient{results: []error{errors.New("wallet did not respond"), nil}}
	provider := &fakeProvider{nudgeErr: errors.New("user rejected")}

	hash, err := New(client, provider, discardLogger()).Submit(context.Background(), testRequest())
	require.NoError(t, err, "a rejected wake nudge must not fail the pipeline")
	assert.Equal(t, testHash, hash)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, []string{"eth_requestAccounts", "eth_chainId", "eth_sendTransaction"}, provider.methods)
}

func TestSubmitBothPathsFail(t *testing.T) {
	primaryErr := errors.New("primary boom")
	fallbackErr := errors.New("fallback boom")
	client := &fakeChainClient{results: []error{primaryErr, fallbackErr}}
	provider := &fakeProvider{}

	_, err := New(client, provider, discardLogger()).Submit(context.Background(), testRequest())
	require.Error(t, err)

	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, se.Primary, primaryErr)
	assert.ErrorIs(t, se.Fallback, fallbackErr)
	assert.ErrorIs(t, err, fallbackErr)

	// One wake sequence exactly, between the two attempts. The terminal
	// fallback failure must not trigger another round of provider calls.
	assert.Equal(t, []string{"eth_requestAccounts", "eth_chainId", "eth_sendTransaction"}, provider.methods)
}

func TestSubmitWithoutProvider(t *testing.T) {
	client := &fakeChainClient{results: []error{errors.New("first"), nil}}

	hash, err := New(client, nil, discardLogger()).Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, testHash, hash)
}
