package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"

	blockchain "govpipe/blockchain/client"
	"govpipe/blockchain/types"
)

// maxSubmissionAttempts is the primary attempt plus one fallback retry.
const maxSubmissionAttempts = 2

// SubmissionError reports that both submission attempts failed. Fallback is
// the terminal cause; Primary is retained for diagnostics.
type SubmissionError struct {
	Primary  error
	Fallback error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed on fallback path: %v (primary path: %v)", e.Fallback, e.Primary)
}

func (e *SubmissionError) Unwrap() error {
	return e.Fallback
}

// Executor submits a proposal through the chain client, with a provider-level
// wake sequence between the primary attempt and the single fallback retry.
type Executor struct {
	client   blockchain.ChainClient
	provider blockchain.Provider
	logger   *log.Logger
}

// New creates an Executor. The provider may be nil, in which case the wake
// sequence is skipped and the fallback is a plain retry.
func New(client blockchain.ChainClient, provider blockchain.Provider, logger *log.Logger) *Executor {
	return &Executor{client: client, provider: provider, logger: logger}
}

// Submit invokes the governor's propose operation and returns the transaction
// hash. On a primary-path failure the provider wake sequence runs and the same
// invocation is retried once; if that also fails the returned error is a
// *SubmissionError carrying both causes.
func (e *Executor) Submit(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error) {
	var txHash common.Hash

	err := retry.Do(
		func() error {
			hash, err := e.client.CreateProposal(ctx, req)
			if err != nil {
				return err
			}
			txHash = hash
			return nil
		},
		retry.Attempts(maxSubmissionAttempts),
		retry.Context(ctx),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(time.Second),
		retry.LastErrorOnly(false),
		retry.OnRetry(func(attempt uint, err error) {
			// The hook also fires after the terminal attempt; the wake sequence
			// must only run when another attempt follows.
			if attempt+1 >= maxSubmissionAttempts {
				return
			}
			e.logger.Printf("Submission attempt %d failed: %v; running provider wake sequence", attempt+1, err)
			e.wakeProvider(ctx)
		}),
	)
	if err != nil {
		return common.Hash{}, asSubmissionError(err)
	}

	return txHash, nil
}

// wakeProvider nudges an unresponsive signer: request account access and the
// chain id, then attempt a self-directed zero-value transaction whose only
// purpose is to surface the signer. Failures here never fail the pipeline.
func (e *Executor) wakeProvider(ctx context.Context) {
	if e.provider == nil {
		return
	}

	if _, err := e.provider.Request(ctx, "eth_requestAccounts"); err != nil {
		e.logger.Printf("Wake: eth_requestAccounts failed: %v", err)
	}
	if _, err := e.provider.Request(ctx, "eth_chainId"); err != nil {
		e.logger.Printf("Wake: eth_chainId failed: %v", err)
	}

	self := e.client.SignerAddress()
	nudge := map[string]any{
		"from":  self.Hex(),
		"to":    self.Hex(),
		"value": "0x0",
	}
	if _, err := e.provider.Request(ctx, "eth_sendTransaction", nudge); err != nil {
		// Rejection of the nudge is expected and swallowed.
		e.logger.Printf("Wake: nudge transaction not sent: %v", err)
	}
}

// asSubmissionError maps the aggregated retry error onto the two-path
// submission taxonomy.
func asSubmissionError(err error) *SubmissionError {
	var attempts retry.Error
	if errors.As(err, &attempts) {
		wrapped := attempts.WrappedErrors()
		se := &SubmissionError{}
		if len(wrapped) > 0 {
			se.Primary = wrapped[0]
			se.Fallback = wrapped[len(wrapped)-1]
		}
		if se.Fallback == nil {
			se.Fallback = err
		}
		return se
	}
	// Context cancellation and other non-aggregated failures count against
	// both paths.
	return &SubmissionError{Primary: err, Fallback: err}
}
