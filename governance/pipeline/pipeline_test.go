package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govpipe/blockchain/types"
	"govpipe/governance/executor"
	"govpipe/internal/models"
	"govpipe/storage/store"
)

var (
	governorAddr = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	proposerHex  = "0x2222222222222222222222222222222222222222"
	txHash       = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")
)

type fakeSubmitter struct {
	hash common.Hash
	err  error
}

func (f *fakeSubmitter) Submit(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error) {
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return f.hash, nil
}

type fakeChain struct {
	receipt    *ethtypes.Receipt
	receiptErr error
}

func (f *fakeChain) CreateProposal(ctx context.Context, req *types.SubmissionRequest) (common.Hash, error) {
	return common.Hash{}, errors.New("pipeline must go through the submitter")
}

func (f *fakeChain) WaitForReceipt(ctx context.Context, h common.Hash) (*ethtypes.Receipt, error) {
	return f.receipt, f.receiptErr
}

func (f *fakeChain) GovernorAddress() common.Address { return governorAddr }
func (f *fakeChain) SignerAddress() common.Address   { return common.Address{} }
func (f *fakeChain) ChainID() uint64                 { return 11155111 }
func (f *fakeChain) Close() error                    { return nil }
func (f *fakeChain) Config() any                     { return nil }

type fakeStore struct {
	inserted []*store.ProposalRecord
	err      error
}

func (f *fakeStore) InsertProposal(ctx context.Context, rec *store.ProposalRecord) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeStore) Close() {}

func draft() *models.ProposalDraft {
	return &models.ProposalDraft{
		Title:            "Upgrade the protocol",
		Summary:          "Bump governor version",
		ShortDescription: "Version bump",
		FullDescription:  "Full rationale for the upgrade.",
		Category:         models.CategoryProtocol,
		VotingPeriod:     models.VotingPeriod2Weeks,
	}
}

func receiptWithProposalID(id int64) *ethtypes.Receipt {
	return &ethtypes.Receipt{Logs: []*ethtypes.Log{
		{
			Address: governorAddr,
			Topics:  []common.Hash{common.HexToHash("0x01"), common.BigToHash(big.NewInt(id))},
		},
	}}
}

func newPipeline(sub Submitter, chain *fakeChain, st store.Store) *Pipeline {
	return New(sub, chain, st, Timeouts{}, log.New(io.Discard, "", 0))
}

func TestRunSucceeds(t *testing.T) {
	st := &fakeStore{}
	p := newPipeline(&fakeSubmitter{hash: txHash}, &fakeChain{receipt: receiptWithProposalID(42)}, st)

	out := p.Run(context.Background(), "req-1", draft(), proposerHex)

	require.NoError(t, out.Err)
	assert.Equal(t, models.OutcomeSucceeded, out.Status)
	assert.Equal(t, "42", out.ProposalID)
	assert.Equal(t, txHash, out.TxHash)

	require.Len(t, st.inserted, 1)
	rec := st.inserted[0]
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, store.StatusPending, rec.Status)
	assert.Equal(t, uint64(11155111), rec.ChainID)
	assert.Equal(t, int64(14*24*3600), rec.VotingPeriodSeconds)
	assert.Equal(t, proposerHex, rec.ProposerAddress)
	assert.Zero(t, rec.VotesFor)
	assert.Zero(t, rec.Views)
}

func TestRunSubmissionFailure(t *testing.T) {
	subErr := &executor.SubmissionError{Primary: errors.New("p"), Fallback: errors.New("f")}
	st := &fakeStore{}
	p := newPipeline(&fakeSubmitter{err: subErr}, &fakeChain{}, st)

	out := p.Run(context.Background(), "req-2", draft(), proposerHex)

	assert.Equal(t, models.OutcomeFailed, out.Status)
	var se *executor.SubmissionError
	require.ErrorAs(t, out.Err, &se)
	assert.Empty(t, st.inserted)
}

func TestRunReceiptTimeout(t *testing.T) {
	p := newPipeline(&fakeSubmitter{hash: txHash}, &fakeChain{receiptErr: context.DeadlineExceeded}, &fakeStore{})

	out := p.Run(context.Background(), "req-3", draft(), proposerHex)

	assert.Equal(t, models.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrReceiptTimeout)
	assert.Equal(t, txHash, out.TxHash)
}

func TestRunNoQualifyingLogIsSoftSuccess(t *testing.T) {
	// Receipt carries only a bare event signature: identifier unrecoverable.
	receipt := &ethtypes.Receipt{Logs: []*ethtypes.Log{
		{Address: governorAddr, Topics: []common.Hash{common.HexToHash("0x01")}},
	}}
	st := &fakeStore{}
	p := newPipeline(&fakeSubmitter{hash: txHash}, &fakeChain{receipt: receipt}, st)

	out := p.Run(context.Background(), "req-4", draft(), proposerHex)

	require.NoError(t, out.Err)
	assert.Equal(t, models.OutcomeSucceededNoID, out.Status)
	assert.Equal(t, txHash, out.TxHash)
	assert.Empty(t, st.inserted, "persistence must be skipped when no identifier resolves")
}

func TestRunPersistenceFailureIsPartial(t *testing.T) {
	st := &fakeStore{err: errors.New("store unavailable")}
	p := newPipeline(&fakeSubmitter{hash: txHash}, &fakeChain{receipt: receiptWithProposalID(7)}, st)

	out := p.Run(context.Background(), "req-5", draft(), proposerHex)

	assert.Equal(t, models.OutcomePartialFailure, out.Status)
	assert.Equal(t, "7", out.ProposalID)
	assert.Equal(t, txHash, out.TxHash)
	require.Error(t, out.Err)
}
