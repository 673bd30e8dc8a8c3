package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govpipe/internal/models"
)

var (
	governor = common.HexToAddress("0x1111111111111111111111111111111111111111")
	proposer = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func baseDraft() *models.ProposalDraft {
	return &models.ProposalDraft{
		Title:            "Fund the grants program",
		Summary:          "Quarterly grants budget",
		ShortDescription: "Allocate funds for Q3 grants",
		FullDescription:  "Detailed breakdown of the grants program spending.",
		Category:         models.CategoryTreasury,
		VotingPeriod:     models.VotingPeriod1Week,
	}
}

func TestBuildSubmissionRequestNoActions(t *testing.T) {
	req, err := BuildSubmissionRequest(baseDraft(), governor, proposer)
	require.NoError(t, err)

	require.Len(t, req.Targets, 1)
	require.Len(t, req.Values, 1)
	require.Len(t, req.CallData, 1)
	assert.Equal(t, governor, req.Targets[0])
	assert.Zero(t, req.Values[0].Sign())
	assert.Empty(t, req.CallData[0])
}

func TestBuildSubmissionRequestPreservesActionOrder(t *testing.T) {
	draft := baseDraft()
	draft.TreasuryActions = []models.TreasuryAction{
		{Target: "0x3333333333333333333333333333333333333333", Value: "1000", CallData: "0x"},
		{Target: "0x4444444444444444444444444444444444444444", Value: "2000", CallData: "0xdeadbeef"},
		{Target: "0x5555555555555555555555555555555555555555", Value: "", CallData: ""},
	}

	req, err := BuildSubmissionRequest(draft, governor, proposer)
	require.NoError(t, err)

	require.Len(t, req.Targets, 3)
	require.Len(t, req.Values, 3)
	require.Len(t, req.CallData, 3)
	assert.Equal(t, common.HexToAddress(draft.TreasuryActions[1].Target), req.Targets[1])
	assert.Equal(t, "1000", req.Values[0].String())
	assert.Equal(t, "2000", req.Values[1].String())
	assert.Zero(t, req.Values[2].Sign())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, req.CallData[1])
}

func TestBuildSubmissionRequestComposedDescription(t *testing.T) {
	draft := baseDraft()
	req, err := BuildSubmissionRequest(draft, governor, proposer)
	require.NoError(t, err)

	assert.Contains(t, req.Description, "# "+draft.Title)
	assert.Contains(t, req.Description, draft.Summary)
	assert.Contains(t, req.Description, draft.ShortDescription)
	assert.Contains(t, req.Description, draft.FullDescription)
}

func TestBuildSubmissionRequestRejectsBadInput(t *testing.T) {
	draft := baseDraft()
	draft.TreasuryActions = []models.TreasuryAction{{Target: "not-an-address", Value: "0"}}
	_, err := BuildSubmissionRequest(draft, governor, proposer)
	assert.Error(t, err)

	draft.TreasuryActions = []models.TreasuryAction{
		{Target: "0x3333333333333333333333333333333333333333", Value: "-5"},
	}
	_, err = BuildSubmissionRequest(draft, governor, proposer)
	assert.Error(t, err)

	draft.TreasuryActions = []models.TreasuryAction{
		{Target: "0x3333333333333333333333333333333333333333", Value: "0", CallData: "deadbeef"},
	}
	_, err = BuildSubmissionRequest(draft, governor, proposer)
	assert.Error(t, err)
}
