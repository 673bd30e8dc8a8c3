package store

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecer struct {
	err   error
	calls int
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return pgconn.CommandTag("INSERT 0 1"), nil
}

func testStore(db execer) *PostgresStore {
	return &PostgresStore{db: db, logger: log.New(io.Discard, "", 0)}
}

func testRecord() *ProposalRecord {
	now := time.Now().UTC()
	return &ProposalRecord{
		ID:                  "42",
		Title:               "Upgrade the protocol",
		Description:         "# Upgrade the protocol\n\nBump governor version",
		Summary:             "Bump governor version",
		Category:            "protocol",
		ProposerAddress:     "0x2222222222222222222222222222222222222222",
		VotingPeriodSeconds: 7 * 24 * 3600,
		ChainID:             11155111,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestInsertProposalSucceeds(t *testing.T) {
	db := &fakeExecer{}
	err := testStore(db).InsertProposal(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, 1, db.calls)
}

func TestInsertProposalDuplicateKeyIsBenign(t *testing.T) {
	// A retried save for an identifier that already has a row must not
	// surface an error to the caller.
	db := &fakeExecer{err: &pgconn.PgError{Code: uniqueViolation, ConstraintName: "proposals_pkey"}}
	err := testStore(db).InsertProposal(context.Background(), testRecord())
	assert.NoError(t, err)
}

func TestInsertProposalOtherPgErrorSurfaces(t *testing.T) {
	db := &fakeExecer{err: &pgconn.PgError{Code: "23502", ColumnName: "title"}}
	err := testStore(db).InsertProposal(context.Background(), testRecord())
	require.Error(t, err)
	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
}

func TestInsertProposalPlainErrorSurfaces(t *testing.T) {
	cause := errors.New("connection reset")
	err := testStore(&fakeExecer{err: cause}).InsertProposal(context.Background(), testRecord())
	assert.ErrorIs(t, err, cause)
}

func TestInsertProposalRejectsEmptyIdentifier(t *testing.T) {
	db := &fakeExecer{}
	rec := testRecord()
	rec.ID = ""
	err := testStore(db).InsertProposal(context.Background(), rec)
	require.Error(t, err)
	assert.Zero(t, db.calls)
}
