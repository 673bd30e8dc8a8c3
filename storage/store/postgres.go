package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate-key errors.
const uniqueViolation = "23505"

const insertProposalSQL = `
INSERT INTO proposals (
	id, title, description, summary, category, proposer_address,
	voting_period_seconds, chain_id, status,
	votes_for, votes_against, votes_abstain, views,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// execer is the slice of pgxpool.Pool the store writes through.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	db     execer
	logger *log.Logger
}

// NewPostgresStore creates a connection pool against the given DSN.
func NewPostgresStore(ctx context.Context, dsn string, minConns, maxConns int, logger *log.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	if minConns > 0 {
		poolCfg.MinConns = int32(minConns)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Printf("Postgres store connected (min=%d, max=%d)", minConns, maxConns)
	return &PostgresStore{pool: pool, db: pool, logger: logger}, nil
}

// InsertProposal inserts the proposal metadata row. A duplicate-key error is
// treated as benign success: the record already exists for this identifier and
// a retried save must not surface an error to the caller.
func (s *PostgresStore) InsertProposal(ctx context.Context, rec *ProposalRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("proposal record requires a non-empty identifier")
	}

	_, err := s.db.Exec(ctx, insertProposalSQL,
		rec.ID, rec.Title, rec.Description, rec.Summary, rec.Category, rec.ProposerAddress,
		rec.VotingPeriodSeconds, rec.ChainID, string(rec.Status),
		rec.VotesFor, rec.VotesAgainst, rec.VotesAbstain, rec.Views,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			s.logger.Printf("Proposal %s already persisted, treating duplicate insert as success", rec.ID)
			return nil
		}
		return fmt.Errorf("failed to insert proposal %s: %w", rec.ID, err)
	}

	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.logger.Println("Closing Postgres store...")
	s.pool.Close()
}
