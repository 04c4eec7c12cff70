package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceService issues gapless document numbers. Bill numbers reset daily
// (POS-YYYYMMDD-NNNN); purchase order numbers reset yearly (PO-YYYY-NNNN).
// Numbers are unique by construction — the upsert increments under the row
// lock of the (scope, period) counter, so two concurrent checkouts can never
// draw the same number.
type SequenceService interface {
	// NextBillNumberTx draws the next bill number inside the caller's
	// transaction so a failed checkout rolls the counter back with it.
	NextBillNumberTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error)

	// NextPONumberTx draws the next purchase order number inside the caller's
	// transaction.
	NextPONumberTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
}

// NewSequenceService constructs a SequenceService backed by PostgreSQL.
func NewSequenceService(pool *pgxpool.Pool) SequenceService {
	return &sequenceService{pool: pool}
}

func (s *sequenceService) NextBillNumberTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error) {
	period := at.Format("20060102")
	n, err := nextInSequence(ctx, tx, "bill", period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("POS-%s-%04d", period, n), nil
}

func (s *sequenceService) NextPONumberTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error) {
	period := at.Format("2006")
	n, err := nextInSequence(ctx, tx, "po", period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%s-%04d", period, n), nil
}

// nextInSequence increments the (scope, period) counter under its row lock
// and returns the new value. The counter row is created on first use.
func nextInSequence(ctx context.Context, tx pgx.Tx, scope, period string) (int64, error) {
	var last int64
	err := tx.QueryRow(ctx, `
		INSERT INTO number_sequences (scope, period, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, period)
		DO UPDATE SET last_number = number_sequences.last_number + 1
		RETURNING last_number`,
		scope, period,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("advance %s sequence for %s: %w", scope, period, err)
	}
	return last, nil
}
