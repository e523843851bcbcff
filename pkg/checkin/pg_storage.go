package checkin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/safecheck/pkg/pg"
)

// PGStore implements Store on PostgreSQL via pgx. The status column carries
// the compare-and-swap: every transition is an UPDATE guarded by the
// expected status, so two racing transitions can never both apply.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Store over an established pgx pool (see pkg/pg).
func NewPGStore(pool *pgxpool.Pool) (*PGStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool cannot be nil")
	}
	return &PGStore{pool: pool}, nil
}

const checkInColumns = `id, sender_id, recipient_id, sender_name, recipient_name, question,
	positive_token, negative_token, status, response, response_kind, status_expires_at,
	created_at, responded_at`

// Create implements Store.
func (ps *PGStore) Create(ctx context.Context, c CheckIn) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO check_ins (`+checkInColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.SenderID, c.RecipientID, c.SenderName, c.RecipientName, c.Question,
		c.PositiveToken, c.NegativeToken, c.Status, nullable(c.Response), nullable(string(c.ResponseKind)),
		c.StatusExpiresAt, c.CreatedAt, c.RespondedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("check-in with ID %s already exists", c.ID)
		}
		return fmt.Errorf("insert check-in %s: %w", c.ID, err)
	}

	return nil
}

// Get implements Store.
func (ps *PGStore) Get(ctx context.Context, id uuid.UUID) (*CheckIn, error) {
	row := ps.pool.QueryRow(ctx, `
		SELECT `+checkInColumns+`
		FROM check_ins WHERE id = $1`, id)

	c, err := scanCheckIn(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select check-in %s: %w", id, err)
	}

	return c, nil
}

// UpdateStatus implements Store. The WHERE clause enforces the
// compare-and-swap; zero affected rows means either a lost race or an
// unknown id, disambiguated with a follow-up read.
func (ps *PGStore) UpdateStatus(ctx context.Context, c CheckIn, expected Status) error {
	tag, err := ps.pool.Exec(ctx, `
		UPDATE check_ins
		SET status = $1, response = $2, response_kind = $3, status_expires_at = $4, responded_at = $5
		WHERE id = $6 AND status = $7`,
		c.Status, nullable(c.Response), nullable(string(c.ResponseKind)), c.StatusExpiresAt, c.RespondedAt,
		c.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("update check-in %s: %w", c.ID, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := ps.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM check_ins WHERE id = $1)`, c.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check existence of check-in %s: %w", c.ID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}

	return nil
}

// ListUnresolved implements Store.
func (ps *PGStore) ListUnresolved(ctx context.Context) ([]CheckIn, error) {
	rows, err := ps.pool.Query(ctx, `
		SELECT `+checkInColumns+`
		FROM check_ins
		WHERE status IN ($1, $2)
		ORDER BY created_at`, StatusPending, StatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("list unresolved check-ins: %w", err)
	}
	defer rows.Close()

	var out []CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check-in row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-in rows: %w", err)
	}

	return out, nil
}

func scanCheckIn(row pgx.Row) (*CheckIn, error) {
	var (
		c            CheckIn
		response     *string
		responseKind *string
	)
	if err := row.Scan(
		&c.ID, &c.SenderID, &c.RecipientID, &c.SenderName, &c.RecipientName, &c.Question,
		&c.PositiveToken, &c.NegativeToken, &c.Status, &response, &responseKind, &c.StatusExpiresAt,
		&c.CreatedAt, &c.RespondedAt,
	); err != nil {
		return nil, err
	}

	if response != nil {
		c.Response = *response
	}
	if responseKind != nil {
		c.ResponseKind = ResponseKind(*responseKind)
	}

	return &c, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
