package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadhlanhapp/manpower-backend/models"
)

// ErrSessionNotFound is returned when no payment session matches
var ErrSessionNotFound = errors.New("payment session not found")

const sessionColumns = `id, order_tracking_id, member_id, group_id, amount, phone_number, description,
	status, attempts, contribution_id, last_error, redirect_url, created_at, updated_at`

// PaymentSessionRepository handles payment session persistence
type PaymentSessionRepository struct {
	db *sql.DB
}

// NewPaymentSessionRepository creates a new payment session repository
func NewPaymentSessionRepository(db *sql.DB) *PaymentSessionRepository {
	return &PaymentSessionRepository{db: db}
}

// CreateSession inserts a freshly initiated session
func (r *PaymentSessionRepository) CreateSession(ctx context.Context, s *models.PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (id, order_tracking_id, member_id, group_id, amount, phone_number,
			description, status, attempts, redirect_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.OrderTrackingID, s.MemberID, s.GroupID, s.Amount, s.PhoneNumber,
		s.Description, s.Status, s.Attempts, s.RedirectURL, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment session: %w", err)
	}
	return nil
}

// GetByTrackingID retrieves a session by the gateway's order tracking id
func (r *PaymentSessionRepository) GetByTrackingID(ctx context.Context, orderTrackingID string) (*models.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE order_tracking_id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, orderTrackingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get payment session: %w", err)
	}
	return s, nil
}

// ListByMember returns a member's sessions, newest first
func (r *PaymentSessionRepository) ListByMember(ctx context.Context, memberID string) ([]models.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE member_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PaymentSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// RecordAttempt stores the attempt counter of a session that is still open
func (r *PaymentSessionRepository) RecordAttempt(ctx context.Context, id string, attempts int) error {
	query := `
		UPDATE payment_sessions SET attempts = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`
	if _, err := r.db.ExecContext(ctx, query, id, attempts, models.PaymentInitiated); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Transition moves an INITIATED session to a terminal status. It reports
// false when the session had already left INITIATED, so callers can act on a
// terminal transition at most once.
func (r *PaymentSessionRepository) Transition(ctx context.Context, id string, to models.PaymentStatus, attempts int, lastError string) (bool, error) {
	query := `
		UPDATE payment_sessions SET status = $2, attempts = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, id, to, attempts, lastError, models.PaymentInitiated)
	if err != nil {
		return false, fmt.Errorf("failed to transition payment session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// SetContributionID links the contribution created for a completed session
func (r *PaymentSessionRepository) SetContributionID(ctx context.Context, id, contributionID string) error {
	query := `UPDATE payment_sessions SET contribution_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, contributionID); err != nil {
		return fmt.Errorf("failed to set contribution id: %w", err)
	}
	return nil
}

// ExpireStale times out sessions still INITIATED that were created before cutoff
func (r *PaymentSessionRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE payment_sessions SET status = $1, last_error = $2, updated_at = NOW()
		WHERE status = $3 AND created_at < $4
	`
	res, err := r.db.ExecContext(ctx, query,
		models.PaymentTimedOut, "no settlement observed before the poll window closed",
		models.PaymentInitiated, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale sessions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.PaymentSession, error) {
	var s models.PaymentSession
	err := row.Scan(
		&s.ID, &s.OrderTrackingID, &s.MemberID, &s.GroupID, &s.Amount, &s.PhoneNumber, &s.Description,
		&s.Status, &s.Attempts, &s.ContributionID, &s.LastError, &s.RedirectURL, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
