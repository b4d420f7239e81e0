package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ascend/internal/models"
)

type PasswordResetRepository interface {
	// CreateIfNoneActive inserts a new code unless the user already has an
	// active one (unused, unexpired, under the attempt limit). Returns
	// (nil, nil) when an active code exists; callers treat that as a
	// silent no-op.
	CreateIfNoneActive(userID uuid.UUID, code string, now, expiresAt time.Time) (*models.PasswordResetCode, error)
	// GetByCodeUnused looks a code up among non-consumed records; (nil, nil)
	// on a miss.
	GetByCodeUnused(code string) (*models.PasswordResetCode, error)
	// IncrementAttempts adds one attempt and returns the new counter value
	// in the same statement, so the increment and the re-check cannot race.
	IncrementAttempts(id uuid.UUID) (int, error)
	// ConsumeForPasswordChange applies the new credential and marks every
	// outstanding code for the user as used in one transaction.
	ConsumeForPasswordChange(userID uuid.UUID, newHash string) error
	Delete(id uuid.UUID) error
	// DeleteExpiredAndUsed removes exactly the records that are used or
	// expired as of now; returns the number of rows removed.
	DeleteExpiredAndUsed(now time.Time) (int64, error)
}

type passwordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{DB: db}
}

func (r *passwordResetRepository) CreateIfNoneActive(userID uuid.UUID, code string, now, expiresAt time.Time) (*models.PasswordResetCode, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("password_reset create: begin: %w", err)
	}
	defer tx.Rollback()

	// Serialize concurrent requests for the same user; the transaction-scoped
	// advisory lock is released on commit/rollback.
	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1::text))`, userID.String()); err != nil {
		return nil, fmt.Errorf("password_reset create: lock: %w", err)
	}

	var active bool
	const existsQ = `
		SELECT EXISTS (
			SELECT 1 FROM password_reset_codes
			WHERE user_id = $1 AND used = FALSE AND expires_at > $2 AND attempts < $3
		)
	`
	if err := tx.QueryRow(existsQ, userID, now, models.MaxResetAttempts).Scan(&active); err != nil {
		return nil, fmt.Errorf("password_reset create: exists check: %w", err)
	}
	if active {
		return nil, nil
	}

	pr := &models.PasswordResetCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	const insertQ = `
		INSERT INTO password_reset_codes (id, user_id, code, expires_at, attempts, used, created_at)
		VALUES ($1, $2, $3, $4, 0, FALSE, $5)
	`
	if _, err := tx.Exec(insertQ, pr.ID, pr.UserID, pr.Code, pr.ExpiresAt, pr.CreatedAt); err != nil {
		return nil, fmt.Errorf("password_reset create: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("password_reset create: commit: %w", err)
	}
	return pr, nil
}

func (r *passwordResetRepository) GetByCodeUnused(code string) (*models.PasswordResetCode, error) {
	const q = `
		SELECT id, user_id, code, expires_at, attempts, used, created_at
		FROM password_reset_codes
		WHERE code = $1 AND used = FALSE
	`
	pr := &models.PasswordResetCode{}
	err := r.DB.QueryRow(q, code).Scan(
		&pr.ID, &pr.UserID, &pr.Code, &pr.ExpiresAt, &pr.Attempts, &pr.Used, &pr.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("password_reset get by code: %w", err)
	}
	return pr, nil
}

func (r *passwordResetRepository) IncrementAttempts(id uuid.UUID) (int, error) {
	const q = `
		UPDATE password_reset_codes
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("password_reset increment attempts: %w", err)
	}
	return attempts, nil
}

// ConsumeForPasswordChange touches the users table as well: the credential
// update and the code invalidation must be all-or-nothing, and both tables
// live in the same database.
func (r *passwordResetRepository) ConsumeForPasswordChange(userID uuid.UUID, newHash string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("password_reset consume: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, newHash, userID); err != nil {
		return fmt.Errorf("password_reset consume: update password: %w", err)
	}
	// Marks the consumed code and every sibling code for the user in one
	// statement.
	if _, err := tx.Exec(`UPDATE password_reset_codes SET used = TRUE WHERE user_id = $1 AND used = FALSE`, userID); err != nil {
		return fmt.Errorf("password_reset consume: mark used: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("password_reset consume: commit: %w", err)
	}
	return nil
}

func (r *passwordResetRepository) Delete(id uuid.UUID) error {
	if _, err := r.DB.Exec(`DELETE FROM password_reset_codes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("password_reset delete: %w", err)
	}
	return nil
}

func (r *passwordResetRepository) DeleteExpiredAndUsed(now time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM password_reset_codes WHERE used = TRUE OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("password_reset cleanup: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
