package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ascend/internal/models"
)

type SessionRepository interface {
	Create(s *models.Session) error
	GetByID(id uuid.UUID) (*models.Session, error)
	ListByUser(userID uuid.UUID) ([]*models.Session, error)
	ListByUserAndDiscipline(userID uuid.UUID, discipline string) ([]*models.Session, error)
	ListByUserAndDate(userID uuid.UUID, date time.Time) ([]*models.Session, error)
	Update(s *models.Session) error
	Delete(id uuid.UUID) error
}

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{DB: db}
}

const sessionColumns = `id, user_id, discipline, grade, date, notes, sent`

func (r *sessionRepository) Create(s *models.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, discipline, grade, date, notes, sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if _, err := r.DB.Exec(q, s.ID, s.UserID, s.Discipline, s.Grade, s.Date, s.Notes, s.Sent); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func scanSession(row interface{ Scan(...interface{}) error }) (*models.Session, error) {
	s := &models.Session{}
	var notes sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &s.Discipline, &s.Grade, &s.Date, &notes, &s.Sent); err != nil {
		return nil, err
	}
	if notes.Valid {
		s.Notes = notes.String
	}
	return s, nil
}

func (r *sessionRepository) GetByID(id uuid.UUID) (*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(r.DB.QueryRow(q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) list(q string, args ...interface{}) ([]*models.Session, error) {
	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionRepository) ListByUser(userID uuid.UUID) ([]*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY date, id`
	return r.list(q, userID)
}

func (r *sessionRepository) ListByUserAndDiscipline(userID uuid.UUID, discipline string) ([]*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 AND discipline = $2 ORDER BY date, id`
	return r.list(q, userID, discipline)
}

func (r *sessionRepository) ListByUserAndDate(userID uuid.UUID, date time.Time) ([]*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 AND date = $2 ORDER BY id`
	return r.list(q, userID, date)
}

func (r *sessionRepository) Update(s *models.Session) error {
	const q = `
		UPDATE sessions
		SET discipline = $1, grade = $2, date = $3, notes = $4, sent = $5
		WHERE id = $6
	`
	if _, err := r.DB.Exec(q, s.Discipline, s.Grade, s.Date, s.Notes, s.Sent, s.ID); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Delete(id uuid.UUID) error {
	if _, err := r.DB.Exec(`DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
