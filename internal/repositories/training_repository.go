package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ascend/internal/models"
)

type TrainingRepository struct {
	DB *sql.DB
}

func NewTrainingRepository(db *sql.DB) *TrainingRepository {
	return &TrainingRepository{DB: db}
}

// ===== templates =====

func (r *TrainingRepository) CountTemplates() (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM training_plan_templates`).Scan(&c); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return c, nil
}

func (r *TrainingRepository) InsertTemplate(t *models.TrainingPlanTemplate) error {
	const q = `
		INSERT INTO training_plan_templates
			(id, name, description, total_weeks, sessions_per_week, difficulty, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := r.DB.QueryRow(q,
		t.ID, t.Name, t.Description, t.TotalWeeks, t.SessionsPerWeek, t.Difficulty, t.Category, t.IsActive,
	).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

const templateColumns = `id, name, description, total_weeks, sessions_per_week, difficulty, category, is_active, created_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*models.TrainingPlanTemplate, error) {
	t := &models.TrainingPlanTemplate{}
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.TotalWeeks, &t.SessionsPerWeek,
		&t.Difficulty, &t.Category, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates returns active templates, optionally filtered by difficulty
// and/or category (empty string means no filter).
func (r *TrainingRepository) ListTemplates(difficulty, category string) ([]*models.TrainingPlanTemplate, error) {
	q := `SELECT ` + templateColumns + ` FROM training_plan_templates WHERE is_active = TRUE`
	var args []interface{}
	if difficulty != "" {
		args = append(args, difficulty)
		q += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}
	if category != "" {
		args = append(args, category)
		q += fmt.Sprintf(" AND category = $%d", len(args))
	}
	q += " ORDER BY created_at, id"

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.TrainingPlanTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TrainingRepository) GetTemplate(id uuid.UUID) (*models.TrainingPlanTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM training_plan_templates WHERE id = $1`
	t, err := scanTemplate(r.DB.QueryRow(q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ===== user plans =====

const planColumns = `id, user_id, template_id, name, description, status,
	current_week, current_session, started_at, paused_at, completed_at, last_activity_at`

func scanPlan(row interface{ Scan(...interface{}) error }) (*models.UserTrainingPlan, error) {
	p := &models.UserTrainingPlan{}
	var pausedAt, completedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.TemplateID, &p.Name, &p.Description, &p.Status,
		&p.CurrentWeek, &p.CurrentSession, &p.StartedAt, &pausedAt, &completedAt, &p.LastActivityAt); err != nil {
		return nil, err
	}
	if pausedAt.Valid {
		t := pausedAt.Time
		p.PausedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	return p, nil
}

func (r *TrainingRepository) HasPlanWithStatus(userID uuid.UUID, status models.PlanStatus) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM user_training_plans WHERE user_id = $1 AND status = $2)`
	if err := r.DB.QueryRow(q, userID, status).Scan(&exists); err != nil {
		return false, fmt.Errorf("plan exists check: %w", err)
	}
	return exists, nil
}

// CreatePlan inserts the plan and materializes its session rows in one
// transaction, so a started plan always has its full schedule.
func (r *TrainingRepository) CreatePlan(p *models.UserTrainingPlan, totalWeeks, sessionsPerWeek int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("create plan: begin: %w", err)
	}
	defer tx.Rollback()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	const q = `
		INSERT INTO user_training_plans
			(id, user_id, template_id, name, description, status,
			 current_week, current_session, started_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.Exec(q, p.ID, p.UserID, p.TemplateID, p.Name, p.Description, p.Status,
		p.CurrentWeek, p.CurrentSession, p.StartedAt, p.LastActivityAt); err != nil {
		return fmt.Errorf("create plan: insert: %w", err)
	}

	const sq = `
		INSERT INTO user_training_sessions (id, plan_id, week_number, session_number, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	sessionNumber := 0
	for week := 1; week <= totalWeeks; week++ {
		for i := 0; i < sessionsPerWeek; i++ {
			sessionNumber++
			if _, err := tx.Exec(sq, uuid.New(), p.ID, week, sessionNumber, models.TrainingSessionPending); err != nil {
				return fmt.Errorf("create plan: insert session %d: %w", sessionNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create plan: commit: %w", err)
	}
	return nil
}

func (r *TrainingRepository) GetPlan(id uuid.UUID) (*models.UserTrainingPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM user_training_plans WHERE id = $1`
	p, err := scanPlan(r.DB.QueryRow(q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (r *TrainingRepository) GetActivePlan(userID uuid.UUID) (*models.UserTrainingPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM user_training_plans WHERE user_id = $1 AND status = $2 LIMIT 1`
	p, err := scanPlan(r.DB.QueryRow(q, userID, models.PlanActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active plan: %w", err)
	}
	return p, nil
}

func (r *TrainingRepository) ListPlansByUser(userID uuid.UUID) ([]*models.UserTrainingPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM user_training_plans WHERE user_id = $1 ORDER BY started_at DESC`
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*models.UserTrainingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *TrainingRepository) UpdatePlan(p *models.UserTrainingPlan) error {
	const q = `
		UPDATE user_training_plans
		SET status = $1, current_week = $2, current_session = $3,
		    paused_at = $4, completed_at = $5, last_activity_at = $6
		WHERE id = $7
	`
	if _, err := r.DB.Exec(q, p.Status, p.CurrentWeek, p.CurrentSession,
		p.PausedAt, p.CompletedAt, p.LastActivityAt, p.ID); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// ===== plan sessions =====

func (r *TrainingRepository) GetPlanSession(planID uuid.UUID, sessionNumber int) (*models.UserTrainingSession, error) {
	const q = `
		SELECT id, plan_id, week_number, session_number, status, completed_at,
		       COALESCE(actual_duration_minutes, 0), COALESCE(notes, '')
		FROM user_training_sessions
		WHERE plan_id = $1 AND session_number = $2
	`
	s := &models.UserTrainingSession{}
	var completedAt sql.NullTime
	err := r.DB.QueryRow(q, planID, sessionNumber).Scan(
		&s.ID, &s.PlanID, &s.WeekNumber, &s.SessionNumber, &s.Status,
		&completedAt, &s.ActualDuration, &s.Notes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan session: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return s, nil
}

func (r *TrainingRepository) CompletePlanSession(id uuid.UUID, completedAt time.Time, durationMinutes int, notes string) error {
	const q = `
		UPDATE user_training_sessions
		SET status = $1, completed_at = $2, actual_duration_minutes = $3, notes = $4
		WHERE id = $5
	`
	if _, err := r.DB.Exec(q, models.TrainingSessionCompleted, completedAt, durationMinutes, notes, id); err != nil {
		return fmt.Errorf("complete plan session: %w", err)
	}
	return nil
}

func (r *TrainingRepository) CountPlanSessions(planID uuid.UUID) (completed, total int, err error) {
	const q = `
		SELECT COUNT(*) FILTER (WHERE status = $2), COUNT(*)
		FROM user_training_sessions
		WHERE plan_id = $1
	`
	if err := r.DB.QueryRow(q, planID, models.TrainingSessionCompleted).Scan(&completed, &total); err != nil {
		return 0, 0, fmt.Errorf("count plan sessions: %w", err)
	}
	return completed, total, nil
}
