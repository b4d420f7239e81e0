package models

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanActive    PlanStatus = "ACTIVE"
	PlanPaused    PlanStatus = "PAUSED"
	PlanCompleted PlanStatus = "COMPLETED"
	PlanAbandoned PlanStatus = "ABANDONED"
)

type TrainingSessionStatus string

const (
	TrainingSessionPending   TrainingSessionStatus = "PENDING"
	TrainingSessionCompleted TrainingSessionStatus = "COMPLETED"
)

type TrainingPlanTemplate struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	TotalWeeks      int       `json:"totalWeeks"`
	SessionsPerWeek int       `json:"sessionsPerWeek"`
	Difficulty      string    `json:"difficulty"` // BEGINNER, INTERMEDIATE, ADVANCED
	Category        string    `json:"category"`   // STRENGTH, ENDURANCE, TECHNIQUE
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

type UserTrainingPlan struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"-"`
	TemplateID     uuid.UUID  `json:"templateId"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Status         PlanStatus `json:"status"`
	CurrentWeek    int        `json:"currentWeek"`
	CurrentSession int        `json:"currentSession"`
	StartedAt      time.Time  `json:"startedAt"`
	PausedAt       *time.Time `json:"pausedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
}

type UserTrainingSession struct {
	ID             uuid.UUID             `json:"id"`
	PlanID         uuid.UUID             `json:"planId"`
	WeekNumber     int                   `json:"weekNumber"`
	SessionNumber  int                   `json:"sessionNumber"` // 1..totalWeeks*sessionsPerWeek, plan-wide
	Status         TrainingSessionStatus `json:"status"`
	CompletedAt    *time.Time            `json:"completedAt,omitempty"`
	ActualDuration int                   `json:"actualDurationMinutes"`
	Notes          string                `json:"notes,omitempty"`
}

// UserTrainingPlanView — plan plus derived progress, the shape returned by
// the training endpoints.
type UserTrainingPlanView struct {
	UserTrainingPlan
	Template           *TrainingPlanTemplate `json:"template,omitempty"`
	CompletedSessions  int                   `json:"completedSessions"`
	TotalSessions      int                   `json:"totalSessions"`
	ProgressPercentage float64               `json:"progressPercentage"`
}

type StartPlanRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

type CompleteSessionRequest struct {
	SessionNumber  int    `json:"sessionNumber" binding:"required"`
	ActualDuration int    `json:"actualDurationMinutes"`
	Notes          string `json:"notes"`
}
