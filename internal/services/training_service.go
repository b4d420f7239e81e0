package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ascend/internal/models"
	"ascend/internal/repositories"
)

var (
	ErrTemplateNotFound    = errors.New("training plan template not found")
	ErrPlanNotFound        = errors.New("training plan not found")
	ErrPlanAccessDenied    = errors.New("access denied")
	ErrActivePlanExists    = errors.New("user already has an active training plan")
	ErrPlanNotActive       = errors.New("plan is not active")
	ErrPlanNotPaused       = errors.New("plan is not paused")
	ErrPlanSessionNotFound = errors.New("session not found")
)

type TrainingService struct {
	repo *repositories.TrainingRepository
	now  func() time.Time
}

func NewTrainingService(repo *repositories.TrainingRepository) *TrainingService {
	return &TrainingService{repo: repo, now: time.Now}
}

// SeedTemplates inserts the stock templates on an empty table; reruns are
// no-ops.
func (s *TrainingService) SeedTemplates() error {
	count, err := s.repo.CountTemplates()
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[training][seed] templates already exist, skipping")
		return nil
	}

	templates := []*models.TrainingPlanTemplate{
		{
			Name:            "Beginner Strength Foundation",
			Description:     "A 4-week program designed to build fundamental climbing strength for beginners.",
			TotalWeeks:      4,
			SessionsPerWeek: 3,
			Difficulty:      "BEGINNER",
			Category:        "STRENGTH",
			IsActive:        true,
		},
		{
			Name:            "Intermediate Endurance Builder",
			Description:     "A 6-week program focused on building climbing endurance and stamina.",
			TotalWeeks:      6,
			SessionsPerWeek: 4,
			Difficulty:      "INTERMEDIATE",
			Category:        "ENDURANCE",
			IsActive:        true,
		},
		{
			Name:            "Advanced Technique Mastery",
			Description:     "An 8-week program for advanced climbers to refine technique and movement skills.",
			TotalWeeks:      8,
			SessionsPerWeek: 5,
			Difficulty:      "ADVANCED",
			Category:        "TECHNIQUE",
			IsActive:        true,
		},
		{
			Name:            "Beginner Technique Basics",
			Description:     "A 3-week program introducing fundamental climbing techniques and movement patterns.",
			TotalWeeks:      3,
			SessionsPerWeek: 2,
			Difficulty:      "BEGINNER",
			Category:        "TECHNIQUE",
			IsActive:        true,
		},
		{
			Name:            "Intermediate Power Development",
			Description:     "A 5-week program focused on building climbing-specific power and strength.",
			TotalWeeks:      5,
			SessionsPerWeek: 3,
			Difficulty:      "INTERMEDIATE",
			Category:        "STRENGTH",
			IsActive:        true,
		},
	}
	for _, t := range templates {
		if err := s.repo.InsertTemplate(t); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
	}
	log.Printf("[training][seed] seeded %d templates", len(templates))
	return nil
}

func (s *TrainingService) ListTemplates(difficulty, category string) ([]*models.TrainingPlanTemplate, error) {
	return s.repo.ListTemplates(difficulty, category)
}

func (s *TrainingService) StartPlan(userID uuid.UUID, req *models.StartPlanRequest) (*models.UserTrainingPlanView, error) {
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, ErrTemplateNotFound
	}
	template, err := s.repo.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	hasActive, err := s.repo.HasPlanWithStatus(userID, models.PlanActive)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, ErrActivePlanExists
	}

	now := s.now()
	plan := &models.UserTrainingPlan{
		UserID:         userID,
		TemplateID:     template.ID,
		Name:           template.Name,
		Description:    template.Description,
		Status:         models.PlanActive,
		CurrentWeek:    1,
		CurrentSession: 1,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if err := s.repo.CreatePlan(plan, template.TotalWeeks, template.SessionsPerWeek); err != nil {
		return nil, err
	}
	return s.view(plan, template)
}

func (s *TrainingService) ListPlans(userID uuid.UUID) ([]*models.UserTrainingPlanView, error) {
	plans, err := s.repo.ListPlansByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserTrainingPlanView, 0, len(plans))
	for _, p := range plans {
		v, err := s.view(p, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *TrainingService) ActivePlan(userID uuid.UUID) (*models.UserTrainingPlanView, error) {
	plan, err := s.repo.GetActivePlan(userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}
	return s.view(plan, nil)
}

func (s *TrainingService) owned(planID, userID uuid.UUID) (*models.UserTrainingPlan, error) {
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if plan.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *TrainingService) PlanDetails(userID, planID uuid.UUID) (*models.UserTrainingPlanView, error) {
	plan, err := s.owned(planID, userID)
	if err != nil {
		return nil, err
	}
	return s.view(plan, nil)
}

func (s *TrainingService) CompleteSession(userID, planID uuid.UUID, req *models.CompleteSessionRequest) (*models.UserTrainingPlanView, error) {
	plan, err := s.owned(planID, userID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanActive {
		return nil, ErrPlanNotActive
	}

	session, err := s.repo.GetPlanSession(planID, req.SessionNumber)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrPlanSessionNotFound
	}

	now := s.now()
	if err := s.repo.CompletePlanSession(session.ID, now, req.ActualDuration, req.Notes); err != nil {
		return nil, err
	}

	// Advance plan progress; the plan completes when every scheduled session
	// has been completed.
	completed, total, err := s.repo.CountPlanSessions(planID)
	if err != nil {
		return nil, err
	}
	plan.LastActivityAt = now
	if completed >= total {
		plan.Status = models.PlanCompleted
		plan.CompletedAt = &now
	} else if session.SessionNumber >= plan.CurrentSession {
		plan.CurrentSession = session.SessionNumber + 1
		plan.CurrentWeek = session.WeekNumber
	}
	if err := s.repo.UpdatePlan(plan); err != nil {
		return nil, err
	}
	return s.view(plan, nil)
}

func (s *TrainingService) PausePlan(userID, planID uuid.UUID) (*models.UserTrainingPlanView, error) {
	plan, err := s.owned(planID, userID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanActive {
		return nil, ErrPlanNotActive
	}
	now := s.now()
	plan.Status = models.PlanPaused
	plan.PausedAt = &now
	plan.LastActivityAt = now
	if err := s.repo.UpdatePlan(plan); err != nil {
		return nil, err
	}
	return s.view(plan, nil)
}

func (s *TrainingService) ResumePlan(userID, planID uuid.UUID) (*models.UserTrainingPlanView, error) {
	plan, err := s.owned(planID, userID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanPaused {
		return nil, ErrPlanNotPaused
	}
	now := s.now()
	plan.Status = models.PlanActive
	plan.PausedAt = nil
	plan.LastActivityAt = now
	if err := s.repo.UpdatePlan(plan); err != nil {
		return nil, err
	}
	return s.view(plan, nil)
}

func (s *TrainingService) view(plan *models.UserTrainingPlan, template *models.TrainingPlanTemplate) (*models.UserTrainingPlanView, error) {
	if template == nil {
		t, err := s.repo.GetTemplate(plan.TemplateID)
		if err != nil {
			return nil, err
		}
		template = t
	}
	completed, total, err := s.repo.CountPlanSessions(plan.ID)
	if err != nil {
		return nil, err
	}
	v := &models.UserTrainingPlanView{
		UserTrainingPlan:  *plan,
		Template:          template,
		CompletedSessions: completed,
		TotalSessions:     total,
	}
	if total > 0 {
		v.ProgressPercentage = float64(completed) / float64(total) * 100
	}
	return v, nil
}
