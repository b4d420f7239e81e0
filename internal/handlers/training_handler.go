package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ascend/internal/models"
	"ascend/internal/services"
)

type TrainingHandler struct {
	trainingService *services.TrainingService
}

func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

func trainingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrPlanSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrPlanAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrActivePlanExists),
		errors.Is(err, services.ErrPlanNotActive),
		errors.Is(err, services.ErrPlanNotPaused):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	}
}

// @Summary      List training plan templates
// @Tags         Training
// @Produce      json
// @Param        difficulty  query     string  false  "Filter by difficulty"
// @Param        category    query     string  false  "Filter by category"
// @Success      200         {array}   models.TrainingPlanTemplate
// @Router       /training/templates [get]
func (h *TrainingHandler) ListTemplates(c *gin.Context) {
	templates, err := h.trainingService.ListTemplates(c.Query("difficulty"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	if templates == nil {
		templates = []*models.TrainingPlanTemplate{}
	}
	c.JSON(http.StatusOK, templates)
}

// @Summary      Start a training plan
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        plan  body      models.StartPlanRequest  true  "Template to start"
// @Success      200   {object}  models.UserTrainingPlanView
// @Failure      409   {object}  map[string]string
// @Router       /training/user-plans [post]
func (h *TrainingHandler) StartPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req models.StartPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	view, err := h.trainingService.StartPlan(userID, &req)
	if err != nil {
		trainingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      List my training plans
// @Tags         Training
// @Produce      json
// @Success      200  {array}  models.UserTrainingPlanView
// @Router       /training/user-plans [get]
func (h *TrainingHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	plans, err := h.trainingService.ListPlans(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	if plans == nil {
		plans = []*models.UserTrainingPlanView{}
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary      Get my active training plan
// @Tags         Training
// @Produce      json
// @Success      200  {object}  models.UserTrainingPlanView
// @Failure      404  {object}  map[string]string
// @Router       /training/user-plans/active [get]
func (h *TrainingHandler) ActivePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	view, err := h.trainingService.ActivePlan(userID)
	if err != nil {
		trainingError(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No active training plan"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Get training plan details
// @Tags         Training
// @Produce      json
// @Param        id   path      string  true  "Plan ID"
// @Success      200  {object}  models.UserTrainingPlanView
// @Router       /training/user-plans/{id} [get]
func (h *TrainingHandler) PlanDetails(c *gin.Context) {
	h.withPlan(c, func(planID, userID uuid.UUID) {
		view, err := h.trainingService.PlanDetails(userID, planID)
		if err != nil {
			trainingError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})
}

// @Summary      Complete a training session
// @Tags         Training
// @Accept       json
// @Produce      json
// @Param        id         path      string                         true  "Plan ID"
// @Param        sessionId  path      int                            true  "Session number"
// @Param        session    body      models.CompleteSessionRequest  true  "Session details"
// @Success      200        {object}  models.UserTrainingPlanView
// @Router       /training/user-plans/{id}/sessions/{sessionId}/complete [post]
func (h *TrainingHandler) CompleteSession(c *gin.Context) {
	h.withPlan(c, func(planID, userID uuid.UUID) {
		sessionNumber, err := strconv.Atoi(c.Param("sessionId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session number"})
			return
		}
		var req models.CompleteSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		// The path segment is authoritative; a mismatched body is rejected.
		if req.SessionNumber != sessionNumber {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Session number mismatch"})
			return
		}
		view, err := h.trainingService.CompleteSession(userID, planID, &req)
		if err != nil {
			trainingError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})
}

// @Summary      Pause a training plan
// @Tags         Training
// @Produce      json
// @Param        id   path      string  true  "Plan ID"
// @Success      200  {object}  models.UserTrainingPlanView
// @Router       /training/user-plans/{id}/pause [post]
func (h *TrainingHandler) PausePlan(c *gin.Context) {
	h.withPlan(c, func(planID, userID uuid.UUID) {
		view, err := h.trainingService.PausePlan(userID, planID)
		if err != nil {
			trainingError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})
}

// @Summary      Resume a paused training plan
// @Tags         Training
// @Produce      json
// @Param        id   path      string  true  "Plan ID"
// @Success      200  {object}  models.UserTrainingPlanView
// @Router       /training/user-plans/{id}/resume [post]
func (h *TrainingHandler) ResumePlan(c *gin.Context) {
	h.withPlan(c, func(planID, userID uuid.UUID) {
		view, err := h.trainingService.ResumePlan(userID, planID)
		if err != nil {
			trainingError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})
}

func (h *TrainingHandler) withPlan(c *gin.Context, fn func(planID, userID uuid.UUID)) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid plan id"})
		return
	}
	fn(planID, userID)
}
