package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ascend/internal/models"
	"ascend/internal/pdf"
	"ascend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	userService    services.UserService
	reports        *pdf.ReportGenerator
}

func NewSessionHandler(sessionService services.SessionService, userService services.UserService, reports *pdf.ReportGenerator) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		userService:    userService,
		reports:        reports,
	}
}

func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrNotSessionOwner):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	}
}

// @Summary      Log a session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        session  body      models.CreateSessionRequest  true  "Session"
// @Success      200      {object}  models.Session
// @Failure      400      {object}  map[string]string
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	session, err := h.sessionService.Create(userID, &req)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary      List sessions
// @Tags         Sessions
// @Produce      json
// @Param        discipline  query     string  false  "Filter by discipline"
// @Param        date        query     string  false  "Filter by date (YYYY-MM-DD)"
// @Success      200         {array}   models.Session
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var date *models.Date
	if raw := c.Query("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		d := models.Date(t)
		date = &d
	}

	sessions, err := h.sessionService.List(userID, c.Query("discipline"), date)
	if err != nil {
		sessionError(c, err)
		return
	}
	if sessions == nil {
		sessions = []*models.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  models.Session
// @Failure      404  {object}  map[string]string
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	h.withSession(c, func(sessionID, userID uuid.UUID) {
		session, err := h.sessionService.Get(sessionID, userID)
		if err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})
}

// @Summary      Update a session (partial)
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Session ID"
// @Param        session  body      models.UpdateSessionRequest  true  "Changed fields"
// @Success      200      {object}  models.Session
// @Router       /sessions/{id} [patch]
func (h *SessionHandler) Update(c *gin.Context) {
	h.withSession(c, func(sessionID, userID uuid.UUID) {
		var req models.UpdateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		session, err := h.sessionService.Update(sessionID, userID, &req)
		if err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})
}

// @Summary      Replace a session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Session ID"
// @Param        session  body      models.CreateSessionRequest  true  "Full session"
// @Success      200      {object}  models.Session
// @Router       /sessions/{id} [put]
func (h *SessionHandler) Replace(c *gin.Context) {
	h.withSession(c, func(sessionID, userID uuid.UUID) {
		var req models.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		session, err := h.sessionService.Replace(sessionID, userID, &req)
		if err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})
}

// @Summary      Delete a session
// @Tags         Sessions
// @Param        id  path  string  true  "Session ID"
// @Success      204
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	h.withSession(c, func(sessionID, userID uuid.UUID) {
		if err := h.sessionService.Delete(sessionID, userID); err != nil {
			sessionError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (h *SessionHandler) withSession(c *gin.Context, fn func(sessionID, userID uuid.UUID)) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session id"})
		return
	}
	fn(sessionID, userID)
}

// @Summary      Session analytics
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  models.SessionAnalytics
// @Router       /sessions/analytics [get]
func (h *SessionHandler) Analytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	analytics, err := h.sessionService.Analytics(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// @Summary      Progress analytics
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  models.ProgressAnalytics
// @Router       /sessions/analytics/progress [get]
func (h *SessionHandler) Progress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	progress, err := h.sessionService.Progress(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// @Summary      Highest grade per discipline
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /sessions/grades/highest [get]
func (h *SessionHandler) HighestGrades(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	highest, err := h.sessionService.HighestGrades(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	c.JSON(http.StatusOK, highest)
}

// @Summary      Average sent grade per discipline
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  map[string]float64
// @Router       /sessions/grades/average [get]
func (h *SessionHandler) AverageGrades(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	averages, err := h.sessionService.AverageGrades(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	c.JSON(http.StatusOK, averages)
}

// @Summary      Export session log as PDF
// @Tags         Sessions
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /sessions/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	user, err := h.userService.GetByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	sessions, err := h.sessionService.List(userID, "", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	analytics, err := h.sessionService.Analytics(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}

	data, err := h.reports.SessionReport(user, sessions, analytics)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ascend-sessions.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
