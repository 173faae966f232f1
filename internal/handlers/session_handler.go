package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepnest/exam-engine/internal/models"
	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/services"
	"github.com/prepnest/exam-engine/internal/utils"
	"github.com/prepnest/exam-engine/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService   services.SessionService
	analyticsService services.AnalyticsService
	validator        *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	analyticsService services.AnalyticsService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:      NewBaseHandler(logger),
		sessionService:   sessionService,
		analyticsService: analyticsService,
		validator:        validator,
	}
}

// CreateSession starts an exam session, or returns the caller's active one
// @Summary Create exam session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.CreateSessionRequest true "Session data"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	h.LogRequest(c, "Creating exam session")

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if session.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, session)
}

// GetSession returns one session owned by the caller
// @Summary Get exam session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting exam session", "session_id", id)

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions lists the caller's sessions, newest first
// @Summary List exam sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	h.LogRequest(c, "Listing exam sessions")

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.SessionFilters{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		sessionStatus := models.SessionStatus(status)
		filters.Status = &sessionStatus
	}
	if testID := c.Query("test_id"); testID != "" {
		filters.TestID = &testID
	}
	if seriesID := c.Query("series_id"); seriesID != "" {
		filters.SeriesID = &seriesID
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// UpdateSession records in-progress responses and the heartbeat
// @Summary Update exam session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param session body services.UpdateSessionRequest true "Update data"
// @Success 200 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id} [patch]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Updating exam session", "session_id", id)

	var req services.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitSession evaluates the session exactly once
// @Summary Submit exam session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Submitting exam session", "session_id", id)

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSessionAnalytics returns the immutable analytics row for a session
// @Summary Get session analytics
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.AnalyticsResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/analytics [get]
func (h *SessionHandler) GetSessionAnalytics(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting session analytics", "session_id", id)

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetBySession(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
