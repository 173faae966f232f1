package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepnest/exam-engine/internal/repositories"
	"github.com/prepnest/exam-engine/internal/services"
	"github.com/prepnest/exam-engine/internal/utils"
	"github.com/prepnest/exam-engine/internal/validator"
)

type TestHandler struct {
	BaseHandler
	testService      services.TestService
	analyticsService services.AnalyticsService
	validator        *validator.Validator
}

func NewTestHandler(
	testService services.TestService,
	analyticsService services.AnalyticsService,
	validator *validator.Validator,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler:      NewBaseHandler(logger),
		testService:      testService,
		analyticsService: analyticsService,
		validator:        validator,
	}
}

// CreateTest publishes a new test definition
// @Summary Create test definition
// @Tags tests
// @Accept json
// @Produce json
// @Param test body services.CreateTestRequest true "Test definition"
// @Success 201 {object} services.TestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	h.LogRequest(c, "Creating test definition")

	var req services.CreateTestRequest
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

	test, err := h.testService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns one test definition by business key
// @Summary Get test definition
// @Tags tests
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{test_id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	testID := c.Param("test_id")
	h.LogRequest(c, "Getting test definition", "test_id", testID)

	test, err := h.testService.GetByTestID(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ListTests lists test definitions
// @Summary List test definitions
// @Tags tests
// @Produce json
// @Success 200 {object} services.TestListResponse
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	h.LogRequest(c, "Listing test definitions")

	filters := repositories.TestFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	tests, err := h.testService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetTestStats returns attempt statistics for a test
// @Summary Get test statistics
// @Tags tests
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} repositories.TestAttemptStats
// @Failure 404 {object} ErrorResponse
// @Router /tests/{test_id}/stats [get]
func (h *TestHandler) GetTestStats(c *gin.Context) {
	testID := c.Param("test_id")
	h.LogRequest(c, "Getting test stats", "test_id", testID)

	stats, err := h.testService.GetStats(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResults streams an xlsx workbook of all evaluated attempts
// @Summary Export test results
// @Tags tests
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param test_id path string true "Test ID"
// @Failure 404 {object} ErrorResponse
// @Router /tests/{test_id}/results/export [get]
func (h *TestHandler) ExportResults(c *gin.Context) {
	testID := c.Param("test_id")
	h.LogRequest(c, "Exporting test results", "test_id", testID)

	file, err := h.analyticsService.ExportResults(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("results_%s_%s.xlsx", testID, time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := file.Write(c.Writer); err != nil {
		utils.LoggerFromContext(c).Error("Failed to stream export", "test_id", testID, "error", err)
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
