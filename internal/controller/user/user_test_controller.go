package user

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/service"
	"github.com/rs/zerolog/log"
)

type UserTestController struct {
	userTestService    service.UserTestService
	testSessionService service.TestSessionService
}

func NewUserTestController(uts service.UserTestService, tss service.TestSessionService) *UserTestController {
	return &UserTestController{
		userTestService:    uts,
		testSessionService: tss,
	}
}

func respondServiceError(ctx *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyGraded), errors.Is(err, service.ErrSessionNotActive):
		status = http.StatusConflict
	}
	ctx.JSON(status, dto.ErrorResponse{Message: msg, Details: []string{err.Error()}})
}

// userIDFromQuery reads the user_id query param. Temporary until the
// auth layer supplies the user from a token.
func userIDFromQuery(ctx *gin.Context) (uuid.UUID, bool) {
	raw := ctx.Query("user_id")
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id query parameter is required"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id format, expected a UUID"})
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// GetAllTests godoc
// @Summary (User) List published tests
// @Description Lists published tests, optionally filtered by skill and type.
// @Tags User - Tests
// @Produce json
// @Param skill query string false "Filter by skill (lr, writing, speaking, four_skills)"
// @Param type query string false "Filter by type (simulator, practice)"
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests [get]
func (c *UserTestController) GetAllTests(ctx *gin.Context) {
	tests, err := c.userTestService.GetPublishedTests(ctx.Query("skill"), ctx.Query("type"))
	if err != nil {
		log.Error().Err(err).Msg("User GetAllTests: Service error")
		respondServiceError(ctx, err, "Failed to retrieve tests")
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetails godoc
// @Summary (User) Get details of a specific test
// @Tags User - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id} [get]
func (c *UserTestController) GetTestDetails(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	testDetails, err := c.userTestService.GetTestDetails(testID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve test details")
		return
	}
	ctx.JSON(http.StatusOK, testDetails)
}

// StartTest godoc
// @Summary (User) Start or resume a test session
// @Description Returns the active session with saved answers if one exists; otherwise finalizes any expired session and starts a fresh one.
// @Tags User - Test Sessions
// @Produce json
// @Param test_id path int true "Test ID"
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {object} dto.TestStartResponse
// @Failure 400 {object} dto.ErrorResponse "Test not published"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id}/start [post]
func (c *UserTestController) StartTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}

	resp, err := c.testSessionService.StartTest(userID, testID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Str("userID", userID.String()).Msg("User StartTest: Service error")
		respondServiceError(ctx, err, "Failed to start test session")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SaveProgress godoc
// @Summary (User) Save in-progress answers
// @Description Upserts answers for an in-progress session. Saving the same question again overwrites the previous answer.
// @Tags User - Test Sessions
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param progress body dto.SaveProgressRequest true "Answers to save"
// @Success 204 "Progress saved"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer in progress"
// @Router /test-sessions/progress [post]
func (c *UserTestController) SaveProgress(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.testSessionService.SaveProgress(userID, req); err != nil {
		respondServiceError(ctx, err, "Failed to save progress")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitLRTest godoc
// @Summary (User) Submit a Listening & Reading session for grading
// @Description Grades the session against its frozen snapshots. An empty answer list grades from saved answers. Re-submitting a graded session returns the stored result.
// @Tags User - Test Sessions
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param submission body dto.SubmitLRTestRequest true "Session ID and answers"
// @Success 200 {object} dto.GeneralLRResultDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session cannot be graded in its current state"
// @Router /test-sessions/submit-lr [post]
func (c *UserTestController) SubmitLRTest(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.SubmitLRTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.testSessionService.SubmitLRTest(userID, req)
	if err != nil {
		log.Error().Err(err).Uint("testResultID", req.TestResultID).Msg("User SubmitLRTest: Service error")
		respondServiceError(ctx, err, "Failed to submit test")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetLRResultDetail godoc
// @Summary (User) Get the per-question review of a graded LR session
// @Tags User - Test Sessions
// @Produce json
// @Param result_id path int true "Test session ID"
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {object} dto.LRResultDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Session not graded yet"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /test-sessions/{result_id}/lr-detail [get]
func (c *UserTestController) GetLRResultDetail(ctx *gin.Context) {
	resultID, ok := pathID(ctx, "result_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}

	detail, err := c.testSessionService.GetLRResultDetail(userID, resultID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve result detail")
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetTestHistory godoc
// @Summary (User) List the user's test sessions
// @Tags User - Test Sessions
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {array} dto.TestHistoryItemDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/test-history [get]
func (c *UserTestController) GetTestHistory(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	history, err := c.userTestService.GetTestHistory(userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve test history")
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// GetUserStatistics godoc
// @Summary (User) Get aggregate study statistics
// @Tags User - Test Sessions
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {object} dto.UserStatisticsDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/statistics [get]
func (c *UserTestController) GetUserStatistics(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	stats, err := c.userTestService.GetUserStatistics(userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve statistics")
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// dateFromQuery parses an optional YYYY-MM-DD query parameter.
func dateFromQuery(ctx *gin.Context, name string) (*time.Time, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " date, expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

// GetProgressStatistics godoc
// @Summary (User) Get per-skill simulator progress over a date range
// @Description Aggregates graded simulator sessions of one skill. LR progress includes listening/reading breakdowns.
// @Tags User - Test Sessions
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param skill query string true "Skill (lr, writing, speaking, four_skills)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ProgressStatisticsDTO
// @Failure 400 {object} dto.ErrorResponse "Unknown skill or bad date"
// @Failure 404 {object} dto.ErrorResponse "No graded simulator sessions in range"
// @Router /me/statistics/progress [get]
func (c *UserTestController) GetProgressStatistics(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	from, ok := dateFromQuery(ctx, "from")
	if !ok {
		return
	}
	to, ok := dateFromQuery(ctx, "to")
	if !ok {
		return
	}

	stats, err := c.userTestService.GetProgressStatistics(userID, ctx.Query("skill"), from, to)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve progress statistics")
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
