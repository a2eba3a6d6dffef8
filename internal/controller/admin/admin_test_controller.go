package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
}

func NewAdminTestController(adminTestService service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService}
}

func respondServiceError(ctx *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	}
	ctx.JSON(status, dto.ErrorResponse{Message: msg, Details: []string{err.Error()}})
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// CreateTest godoc
// @Summary (Admin) Assemble a test from inline content
// @Description Creates a draft test whose question content is frozen into snapshots at assembly time.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_data body dto.TestCreateDTO true "Test metadata and full question content"
// @Success 201 {object} dto.TestSummaryDTO "Test assembled"
// @Failure 400 {object} dto.ErrorResponse "Structural validation failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateTest: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	testResp, err := c.adminTestService.CreateTest(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateTest: Service error")
		respondServiceError(ctx, err, "Failed to create test")
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// CreateTestFromBank godoc
// @Summary (Admin) Assemble a test from bank questions
// @Description Snapshots the referenced bank questions and groups into a new draft test.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_data body dto.TestFromBankDTO true "Test metadata and bank question/group IDs"
// @Success 201 {object} dto.TestSummaryDTO "Test assembled"
// @Failure 400 {object} dto.ErrorResponse "Unknown bank IDs or structural validation failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/from-bank [post]
func (c *AdminTestController) CreateTestFromBank(ctx *gin.Context) {
	var req dto.TestFromBankDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	testResp, err := c.adminTestService.CreateTestFromBank(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateTestFromBank: Service error")
		respondServiceError(ctx, err, "Failed to create test from bank")
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// CreateRandomTest godoc
// @Summary (Admin) Assemble a test by random draw from the bank
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_data body dto.TestRandomDTO true "Test metadata and per-part question counts"
// @Success 201 {object} dto.TestSummaryDTO "Test assembled"
// @Failure 400 {object} dto.ErrorResponse "Bank too small or structural validation failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/random [post]
func (c *AdminTestController) CreateRandomTest(ctx *gin.Context) {
	var req dto.TestRandomDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	testResp, err := c.adminTestService.CreateRandomTest(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateRandomTest: Service error")
		respondServiceError(ctx, err, "Failed to create random test")
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// CreateNewVersion godoc
// @Summary (Admin) Create a new version of an existing test
// @Description Assembles a replacement test linked to the version chain's root. Existing sessions keep their snapshots.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Any test ID in the version chain"
// @Param test_data body dto.TestCreateDTO true "Replacement test content"
// @Success 201 {object} dto.TestSummaryDTO "New version assembled"
// @Failure 400 {object} dto.ErrorResponse "Structural validation failed"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id}/versions [post]
func (c *AdminTestController) CreateNewVersion(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	testResp, err := c.adminTestService.CreateNewVersion(testID, req)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("Admin CreateNewVersion: Service error")
		respondServiceError(ctx, err, "Failed to create new test version")
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// PublishTest godoc
// @Summary (Admin) Publish a test
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 204 "Test published"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id}/publish [put]
func (c *AdminTestController) PublishTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	if err := c.adminTestService.PublishTest(testID); err != nil {
		respondServiceError(ctx, err, "Failed to publish test")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ArchiveTest godoc
// @Summary (Admin) Archive a test so users can no longer start it
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 204 "Test archived"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id}/archive [put]
func (c *AdminTestController) ArchiveTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	if err := c.adminTestService.ArchiveTest(testID); err != nil {
		respondServiceError(ctx, err, "Failed to archive test")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetTestVersions godoc
// @Summary (Admin) List every version of a test
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Any test ID in the version chain"
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id}/versions [get]
func (c *AdminTestController) GetTestVersions(ctx *gin.Context) {
	testID, ok := pathID(ctx, "test_id")
	if !ok {
		return
	}
	versions, err := c.adminTestService.GetTestVersions(testID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to list test versions")
		return
	}
	ctx.JSON(http.StatusOK, versions)
}

// AddQuestionToBank godoc
// @Summary (Admin) Add a question to the bank
// @Tags Admin - Question Bank
// @Accept json
// @Produce json
// @Param question body dto.QuestionCreateDTO true "Question content"
// @Success 201 {object} model.Question
// @Failure 400 {object} dto.ErrorResponse "Invalid question"
// @Router /admin/questions [post]
func (c *AdminTestController) AddQuestionToBank(ctx *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	question, err := c.adminTestService.AddQuestionToBank(req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to add question to bank")
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// AddGroupToBank godoc
// @Summary (Admin) Add a question group to the bank
// @Tags Admin - Question Bank
// @Accept json
// @Produce json
// @Param group body dto.QuestionGroupCreateDTO true "Group content with sub-questions"
// @Success 201 {object} model.QuestionGroup
// @Failure 400 {object} dto.ErrorResponse "Invalid group"
// @Router /admin/question-groups [post]
func (c *AdminTestController) AddGroupToBank(ctx *gin.Context) {
	var req dto.QuestionGroupCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	group, err := c.adminTestService.AddGroupToBank(req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to add question group to bank")
		return
	}
	ctx.JSON(http.StatusCreated, group)
}
