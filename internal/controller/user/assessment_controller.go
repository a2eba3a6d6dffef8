package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/service"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
}

func NewAssessmentController(assessmentService service.AssessmentService) *AssessmentController {
	return &AssessmentController{assessmentService: assessmentService}
}

// SubmitBulkAssessment godoc
// @Summary (User) Submit a Writing/Speaking session for AI scoring
// @Description Scores every part through the external scoring services. Parts whose scoring call fails are reported and left unscored; the session is graded from the parts that succeeded. If nothing could be scored the session stays in progress.
// @Tags User - Assessment
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param submission body dto.SubmitBulkAssessmentRequest true "Session ID and answers grouped by part"
// @Success 200 {object} dto.SubmitBulkAssessmentResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session already graded"
// @Router /assessments/bulk [post]
func (c *AssessmentController) SubmitBulkAssessment(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.SubmitBulkAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.assessmentService.SubmitBulkAssessment(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Uint("testResultID", req.TestResultID).Msg("SubmitBulkAssessment: Service error")
		respondServiceError(ctx, err, "Failed to submit assessment")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetScorerHealth godoc
// @Summary Check the health of the AI scoring services
// @Description Probes the writing and speaking scorers. Responds 200 with per-service status; overall_status is degraded when any probe fails.
// @Tags User - Assessment
// @Produce json
// @Success 200 {object} dto.ScorerHealthDTO
// @Router /assessments/health [get]
func (c *AssessmentController) GetScorerHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.assessmentService.ScorerHealth(ctx.Request.Context()))
}
