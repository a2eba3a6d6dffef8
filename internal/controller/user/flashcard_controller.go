package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/service"
	"github.com/rs/zerolog/log"
)

type FlashcardController struct {
	flashcardService service.FlashcardService
}

func NewFlashcardController(flashcardService service.FlashcardService) *FlashcardController {
	return &FlashcardController{flashcardService: flashcardService}
}

// CreateFlashcard godoc
// @Summary (User) Create a vocabulary flashcard
// @Description Creates a flashcard and generates a TOEIC-style example sentence for the word. Example generation is best-effort.
// @Tags User - Flashcards
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param flashcard body dto.CreateFlashcardRequest true "Word and meaning"
// @Success 201 {object} dto.FlashcardResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /flashcards [post]
func (c *FlashcardController) CreateFlashcard(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.CreateFlashcardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.flashcardService.CreateFlashcard(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Str("word", req.Word).Msg("CreateFlashcard: Service error")
		respondServiceError(ctx, err, "Failed to create flashcard")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetFlashcards godoc
// @Summary (User) List the user's flashcards
// @Tags User - Flashcards
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {array} dto.FlashcardResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /flashcards [get]
func (c *FlashcardController) GetFlashcards(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	flashcards, err := c.flashcardService.GetFlashcards(userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve flashcards")
		return
	}
	ctx.JSON(http.StatusOK, flashcards)
}

// DeleteFlashcard godoc
// @Summary (User) Delete a flashcard
// @Tags User - Flashcards
// @Produce json
// @Param flashcard_id path int true "Flashcard ID"
// @Param user_id query string true "User ID (UUID)"
// @Success 204 "Flashcard deleted"
// @Failure 404 {object} dto.ErrorResponse "Flashcard not found"
// @Router /flashcards/{flashcard_id} [delete]
func (c *FlashcardController) DeleteFlashcard(ctx *gin.Context) {
	flashcardID, ok := pathID(ctx, "flashcard_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	if err := c.flashcardService.DeleteFlashcard(userID, flashcardID); err != nil {
		respondServiceError(ctx, err, "Failed to delete flashcard")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddFlashcardFromTest godoc
// @Summary (User) Save a word highlighted during a test
// @Description Creates a flashcard from a word captured while taking a test, into an existing set or a set created on the fly.
// @Tags User - Flashcards
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param flashcard body dto.AddFlashcardFromTestRequest true "Word and destination set"
// @Success 201 {object} dto.FlashcardResponse
// @Failure 400 {object} dto.ErrorResponse "Neither or both of set_id and new_set given"
// @Failure 404 {object} dto.ErrorResponse "Set not found"
// @Router /flashcards/from-test [post]
func (c *FlashcardController) AddFlashcardFromTest(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.AddFlashcardFromTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.flashcardService.AddFlashcardFromTest(ctx.Request.Context(), userID, req)
	if err != nil {
		log.Error().Err(err).Str("word", req.Word).Msg("AddFlashcardFromTest: Service error")
		respondServiceError(ctx, err, "Failed to add flashcard from test")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// CreateFlashcardSet godoc
// @Summary (User) Create a flashcard set
// @Tags User - Flashcards
// @Accept json
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Param set body dto.CreateFlashcardSetRequest true "Set metadata"
// @Success 201 {object} dto.FlashcardSetResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /flashcard-sets [post]
func (c *FlashcardController) CreateFlashcardSet(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.CreateFlashcardSetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.flashcardService.CreateSet(userID, req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to create flashcard set")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetFlashcardSets godoc
// @Summary (User) List the user's flashcard sets with card counts
// @Tags User - Flashcards
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {array} dto.FlashcardSetResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /flashcard-sets [get]
func (c *FlashcardController) GetFlashcardSets(ctx *gin.Context) {
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	sets, err := c.flashcardService.GetSets(userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve flashcard sets")
		return
	}
	ctx.JSON(http.StatusOK, sets)
}

// GetFlashcardSet godoc
// @Summary (User) Get one flashcard set with its cards
// @Tags User - Flashcards
// @Produce json
// @Param set_id path int true "Set ID"
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {object} dto.FlashcardSetDetailResponse
// @Failure 404 {object} dto.ErrorResponse "Set not found"
// @Router /flashcard-sets/{set_id} [get]
func (c *FlashcardController) GetFlashcardSet(ctx *gin.Context) {
	setID, ok := pathID(ctx, "set_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	set, err := c.flashcardService.GetSet(userID, setID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to retrieve flashcard set")
		return
	}
	ctx.JSON(http.StatusOK, set)
}

// UpdateFlashcardSet godoc
// @Summary (User) Update a flashcard set
// @Tags User - Flashcards
// @Accept json
// @Produce json
// @Param set_id path int true "Set ID"
// @Param user_id query string true "User ID (UUID)"
// @Param set body dto.UpdateFlashcardSetRequest true "Updated set metadata"
// @Success 200 {object} dto.FlashcardSetResponse
// @Failure 404 {object} dto.ErrorResponse "Set not found"
// @Router /flashcard-sets/{set_id} [put]
func (c *FlashcardController) UpdateFlashcardSet(ctx *gin.Context) {
	setID, ok := pathID(ctx, "set_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	var req dto.UpdateFlashcardSetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.flashcardService.UpdateSet(userID, setID, req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to update flashcard set")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteFlashcardSet godoc
// @Summary (User) Delete a flashcard set and its cards
// @Tags User - Flashcards
// @Produce json
// @Param set_id path int true "Set ID"
// @Param user_id query string true "User ID (UUID)"
// @Success 204 "Set deleted"
// @Failure 404 {object} dto.ErrorResponse "Set not found"
// @Router /flashcard-sets/{set_id} [delete]
func (c *FlashcardController) DeleteFlashcardSet(ctx *gin.Context) {
	setID, ok := pathID(ctx, "set_id")
	if !ok {
		return
	}
	userID, ok := userIDFromQuery(ctx)
	if !ok {
		return
	}
	if err := c.flashcardService.DeleteSet(userID, setID); err != nil {
		respondServiceError(ctx, err, "Failed to delete flashcard set")
		return
	}
	ctx.Status(http.StatusNoContent)
}
