package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type FlashcardService interface {
	CreateFlashcard(ctx context.Context, userID uuid.UUID, req dto.CreateFlashcardRequest) (*dto.FlashcardResponse, error)
	GetFlashcards(userID uuid.UUID) ([]dto.FlashcardResponse, error)
	DeleteFlashcard(userID uuid.UUID, id uint) error
	// AddFlashcardFromTest saves a word highlighted while taking a test
	// into an existing set or a set created on the fly.
	AddFlashcardFromTest(ctx context.Context, userID uuid.UUID, req dto.AddFlashcardFromTestRequest) (*dto.FlashcardResponse, error)
	CreateSet(userID uuid.UUID, req dto.CreateFlashcardSetRequest) (*dto.FlashcardSetResponse, error)
	GetSets(userID uuid.UUID) ([]dto.FlashcardSetResponse, error)
	GetSet(userID uuid.UUID, setID uint) (*dto.FlashcardSetDetailResponse, error)
	UpdateSet(userID uuid.UUID, setID uint, req dto.UpdateFlashcardSetRequest) (*dto.FlashcardSetResponse, error)
	DeleteSet(userID uuid.UUID, setID uint) error
}

type flashcardService struct {
	flashcardRepo repository.FlashcardRepository
	setRepo       repository.FlashcardSetRepository
	gemini        GeminiLLMService
}

func NewFlashcardService(
	flashcardRepo repository.FlashcardRepository,
	setRepo repository.FlashcardSetRepository,
	gemini GeminiLLMService,
) FlashcardService {
	return &flashcardService{flashcardRepo: flashcardRepo, setRepo: setRepo, gemini: gemini}
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID uuid.UUID, req dto.CreateFlashcardRequest) (*dto.FlashcardResponse, error) {
	if req.SetID != nil {
		if _, err := s.ownedSet(userID, *req.SetID); err != nil {
			return nil, err
		}
	}
	return s.createCard(ctx, userID, req.SetID, req.Word, req.Meaning, req.Pronunciation)
}

func (s *flashcardService) AddFlashcardFromTest(ctx context.Context, userID uuid.UUID, req dto.AddFlashcardFromTestRequest) (*dto.FlashcardResponse, error) {
	if (req.SetID == nil) == (req.NewSet == nil) {
		return nil, fmt.Errorf("%w: provide exactly one of set_id or new_set", ErrValidation)
	}

	var setID uint
	if req.SetID != nil {
		if _, err := s.ownedSet(userID, *req.SetID); err != nil {
			return nil, err
		}
		setID = *req.SetID
	} else {
		created, err := s.CreateSet(userID, *req.NewSet)
		if err != nil {
			return nil, err
		}
		setID = created.ID
	}
	return s.createCard(ctx, userID, &setID, req.Word, req.Meaning, req.Pronunciation)
}

func (s *flashcardService) createCard(ctx context.Context, userID uuid.UUID, setID *uint, word, meaning, pronunciation string) (*dto.FlashcardResponse, error) {
	flashcard := model.Flashcard{
		UserID:        userID,
		SetID:         setID,
		Word:          word,
		Meaning:       meaning,
		Pronunciation: pronunciation,
	}

	// The example sentence is best-effort; a Gemini failure never
	// blocks flashcard creation.
	sentence, err := s.gemini.GenerateExampleSentence(ctx, word, meaning)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("Failed to generate example sentence")
	} else {
		flashcard.ExampleSentence = sentence
	}

	if err := s.flashcardRepo.Create(&flashcard); err != nil {
		return nil, fmt.Errorf("database error creating flashcard: %w", err)
	}

	var resp dto.FlashcardResponse
	copier.Copy(&resp, &flashcard)
	return &resp, nil
}

func (s *flashcardService) GetFlashcards(userID uuid.UUID) ([]dto.FlashcardResponse, error) {
	flashcards, err := s.flashcardRepo.FindAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching flashcards: %w", err)
	}
	return flashcardDTOs(flashcards), nil
}

func (s *flashcardService) DeleteFlashcard(userID uuid.UUID, id uint) error {
	flashcard, err := s.flashcardRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: flashcard %d", ErrNotFound, id)
		}
		return fmt.Errorf("error fetching flashcard %d: %w", id, err)
	}
	if flashcard.UserID != userID {
		return fmt.Errorf("%w: flashcard %d", ErrNotFound, id)
	}
	return s.flashcardRepo.Delete(id)
}

func (s *flashcardService) CreateSet(userID uuid.UUID, req dto.CreateFlashcardSetRequest) (*dto.FlashcardSetResponse, error) {
	set := model.FlashcardSet{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		IsPublic:    req.IsPublic,
	}
	if set.Language == "" {
		set.Language = "en-US"
	}
	if err := s.setRepo.Create(&set); err != nil {
		return nil, fmt.Errorf("database error creating flashcard set: %w", err)
	}

	var resp dto.FlashcardSetResponse
	copier.Copy(&resp, &set)
	return &resp, nil
}

func (s *flashcardService) GetSets(userID uuid.UUID) ([]dto.FlashcardSetResponse, error) {
	setsWithCount, err := s.setRepo.FindAllByUserWithCardCount(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching flashcard sets: %w", err)
	}
	dtos := make([]dto.FlashcardSetResponse, 0, len(setsWithCount))
	for _, swc := range setsWithCount {
		var resp dto.FlashcardSetResponse
		copier.Copy(&resp, &swc.FlashcardSet)
		resp.CardCount = swc.CardCount
		dtos = append(dtos, resp)
	}
	return dtos, nil
}

func (s *flashcardService) GetSet(userID uuid.UUID, setID uint) (*dto.FlashcardSetDetailResponse, error) {
	set, err := s.ownedSet(userID, setID)
	if err != nil {
		return nil, err
	}
	cards, err := s.flashcardRepo.FindAllBySet(setID)
	if err != nil {
		return nil, fmt.Errorf("error fetching set cards: %w", err)
	}

	var resp dto.FlashcardSetDetailResponse
	copier.Copy(&resp.FlashcardSetResponse, set)
	resp.CardCount = len(cards)
	resp.Flashcards = flashcardDTOs(cards)
	return &resp, nil
}

func (s *flashcardService) UpdateSet(userID uuid.UUID, setID uint, req dto.UpdateFlashcardSetRequest) (*dto.FlashcardSetResponse, error) {
	set, err := s.ownedSet(userID, setID)
	if err != nil {
		return nil, err
	}
	set.Title = req.Title
	set.Description = req.Description
	if req.Language != "" {
		set.Language = req.Language
	}
	set.IsPublic = req.IsPublic
	if err := s.setRepo.Update(set); err != nil {
		return nil, fmt.Errorf("database error updating flashcard set %d: %w", setID, err)
	}

	var resp dto.FlashcardSetResponse
	copier.Copy(&resp, set)
	return &resp, nil
}

func (s *flashcardService) DeleteSet(userID uuid.UUID, setID uint) error {
	if _, err := s.ownedSet(userID, setID); err != nil {
		return err
	}
	return s.setRepo.Delete(setID)
}

func (s *flashcardService) ownedSet(userID uuid.UUID, setID uint) (*model.FlashcardSet, error) {
	set, err := s.setRepo.FindByID(setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: flashcard set %d", ErrNotFound, setID)
		}
		return nil, fmt.Errorf("error fetching flashcard set %d: %w", setID, err)
	}
	if set.UserID != userID {
		return nil, fmt.Errorf("%w: flashcard set %d", ErrNotFound, setID)
	}
	return set, nil
}

func flashcardDTOs(flashcards []model.Flashcard) []dto.FlashcardResponse {
	dtos := make([]dto.FlashcardResponse, 0, len(flashcards))
	for _, f := range flashcards {
		var resp dto.FlashcardResponse
		copier.Copy(&resp, &f)
		dtos = append(dtos, resp)
	}
	return dtos
}
