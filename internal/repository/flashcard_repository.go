package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type FlashcardRepository interface {
	Create(flashcard *model.Flashcard) error
	Update(flashcard *model.Flashcard) error
	Delete(id uint) error
	FindByID(id uint) (*model.Flashcard, error)
	FindAllByUser(userID uuid.UUID) ([]model.Flashcard, error)
	FindAllBySet(setID uint) ([]model.Flashcard, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

type flashcardRepository struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) Create(flashcard *model.Flashcard) error {
	return r.db.Create(flashcard).Error
}

func (r *flashcardRepository) Update(flashcard *model.Flashcard) error {
	return r.db.Save(flashcard).Error
}

func (r *flashcardRepository) Delete(id uint) error {
	return r.db.Delete(&model.Flashcard{}, id).Error
}

func (r *flashcardRepository) FindByID(id uint) (*model.Flashcard, error) {
	var flashcard model.Flashcard
	if err := r.db.First(&flashcard, id).Error; err != nil {
		return nil, err
	}
	return &flashcard, nil
}

func (r *flashcardRepository) FindAllByUser(userID uuid.UUID) ([]model.Flashcard, error) {
	var flashcards []model.Flashcard
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&flashcards).Error
	return flashcards, err
}

func (r *flashcardRepository) FindAllBySet(setID uint) ([]model.Flashcard, error) {
	var flashcards []model.Flashcard
	err := r.db.Where("set_id = ?", setID).Order("created_at DESC").Find(&flashcards).Error
	return flashcards, err
}

func (r *flashcardRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Flashcard{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
