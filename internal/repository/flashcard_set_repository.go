package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type FlashcardSetRepository interface {
	Create(set *model.FlashcardSet) error
	Update(set *model.FlashcardSet) error
	Delete(id uint) error
	FindByID(id uint) (*model.FlashcardSet, error)
	FindAllByUserWithCardCount(userID uuid.UUID) ([]struct {
		model.FlashcardSet
		CardCount int
	}, error)
}

type flashcardSetRepository struct {
	db *gorm.DB
}

func NewFlashcardSetRepository(db *gorm.DB) FlashcardSetRepository {
	return &flashcardSetRepository{db: db}
}

func (r *flashcardSetRepository) Create(set *model.FlashcardSet) error {
	return r.db.Create(set).Error
}

func (r *flashcardSetRepository) Update(set *model.FlashcardSet) error {
	return r.db.Save(set).Error
}

// Delete removes the set and its cards; the association cascade on
// FlashcardSet.Flashcards only covers hard deletes, so the cards are
// soft-deleted explicitly first.
func (r *flashcardSetRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", id).Delete(&model.Flashcard{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.FlashcardSet{}, id).Error
	})
}

func (r *flashcardSetRepository) FindByID(id uint) (*model.FlashcardSet, error) {
	var set model.FlashcardSet
	if err := r.db.First(&set, id).Error; err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *flashcardSetRepository) FindAllByUserWithCardCount(userID uuid.UUID) ([]struct {
	model.FlashcardSet
	CardCount int
}, error) {
	var results []struct {
		model.FlashcardSet
		CardCount int
	}
	err := r.db.Model(&model.FlashcardSet{}).
		Select("flashcard_sets.*, (SELECT COUNT(*) FROM flashcards WHERE flashcards.set_id = flashcard_sets.id AND flashcards.deleted_at IS NULL) as card_count").
		Where("flashcard_sets.user_id = ? AND flashcard_sets.deleted_at IS NULL", userID).
		Order("flashcard_sets.created_at DESC").
		Scan(&results).Error
	return results, err
}
