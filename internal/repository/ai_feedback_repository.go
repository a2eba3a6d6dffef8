package repository

import (
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type AIFeedbackRepository interface {
	Create(feedback *model.AIFeedback) error
	CreateBatch(feedbacks []model.AIFeedback) error
	FindLatestByUserAnswerID(userAnswerID uint) (*model.AIFeedback, error)
}

type aiFeedbackRepository struct {
	db *gorm.DB
}

func NewAIFeedbackRepository(db *gorm.DB) AIFeedbackRepository {
	return &aiFeedbackRepository{db: db}
}

func (r *aiFeedbackRepository) Create(feedback *model.AIFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *aiFeedbackRepository) CreateBatch(feedbacks []model.AIFeedback) error {
	if len(feedbacks) == 0 {
		return nil
	}
	return r.db.Create(&feedbacks).Error
}

func (r *aiFeedbackRepository) FindLatestByUserAnswerID(userAnswerID uint) (*model.AIFeedback, error) {
	var feedback model.AIFeedback
	err := r.db.
		Where("user_answer_id = ?", userAnswerID).
		Order("created_at DESC").
		First(&feedback).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}
