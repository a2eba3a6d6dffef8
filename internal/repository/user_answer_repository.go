package repository

import (
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserAnswerRepository interface {
	UpsertBatch(answers []model.UserAnswer) error
	SaveAll(answers []model.UserAnswer) error
	FindByTestResultID(testResultID uint) ([]model.UserAnswer, error)
}

type userAnswerRepository struct {
	db *gorm.DB
}

func NewUserAnswerRepository(db *gorm.DB) UserAnswerRepository {
	return &userAnswerRepository{db: db}
}

// UpsertBatch writes answers keyed by (result, question, sub-index);
// a re-save of the same slot overwrites the previous payload.
func (r *userAnswerRepository) UpsertBatch(answers []model.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "test_result_id"},
			{Name: "test_question_id"},
			{Name: "sub_question_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"chosen_option_label", "answer_text", "audio_url", "updated_at",
		}),
	}).Create(&answers).Error
}

func (r *userAnswerRepository) SaveAll(answers []model.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Save(&answers).Error
}

func (r *userAnswerRepository) FindByTestResultID(testResultID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.db.
		Where("test_result_id = ?", testResultID).
		Order("test_question_id ASC, sub_question_index ASC").
		Find(&answers).Error
	return answers, err
}
