package repository

import (
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	CreateGroup(group *model.QuestionGroup) error
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	FindGroupByID(id uint) (*model.QuestionGroup, error)
	FindGroupByIDs(ids []uint) ([]model.QuestionGroup, error)
	FindByPart(partID uint) ([]model.Question, error)
	FindRandomByPart(partID uint, limit int) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) CreateGroup(group *model.QuestionGroup) error {
	return r.db.Create(group).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Options").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.Preload("Options").Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindGroupByID(id uint) (*model.QuestionGroup, error) {
	var group model.QuestionGroup
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_in_group ASC")
	}).Preload("Questions.Options").First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *questionRepository) FindGroupByIDs(ids []uint) ([]model.QuestionGroup, error) {
	var groups []model.QuestionGroup
	if len(ids) == 0 {
		return groups, nil
	}
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_in_group ASC")
	}).Preload("Questions.Options").Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

func (r *questionRepository) FindByPart(partID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Preload("Options").Where("part_id = ?", partID).Order("created_at DESC").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindRandomByPart(partID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Preload("Options").
		Where("part_id = ? AND group_id IS NULL", partID).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}
