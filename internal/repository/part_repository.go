package repository

import (
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type PartRepository interface {
	Create(part *model.Part) error
	FindByID(id uint) (*model.Part, error)
	FindAll() ([]model.Part, error)
	FindBySkill(skill model.QuestionSkill) ([]model.Part, error)
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) Create(part *model.Part) error {
	return r.db.Create(part).Error
}

func (r *partRepository) FindByID(id uint) (*model.Part, error) {
	var part model.Part
	if err := r.db.First(&part, id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindAll() ([]model.Part, error) {
	var parts []model.Part
	if err := r.db.Order("skill ASC, part_number ASC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *partRepository) FindBySkill(skill model.QuestionSkill) ([]model.Part, error) {
	var parts []model.Part
	if err := r.db.Where("skill = ?", skill).Order("part_number ASC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}
