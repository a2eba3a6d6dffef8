package repository

import (
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	Create(test *model.Test) error
	Update(test *model.Test) error
	UpdateStatus(id uint, status model.TestStatus) error
	FindByID(id uint) (*model.Test, error)
	FindByIDWithQuestions(id uint) (*model.Test, error)
	FindAllWithQuestionCount(skill model.TestSkill, testType model.TestType, status model.TestStatus) ([]struct {
		model.Test
		QuestionCount int
	}, error)
	FindVersions(parentID uint) ([]model.Test, error)
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(test *model.Test) error {
	// GORM creates the test and its question snapshots in one transaction,
	// so assembly is all-or-nothing.
	return r.db.Create(test).Error
}

func (r *testRepository) Update(test *model.Test) error {
	return r.db.Save(test).Error
}

func (r *testRepository) UpdateStatus(id uint, status model.TestStatus) error {
	res := r.db.Model(&model.Test{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("test_questions.order_in_test ASC")
	}).First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindAllWithQuestionCount(skill model.TestSkill, testType model.TestType, status model.TestStatus) ([]struct {
	model.Test
	QuestionCount int
}, error) {
	var results []struct {
		model.Test
		QuestionCount int
	}
	query := r.db.Model(&model.Test{}).
		Select("tests.*, (SELECT COUNT(*) FROM test_questions WHERE test_questions.test_id = tests.id AND test_questions.deleted_at IS NULL) as question_count").
		Where("tests.deleted_at IS NULL")
	if skill != "" {
		query = query.Where("tests.skill = ?", skill)
	}
	if testType != "" {
		query = query.Where("tests.type = ?", testType)
	}
	if status != "" {
		query = query.Where("tests.status = ?", status)
	}
	err := query.Order("tests.created_at DESC").Scan(&results).Error
	return results, err
}

func (r *testRepository) FindVersions(parentID uint) ([]model.Test, error) {
	var tests []model.Test
	err := r.db.
		Where("id = ? OR parent_test_id = ?", parentID, parentID).
		Order("version ASC").
		Find(&tests).Error
	return tests, err
}
