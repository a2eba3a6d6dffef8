package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

type TestResultRepository interface {
	Create(result *model.TestResult) error
	Save(result *model.TestResult) error
	FindByID(id uint) (*model.TestResult, error)
	FindByIDWithDetails(id uint) (*model.TestResult, error)
	FindActiveByUserAndTest(userID uuid.UUID, testID uint) (*model.TestResult, error)
	FindHistoryByUser(userID uuid.UUID) ([]model.TestResult, error)
	FindSimulatorResultsByUser(userID uuid.UUID, from, to *time.Time) ([]model.TestResult, error)
	FindExpiredInProgress(now time.Time, grace time.Duration) ([]model.TestResult, error)
	ClaimForGrading(id uint, from, to model.TestResultStatus) (bool, error)
}

type testResultRepository struct {
	db *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) Create(result *model.TestResult) error {
	return r.db.Create(result).Error
}

func (r *testResultRepository) Save(result *model.TestResult) error {
	return r.db.Save(result).Error
}

func (r *testResultRepository) FindByID(id uint) (*model.TestResult, error) {
	var result model.TestResult
	if err := r.db.First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByIDWithDetails(id uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.
		Preload("Test").
		Preload("Test.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_questions.order_in_test ASC")
		}).
		Preload("Answers").
		Preload("Answers.Feedbacks", func(db *gorm.DB) *gorm.DB {
			return db.Order("ai_feedbacks.created_at DESC")
		}).
		Preload("SkillScores").
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindActiveByUserAndTest(userID uuid.UUID, testID uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.TestResultInProgress).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindHistoryByUser(userID uuid.UUID) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.db.
		Preload("Test").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}

// FindSimulatorResultsByUser returns the user's simulator sessions with
// their skill scores, optionally restricted to a creation date range.
func (r *testResultRepository) FindSimulatorResultsByUser(userID uuid.UUID, from, to *time.Time) ([]model.TestResult, error) {
	var results []model.TestResult
	query := r.db.
		Preload("SkillScores").
		Joins("Test").
		Where("test_results.user_id = ?", userID).
		Where("Test.type = ?", model.TestTypeSimulator)
	if from != nil {
		query = query.Where("test_results.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("test_results.created_at <= ?", *to)
	}
	err := query.Order("test_results.created_at ASC").Find(&results).Error
	return results, err
}

// FindExpiredInProgress loads every in-progress session with its test
// and keeps the ones past duration plus grace. The in-progress set is
// small, so the filter runs in memory where the clock math stays in one
// place.
func (r *testResultRepository) FindExpiredInProgress(now time.Time, grace time.Duration) ([]model.TestResult, error) {
	var candidates []model.TestResult
	err := r.db.
		Preload("Test").
		Where("status = ?", model.TestResultInProgress).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	var expired []model.TestResult
	for _, c := range candidates {
		duration := time.Duration(c.Test.Duration) * time.Minute
		if c.IsExpired(now, duration, grace) {
			expired = append(expired, c)
		}
	}
	return expired, nil
}

// ClaimForGrading flips the session status with a conditional update.
// Exactly one concurrent caller wins; the others see false and must
// treat the session as already claimed.
func (r *testResultRepository) ClaimForGrading(id uint, from, to model.TestResultStatus) (bool, error) {
	res := r.db.Model(&model.TestResult{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
