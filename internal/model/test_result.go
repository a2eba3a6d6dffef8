package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestResult is one test-taking session. CreatedAt is the session start;
// a session expires once now - CreatedAt exceeds the test duration plus
// the grace period.
type TestResult struct {
	ID          uint                 `gorm:"primarykey" json:"id"`
	TestID      uint                 `json:"test_id" gorm:"not null;index"`
	Test        Test                 `json:"test,omitempty" gorm:"foreignKey:TestID"`
	UserID      uuid.UUID            `json:"user_id" gorm:"type:uuid;not null;index"`
	Status      TestResultStatus     `json:"status" gorm:"not null;default:'in_progress';index"`
	Duration    int                  `json:"duration"` // minutes actually spent
	TotalScore  *int                 `json:"total_score,omitempty"`
	SkillScores []UserTestSkillScore `json:"skill_scores,omitempty" gorm:"foreignKey:TestResultID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Answers     []UserAnswer         `json:"answers,omitempty" gorm:"foreignKey:TestResultID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	DeletedAt   gorm.DeletedAt       `gorm:"index" json:"-"`
}

// IsExpired reports whether the session has outlived its test duration
// plus the grace period at the given instant.
func (tr *TestResult) IsExpired(now time.Time, duration time.Duration, grace time.Duration) bool {
	return now.Sub(tr.CreatedAt) > duration+grace
}

// UserTestSkillScore is one converted skill score (e.g. listening 5-495,
// writing 0-200) attached to a graded session. The raw counts are
// persisted with the score so a graded session can be read back without
// regrading its answers.
type UserTestSkillScore struct {
	ID             uint          `gorm:"primarykey" json:"id"`
	TestResultID   uint          `json:"test_result_id" gorm:"not null;index"`
	Skill          QuestionSkill `json:"skill" gorm:"not null"`
	Score          int           `json:"score" gorm:"not null"`
	CorrectCount   int           `json:"correct_count"`
	TotalQuestions int           `json:"total_questions"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
