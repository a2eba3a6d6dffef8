package model

import (
	"time"

	"gorm.io/gorm"
)

// UserAnswer is the answer to one question slot of a session.
// SubQuestionIndex addresses a question inside a group snapshot and is
// zero for single questions; the composite unique index makes saves
// upsert in place (last write wins).
type UserAnswer struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	TestResultID     uint   `json:"test_result_id" gorm:"not null;uniqueIndex:idx_answer_slot"`
	TestQuestionID   uint   `json:"test_question_id" gorm:"not null;uniqueIndex:idx_answer_slot"`
	SubQuestionIndex int    `json:"sub_question_index" gorm:"not null;default:0;uniqueIndex:idx_answer_slot"`
	// Exactly one of the three payloads is set, by skill.
	ChosenOptionLabel *string        `json:"chosen_option_label,omitempty"`
	AnswerText        *string        `json:"answer_text,omitempty" gorm:"type:text"`
	AudioURL          *string        `json:"audio_url,omitempty"`
	IsCorrect         *bool          `json:"is_correct,omitempty"`
	Feedbacks         []AIFeedback   `json:"feedbacks,omitempty" gorm:"foreignKey:UserAnswerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
