package model

import (
	"time"

	"gorm.io/gorm"
)

// TestQuestion is a frozen slot of an assembled test. The snapshot JSON
// carries everything needed to render and grade the slot, so later edits
// or deletions of the bank question never change a published test.
type TestQuestion struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TestID          uint           `json:"test_id" gorm:"not null;index"`
	PartID          uint           `json:"part_id" gorm:"not null;index"`
	OrderInTest     int            `json:"order_in_test" gorm:"not null"`
	IsQuestionGroup bool           `json:"is_question_group" gorm:"not null;default:false"`
	// Provenance only. Grading reads the snapshot, never these rows.
	OriginalQuestionID *uint          `json:"original_question_id,omitempty"`
	OriginalGroupID    *uint          `json:"original_group_id,omitempty"`
	SnapshotJSON       string         `json:"-" gorm:"type:text;not null"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
