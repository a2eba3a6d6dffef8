package model

import (
	"time"

	"gorm.io/gorm"
)

// Part is one of the fifteen fixed TOEIC parts (LR 1-7, Speaking 8-12
// numbered 1-5 within the skill, Writing 1-3 likewise). Seeded once,
// referenced by bank questions and snapshots.
type Part struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `json:"name" gorm:"not null"`
	PartNumber  int            `json:"part_number" gorm:"not null"`
	Skill       QuestionSkill  `json:"skill" gorm:"not null;index"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
