package model

import (
	"time"

	"gorm.io/gorm"
)

// Question is a bank question. Tests never reference it directly at
// grading time; assembly copies it into a snapshot.
type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	PartID       uint           `json:"part_id" gorm:"not null;index"`
	Part         Part           `json:"part,omitempty" gorm:"foreignKey:PartID"`
	GroupID      *uint          `json:"group_id,omitempty" gorm:"index"`
	Content      string         `json:"content" gorm:"type:text;not null"`
	AudioURL     *string        `json:"audio_url,omitempty"`
	ImageURL     *string        `json:"image_url,omitempty"`
	Explanation  string         `json:"explanation,omitempty" gorm:"type:text"`
	PartType     string         `json:"part_type,omitempty"` // e.g. "writing_essay", "read_aloud"
	OrderInGroup int            `json:"order_in_group,omitempty"`
	Options      []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type Option struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Label      string         `json:"label" gorm:"not null"` // "A".."D"
	Content    string         `json:"content" gorm:"type:text;not null"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuestionGroup bundles bank questions that share a passage or audio.
type QuestionGroup struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	PartID    uint           `json:"part_id" gorm:"not null;index"`
	Passage   string         `json:"passage,omitempty" gorm:"type:text"`
	AudioURL  *string        `json:"audio_url,omitempty"`
	ImageURL  *string        `json:"image_url,omitempty"`
	Questions []Question     `json:"questions,omitempty" gorm:"foreignKey:GroupID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
