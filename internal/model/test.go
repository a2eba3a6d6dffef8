package model

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Title        string         `json:"title" gorm:"not null"` // "TOEIC LR Simulator 2024 #1"
	Description  string         `json:"description,omitempty"`
	Skill        TestSkill      `json:"skill" gorm:"not null;index"`
	Type         TestType       `json:"type" gorm:"not null"`
	Status       TestStatus     `json:"status" gorm:"not null;default:'draft';index"`
	Duration     int            `json:"duration" gorm:"not null"` // minutes
	ParentTestID *uint          `json:"parent_test_id,omitempty" gorm:"index"`
	Version      int            `json:"version" gorm:"not null;default:1"`
	Questions    []TestQuestion `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
