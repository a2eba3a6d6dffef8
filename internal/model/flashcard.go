package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashcardSet is a user's named collection of flashcards.
type FlashcardSet struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Language    string         `json:"language" gorm:"default:'en-US'"`
	IsPublic    bool           `json:"is_public" gorm:"default:false"`
	Flashcards  []Flashcard    `json:"flashcards,omitempty" gorm:"foreignKey:SetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Flashcard struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	SetID           *uint          `json:"set_id,omitempty" gorm:"index"`
	Word            string         `json:"word" gorm:"not null"`
	Meaning         string         `json:"meaning" gorm:"type:text;not null"`
	Pronunciation   string         `json:"pronunciation,omitempty"`
	ExampleSentence string         `json:"example_sentence,omitempty" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
