package dto

import "time"

type CreateFlashcardRequest struct {
	SetID         *uint  `json:"set_id,omitempty"`
	Word          string `json:"word" binding:"required"`
	Meaning       string `json:"meaning" binding:"required"`
	Pronunciation string `json:"pronunciation"`
}

type FlashcardResponse struct {
	ID              uint      `json:"id"`
	SetID           *uint     `json:"set_id,omitempty"`
	Word            string    `json:"word"`
	Meaning         string    `json:"meaning"`
	Pronunciation   string    `json:"pronunciation,omitempty"`
	ExampleSentence string    `json:"example_sentence,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateFlashcardSetRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Language    string `json:"language" binding:"omitempty,max=50"`
	IsPublic    bool   `json:"is_public"`
}

type UpdateFlashcardSetRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Language    string `json:"language" binding:"omitempty,max=50"`
	IsPublic    bool   `json:"is_public"`
}

type FlashcardSetResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language"`
	IsPublic    bool      `json:"is_public"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// FlashcardSetDetailResponse is one set with its cards.
type FlashcardSetDetailResponse struct {
	FlashcardSetResponse
	Flashcards []FlashcardResponse `json:"flashcards"`
}

// AddFlashcardFromTestRequest captures a word highlighted during a test
// session. Exactly one of set_id and new_set picks the destination set.
type AddFlashcardFromTestRequest struct {
	SetID         *uint                      `json:"set_id,omitempty"`
	NewSet        *CreateFlashcardSetRequest `json:"new_set,omitempty"`
	Word          string                     `json:"word" binding:"required,max=500"`
	Meaning       string                     `json:"meaning"`
	Pronunciation string                     `json:"pronunciation"`
}
