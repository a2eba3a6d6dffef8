package dto

import "time"

// OptionViewDTO is an answer choice rendered to a test taker.
// Correctness is never exposed while a session is in progress.
type OptionViewDTO struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// QuestionViewDTO renders one answerable question from a snapshot.
type QuestionViewDTO struct {
	SubQuestionIndex int             `json:"sub_question_index"`
	PartID           uint            `json:"part_id"`
	Content          string          `json:"content"`
	AudioURL         *string         `json:"audio_url,omitempty"`
	ImageURL         *string         `json:"image_url,omitempty"`
	PartType         string          `json:"part_type,omitempty"`
	Options          []OptionViewDTO `json:"options,omitempty"`
}

// TestQuestionViewDTO renders one test slot: a single question or a
// group with its passage/audio and sub-questions.
type TestQuestionViewDTO struct {
	TestQuestionID  uint              `json:"test_question_id"`
	OrderInTest     int               `json:"order_in_test"`
	PartID          uint              `json:"part_id"`
	IsQuestionGroup bool              `json:"is_question_group"`
	Passage         string            `json:"passage,omitempty"`
	AudioURL        *string           `json:"audio_url,omitempty"`
	ImageURL        *string           `json:"image_url,omitempty"`
	Questions       []QuestionViewDTO `json:"questions"`
}

// TestSummaryDTO is used for listing tests.
type TestSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Skill         string    `json:"skill"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Duration      int       `json:"duration"`
	Version       int       `json:"version"`
	ParentTestID  *uint     `json:"parent_test_id,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// TestDetailDTO is the full rendered test.
type TestDetailDTO struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Skill       string                `json:"skill"`
	Type        string                `json:"type"`
	Status      string                `json:"status"`
	Duration    int                   `json:"duration"`
	Version     int                   `json:"version"`
	Questions   []TestQuestionViewDTO `json:"questions"`
	CreatedAt   time.Time             `json:"created_at"`
}
