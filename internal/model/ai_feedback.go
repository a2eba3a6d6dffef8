package model

import "time"

// AIFeedback is one scoring-service verdict for a user answer.
// Rows are append-only; re-grading adds a new row and readers take the
// latest by CreatedAt.
type AIFeedback struct {
	ID                   uint      `gorm:"primarykey" json:"id"`
	UserAnswerID         uint      `json:"user_answer_id" gorm:"not null;index"`
	Score                float64   `json:"score" gorm:"not null"` // raw 0-100
	DetailedScoresJSON   string    `json:"detailed_scores_json,omitempty" gorm:"type:text"`
	DetailedAnalysisJSON string    `json:"detailed_analysis_json,omitempty" gorm:"type:text"`
	RecommendationsJSON  string    `json:"recommendations_json,omitempty" gorm:"type:text"`
	RawResponseJSON      string    `json:"-" gorm:"type:text"`
	Transcription        *string   `json:"transcription,omitempty" gorm:"type:text"`
	CorrectedText        *string   `json:"corrected_text,omitempty" gorm:"type:text"`
	CreatedAt            time.Time `json:"created_at"`
}
