package dto

import (
	"encoding/json"
	"time"
)

// AssessmentAnswerDTO is one Writing text or Speaking audio URL answer.
type AssessmentAnswerDTO struct {
	TestQuestionID   uint    `json:"test_question_id" binding:"required"`
	SubQuestionIndex int     `json:"sub_question_index"`
	AnswerText       *string `json:"answer_text,omitempty"`
	AudioFileURL     *string `json:"audio_file_url,omitempty"`
}

// BulkAssessmentPartDTO groups answers of one part type for scoring.
type BulkAssessmentPartDTO struct {
	PartType string                `json:"part_type" binding:"required,oneof=writing_sentence writing_email writing_essay read_aloud describe_picture respond_questions respond_with_info express_opinion"`
	Answers  []AssessmentAnswerDTO `json:"answers" binding:"required,dive"`
}

// SubmitBulkAssessmentRequest submits a Writing/Speaking session for
// AI scoring, all parts in one call.
type SubmitBulkAssessmentRequest struct {
	TestResultID uint                    `json:"test_result_id" binding:"required"`
	Duration     int                     `json:"duration"` // minutes spent
	Parts        []BulkAssessmentPartDTO `json:"parts" binding:"required,min=1,dive"`
}

// PartFeedbackDTO is the stored AI verdict for one answer.
type PartFeedbackDTO struct {
	PartType         string          `json:"part_type"`
	TestQuestionID   uint            `json:"test_question_id"`
	SubQuestionIndex int             `json:"sub_question_index"`
	Score            float64         `json:"score"` // raw 0-100
	DetailedScores   json.RawMessage `json:"detailed_scores,omitempty"`
	DetailedAnalysis json.RawMessage `json:"detailed_analysis,omitempty"`
	Recommendations  json.RawMessage `json:"recommendations,omitempty"`
	Transcription    *string         `json:"transcription,omitempty"`
	CorrectedText    *string         `json:"corrected_text,omitempty"`
}

// PartFailureDTO reports a part whose scoring call failed; the part is
// left unscored rather than recorded as zero.
type PartFailureDTO struct {
	PartType string `json:"part_type"`
	Reason   string `json:"reason"`
}

// SkillResultDTO aggregates raw part scores for one skill.
type SkillResultDTO struct {
	TotalScore     float64 `json:"total_score"` // mean raw 0-100 of scored parts
	CompletedParts int     `json:"completed_parts"`
	TotalParts     int     `json:"total_parts"`
	IsComplete     bool    `json:"is_complete"`
}

// ScorerStatusDTO is the health of one scoring service.
type ScorerStatusDTO struct {
	Name   string `json:"name"`
	Status string `json:"status"` // healthy | unhealthy
	Error  string `json:"error,omitempty"`
}

// ScorerHealthDTO reports the health of the AI scoring services.
type ScorerHealthDTO struct {
	OverallStatus string            `json:"overall_status"` // healthy | degraded
	CheckedAt     time.Time         `json:"checked_at"`
	Services      []ScorerStatusDTO `json:"services"`
}

type SubmitBulkAssessmentResponse struct {
	TestResultID   uint              `json:"test_result_id"`
	Status         string            `json:"status"`
	WritingResult  *SkillResultDTO   `json:"writing_result,omitempty"`
	SpeakingResult *SkillResultDTO   `json:"speaking_result,omitempty"`
	WritingScore   *int              `json:"writing_score,omitempty"`  // converted 0-200
	SpeakingScore  *int              `json:"speaking_score,omitempty"` // converted 0-200
	TotalScore     *int              `json:"total_score,omitempty"`
	Feedbacks      []PartFeedbackDTO `json:"feedbacks,omitempty"`
	Failures       []PartFailureDTO  `json:"failures,omitempty"`
}
