package dto

import "time"

// SavedAnswerDTO carries one in-progress answer, both when saving and
// when returning previously saved answers on session resume.
type SavedAnswerDTO struct {
	TestQuestionID    uint    `json:"test_question_id" binding:"required"`
	SubQuestionIndex  int     `json:"sub_question_index"`
	ChosenOptionLabel *string `json:"chosen_option_label,omitempty"`
	AnswerText        *string `json:"answer_text,omitempty"`
	AudioURL          *string `json:"audio_url,omitempty"`
}

// TestStartResponse is returned when a user starts (or resumes) a test.
type TestStartResponse struct {
	TestResultID uint                  `json:"test_result_id"`
	TestID       uint                  `json:"test_id"`
	Status       string                `json:"status"`
	StartedAt    time.Time             `json:"started_at"`
	Duration     int                   `json:"duration"` // test duration, minutes
	Resumed      bool                  `json:"resumed"`
	Questions    []TestQuestionViewDTO `json:"questions"`
	SavedAnswers []SavedAnswerDTO      `json:"saved_answers,omitempty"`
}

type SaveProgressRequest struct {
	TestResultID uint             `json:"test_result_id" binding:"required"`
	Answers      []SavedAnswerDTO `json:"answers" binding:"required,min=1,dive"`
}

// UserLRAnswerDTO is one multiple-choice answer in an LR submission.
type UserLRAnswerDTO struct {
	TestQuestionID    uint   `json:"test_question_id" binding:"required"`
	SubQuestionIndex  int    `json:"sub_question_index"`
	ChosenOptionLabel string `json:"chosen_option_label" binding:"required,oneof=A B C D"`
}

// SubmitLRTestRequest submits a Listening & Reading session for grading.
// An empty answer list grades from the answers saved during the session.
type SubmitLRTestRequest struct {
	TestResultID uint              `json:"test_result_id" binding:"required"`
	Duration     int               `json:"duration"` // minutes spent
	Answers      []UserLRAnswerDTO `json:"answers" binding:"omitempty,dive"`
}

// GeneralLRResultDTO is the graded outcome of an LR session.
type GeneralLRResultDTO struct {
	TestResultID     uint `json:"test_result_id"`
	TotalQuestions   int  `json:"total_questions"`
	CorrectCount     int  `json:"correct_count"`
	IncorrectCount   int  `json:"incorrect_count"`
	SkipCount        int  `json:"skip_count"`
	Duration         int  `json:"duration"`
	TotalScore       int  `json:"total_score"`
	ListeningCorrect int  `json:"listening_correct"`
	ListeningScore   int  `json:"listening_score"`
	ReadingCorrect   int  `json:"reading_correct"`
	ReadingScore     int  `json:"reading_score"`
}

// AnswerReviewDTO is one graded answer in an LR result detail.
type AnswerReviewDTO struct {
	TestQuestionID    uint    `json:"test_question_id"`
	SubQuestionIndex  int     `json:"sub_question_index"`
	ChosenOptionLabel *string `json:"chosen_option_label,omitempty"`
	CorrectLabel      string  `json:"correct_label"`
	IsCorrect         bool    `json:"is_correct"`
	Explanation       string  `json:"explanation,omitempty"`
}

// LRResultDetailDTO is the per-question review of a graded LR session.
type LRResultDetailDTO struct {
	Result  GeneralLRResultDTO `json:"result"`
	Answers []AnswerReviewDTO  `json:"answers"`
}

// TestHistoryItemDTO is one entry in a user's session history.
type TestHistoryItemDTO struct {
	TestResultID uint      `json:"test_result_id"`
	TestID       uint      `json:"test_id"`
	TestTitle    string    `json:"test_title"`
	Skill        string    `json:"skill"`
	Status       string    `json:"status"`
	TotalScore   *int      `json:"total_score,omitempty"`
	Duration     int       `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}
