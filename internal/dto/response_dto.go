package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// SkillProgressDTO breaks a skill out of the progress aggregates.
// Accuracy is the fraction of questions answered correctly, 0-1.
type SkillProgressDTO struct {
	AverageScore int     `json:"average_score"`
	HighestScore int     `json:"highest_score"`
	Accuracy     float64 `json:"accuracy"`
}

// ProgressStatisticsDTO aggregates a user's graded simulator sessions
// for one skill over an optional date range. Listening and Reading
// breakdowns are present only for LR progress.
type ProgressStatisticsDTO struct {
	Skill                  string            `json:"skill"`
	From                   *time.Time        `json:"from,omitempty"`
	To                     *time.Time        `json:"to,omitempty"`
	TotalTests             int               `json:"total_tests"`
	AverageScore           int               `json:"average_score"`
	HighestScore           int               `json:"highest_score"`
	AverageDurationMinutes float64           `json:"average_duration_minutes"`
	Listening              *SkillProgressDTO `json:"listening,omitempty"`
	Reading                *SkillProgressDTO `json:"reading,omitempty"`
}

// UserStatisticsDTO summarizes a user's graded sessions.
type UserStatisticsDTO struct {
	TestsTaken     int     `json:"tests_taken"`
	TestsGraded    int     `json:"tests_graded"`
	BestLRScore    *int    `json:"best_lr_score,omitempty"`
	AverageScore   float64 `json:"average_score"`
	MinutesSpent   int     `json:"minutes_spent"`
	FlashcardCount int     `json:"flashcard_count"`
}
