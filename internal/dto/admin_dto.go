package dto

// OptionCreateDTO is one answer choice supplied at assembly time.
type OptionCreateDTO struct {
	Label     string `json:"label" binding:"required"`
	Content   string `json:"content" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateDTO is inline question content for manual test assembly
// or for adding a question to the bank.
type QuestionCreateDTO struct {
	PartID      uint              `json:"part_id" binding:"required"`
	Content     string            `json:"content" binding:"required"`
	AudioURL    *string           `json:"audio_url"`
	ImageURL    *string           `json:"image_url"`
	Explanation string            `json:"explanation"`
	PartType    string            `json:"part_type"`
	Options     []OptionCreateDTO `json:"options" binding:"omitempty,dive"`
}

// QuestionGroupCreateDTO is a passage/audio group with its sub-questions.
type QuestionGroupCreateDTO struct {
	PartID    uint                `json:"part_id" binding:"required"`
	Passage   string              `json:"passage"`
	AudioURL  *string             `json:"audio_url"`
	ImageURL  *string             `json:"image_url"`
	Questions []QuestionCreateDTO `json:"questions" binding:"required,dive"`
}

// TestQuestionCreateDTO is one slot of a manually assembled test.
// Exactly one of Question or QuestionGroup must be set.
type TestQuestionCreateDTO struct {
	OrderInTest   int                     `json:"order_in_test" binding:"required,min=1"`
	Question      *QuestionCreateDTO      `json:"question,omitempty"`
	QuestionGroup *QuestionGroupCreateDTO `json:"question_group,omitempty"`
}

// TestCreateDTO assembles a test from inline content.
type TestCreateDTO struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	Skill       string                  `json:"skill" binding:"required,oneof=lr writing speaking four_skills"`
	Type        string                  `json:"type" binding:"required,oneof=simulator practice"`
	Duration    int                     `json:"duration" binding:"required,min=1"` // minutes
	Questions   []TestQuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// TestFromBankDTO assembles a test from existing bank question/group IDs,
// snapshotted in the listed order (questions first, then groups).
type TestFromBankDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Skill       string `json:"skill" binding:"required,oneof=lr writing speaking four_skills"`
	Type        string `json:"type" binding:"required,oneof=simulator practice"`
	Duration    int    `json:"duration" binding:"required,min=1"`
	QuestionIDs []uint `json:"question_ids"`
	GroupIDs    []uint `json:"group_ids"`
}

// PartPickDTO requests a number of random bank questions from one part.
type PartPickDTO struct {
	PartID        uint `json:"part_id" binding:"required"`
	QuestionCount int  `json:"question_count" binding:"required,min=1"`
}

// TestRandomDTO assembles a test by random draw from the bank.
type TestRandomDTO struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Skill       string        `json:"skill" binding:"required,oneof=lr writing speaking four_skills"`
	Type        string        `json:"type" binding:"required,oneof=simulator practice"`
	Duration    int           `json:"duration" binding:"required,min=1"`
	Parts       []PartPickDTO `json:"parts" binding:"required,min=1,dive"`
}
