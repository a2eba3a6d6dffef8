package model

import (
	"encoding/json"
	"fmt"
)

// OptionSnapshot is one answer choice frozen into a test.
type OptionSnapshot struct {
	Label     string `json:"label"` // "A".."D"
	Content   string `json:"content"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionSnapshot freezes a single bank question at assembly time.
type QuestionSnapshot struct {
	QuestionID  uint             `json:"question_id"`
	PartID      uint             `json:"part_id"`
	Content     string           `json:"content"`
	AudioURL    *string          `json:"audio_url,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	PartType    string           `json:"part_type,omitempty"`
	Options     []OptionSnapshot `json:"options,omitempty"`
}

// QuestionGroupSnapshot freezes a passage/audio group with its
// sub-questions in order.
type QuestionGroupSnapshot struct {
	QuestionGroupID uint               `json:"question_group_id"`
	PartID          uint               `json:"part_id"`
	Passage         string             `json:"passage,omitempty"`
	AudioURL        *string            `json:"audio_url,omitempty"`
	ImageURL        *string            `json:"image_url,omitempty"`
	Questions       []QuestionSnapshot `json:"questions"`
}

// CorrectLabel returns the label of the correct option.
func (q *QuestionSnapshot) CorrectLabel() (string, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Label, true
		}
	}
	return "", false
}

func (tq *TestQuestion) Snapshot() (*QuestionSnapshot, error) {
	if tq.IsQuestionGroup {
		return nil, fmt.Errorf("test question %d holds a group snapshot", tq.ID)
	}
	var snap QuestionSnapshot
	if err := json.Unmarshal([]byte(tq.SnapshotJSON), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode question snapshot: %w", err)
	}
	return &snap, nil
}

func (tq *TestQuestion) GroupSnapshot() (*QuestionGroupSnapshot, error) {
	if !tq.IsQuestionGroup {
		return nil, fmt.Errorf("test question %d holds a single-question snapshot", tq.ID)
	}
	var snap QuestionGroupSnapshot
	if err := json.Unmarshal([]byte(tq.SnapshotJSON), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode group snapshot: %w", err)
	}
	return &snap, nil
}

func (tq *TestQuestion) SetSnapshot(snap *QuestionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode question snapshot: %w", err)
	}
	tq.IsQuestionGroup = false
	tq.SnapshotJSON = string(data)
	return nil
}

func (tq *TestQuestion) SetGroupSnapshot(snap *QuestionGroupSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode group snapshot: %w", err)
	}
	tq.IsQuestionGroup = true
	tq.SnapshotJSON = string(data)
	return nil
}

// QuestionCount is the number of answerable questions in the slot:
// 1 for a single question, len(Questions) for a group.
func (tq *TestQuestion) QuestionCount() (int, error) {
	if !tq.IsQuestionGroup {
		return 1, nil
	}
	snap, err := tq.GroupSnapshot()
	if err != nil {
		return 0, err
	}
	return len(snap.Questions), nil
}
