package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionSnapshotRoundTrip(t *testing.T) {
	audio := "https://cdn.example.com/q1.mp3"
	snap := QuestionSnapshot{
		QuestionID:  42,
		PartID:      1,
		Content:     "What is shown in the picture?",
		AudioURL:    &audio,
		Explanation: "The man is holding a ladder.",
		Options: []OptionSnapshot{
			{Label: "A", Content: "A man on a ladder", IsCorrect: true},
			{Label: "B", Content: "A man in a car"},
			{Label: "C", Content: "An empty room"},
			{Label: "D", Content: "A crowded street"},
		},
	}

	var tq TestQuestion
	require.NoError(t, tq.SetSnapshot(&snap))
	assert.False(t, tq.IsQuestionGroup)

	decoded, err := tq.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, &snap, decoded)

	count, err := tq.QuestionCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGroupSnapshotRoundTrip(t *testing.T) {
	group := QuestionGroupSnapshot{
		QuestionGroupID: 7,
		PartID:          7,
		Passage:         "Questions 176-180 refer to the following e-mail.",
		Questions: []QuestionSnapshot{
			{QuestionID: 176, PartID: 7, Content: "Why was the e-mail sent?", Options: []OptionSnapshot{
				{Label: "A", Content: "To confirm an order", IsCorrect: true},
				{Label: "B", Content: "To cancel a meeting"},
				{Label: "C", Content: "To request a refund"},
				{Label: "D", Content: "To schedule an interview"},
			}},
			{QuestionID: 177, PartID: 7, Content: "What is suggested about the sender?", Options: []OptionSnapshot{
				{Label: "A", Content: "She is a manager"},
				{Label: "B", Content: "She works remotely", IsCorrect: true},
				{Label: "C", Content: "She is a new employee"},
				{Label: "D", Content: "She is on vacation"},
			}},
		},
	}

	var tq TestQuestion
	require.NoError(t, tq.SetGroupSnapshot(&group))
	assert.True(t, tq.IsQuestionGroup)

	decoded, err := tq.GroupSnapshot()
	require.NoError(t, err)
	assert.Equal(t, &group, decoded)

	count, err := tq.QuestionCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSnapshotKindMismatch(t *testing.T) {
	var single TestQuestion
	require.NoError(t, single.SetSnapshot(&QuestionSnapshot{QuestionID: 1}))
	_, err := single.GroupSnapshot()
	assert.Error(t, err)

	var grouped TestQuestion
	require.NoError(t, grouped.SetGroupSnapshot(&QuestionGroupSnapshot{QuestionGroupID: 1}))
	_, err = grouped.Snapshot()
	assert.Error(t, err)
}

func TestCorrectLabel(t *testing.T) {
	q := QuestionSnapshot{Options: []OptionSnapshot{
		{Label: "A", Content: "a"},
		{Label: "B", Content: "b", IsCorrect: true},
		{Label: "C", Content: "c"},
	}}
	label, ok := q.CorrectLabel()
	assert.True(t, ok)
	assert.Equal(t, "B", label)

	// Writing and Speaking snapshots have no options at all.
	empty := QuestionSnapshot{}
	label, ok = empty.CorrectLabel()
	assert.False(t, ok)
	assert.Empty(t, label)
}
