package service

import (
	"fmt"

	"github.com/lshigami/ToeicGenius/internal/model"
)

const (
	lrQuestionTotal       = 200
	speakingQuestionTotal = 11
	writingQuestionTotal  = 8

	minGroupSize = 2
	maxGroupSize = 5
)

// TestValidator checks the structure of an assembled test before it is
// persisted. It works on snapshots only, so the same rules apply to
// manual, from-bank and random assembly.
type TestValidator interface {
	ValidateTestStructure(skill model.TestSkill, questions []model.TestQuestion, partsByID map[uint]model.Part) error
}

type testValidator struct{}

func NewTestValidator() TestValidator {
	return &testValidator{}
}

func (v *testValidator) ValidateTestStructure(skill model.TestSkill, questions []model.TestQuestion, partsByID map[uint]model.Part) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: a test must contain at least one question", ErrValidation)
	}

	counts := map[model.QuestionSkill]int{}
	orderSeen := map[int]bool{}

	for i := range questions {
		tq := &questions[i]
		if orderSeen[tq.OrderInTest] {
			return fmt.Errorf("%w: duplicate order_in_test %d", ErrValidation, tq.OrderInTest)
		}
		orderSeen[tq.OrderInTest] = true

		part, ok := partsByID[tq.PartID]
		if !ok {
			return fmt.Errorf("%w: unknown part %d at order %d", ErrValidation, tq.PartID, tq.OrderInTest)
		}

		if tq.IsQuestionGroup {
			group, err := tq.GroupSnapshot()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			if len(group.Questions) < minGroupSize || len(group.Questions) > maxGroupSize {
				return fmt.Errorf("%w: question group at order %d must contain %d to %d questions, got %d",
					ErrValidation, tq.OrderInTest, minGroupSize, maxGroupSize, len(group.Questions))
			}
			for j := range group.Questions {
				if err := v.validateQuestion(&group.Questions[j], part); err != nil {
					return err
				}
			}
			counts[part.Skill] += len(group.Questions)
		} else {
			snap, err := tq.Snapshot()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			if err := v.validateQuestion(snap, part); err != nil {
				return err
			}
			counts[part.Skill]++
		}
	}

	return v.validateTotals(skill, counts)
}

// validateQuestion enforces option rules per part. LR part 2 uses three
// options, every other LR part four; Speaking and Writing questions carry
// no options at all.
func (v *testValidator) validateQuestion(q *model.QuestionSnapshot, part model.Part) error {
	switch part.Skill {
	case model.QuestionSkillListening, model.QuestionSkillReading:
		expected := 4
		if part.Skill == model.QuestionSkillListening && part.PartNumber == 2 {
			expected = 3
		}
		if len(q.Options) != expected {
			return fmt.Errorf("%w: question %d in part %d must have exactly %d options, got %d",
				ErrValidation, q.QuestionID, part.PartNumber, expected, len(q.Options))
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d in part %d must have exactly one correct option, got %d",
				ErrValidation, q.QuestionID, part.PartNumber, correct)
		}
	case model.QuestionSkillSpeaking, model.QuestionSkillWriting:
		if len(q.Options) != 0 {
			return fmt.Errorf("%w: question %d in part %d must not have options",
				ErrValidation, q.QuestionID, part.PartNumber)
		}
	default:
		return fmt.Errorf("%w: part %d has unsupported skill %q", ErrValidation, part.ID, part.Skill)
	}
	return nil
}

func (v *testValidator) validateTotals(skill model.TestSkill, counts map[model.QuestionSkill]int) error {
	lr := counts[model.QuestionSkillListening] + counts[model.QuestionSkillReading]
	speaking := counts[model.QuestionSkillSpeaking]
	writing := counts[model.QuestionSkillWriting]

	switch skill {
	case model.TestSkillLR:
		if speaking+writing > 0 {
			return fmt.Errorf("%w: an lr test must not contain speaking or writing questions", ErrValidation)
		}
		if lr != lrQuestionTotal {
			return fmt.Errorf("%w: an lr test must contain exactly %d questions, got %d", ErrValidation, lrQuestionTotal, lr)
		}
	case model.TestSkillSpeaking:
		if speaking != speakingQuestionTotal || lr+writing > 0 {
			return fmt.Errorf("%w: a speaking test must contain exactly %d speaking questions, got %d", ErrValidation, speakingQuestionTotal, speaking)
		}
	case model.TestSkillWriting:
		if writing != writingQuestionTotal || lr+speaking > 0 {
			return fmt.Errorf("%w: a writing test must contain exactly %d writing questions, got %d", ErrValidation, writingQuestionTotal, writing)
		}
	case model.TestSkillFourSkills:
		if lr != lrQuestionTotal {
			return fmt.Errorf("%w: a four_skills test must contain exactly %d lr questions, got %d", ErrValidation, lrQuestionTotal, lr)
		}
		if speaking != speakingQuestionTotal {
			return fmt.Errorf("%w: a four_skills test must contain exactly %d speaking questions, got %d", ErrValidation, speakingQuestionTotal, speaking)
		}
		if writing != writingQuestionTotal {
			return fmt.Errorf("%w: a four_skills test must contain exactly %d writing questions, got %d", ErrValidation, writingQuestionTotal, writing)
		}
	default:
		return fmt.Errorf("%w: unsupported test skill %q", ErrValidation, skill)
	}
	return nil
}
