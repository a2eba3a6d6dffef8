package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AssessmentService grades Writing and Speaking sessions through the
// external scoring services and aggregates the raw part scores into
// TOEIC skill scores.
type AssessmentService interface {
	SubmitBulkAssessment(ctx context.Context, userID uuid.UUID, req dto.SubmitBulkAssessmentRequest) (*dto.SubmitBulkAssessmentResponse, error)
	// ScorerHealth probes both scoring services. A failing probe is
	// reported per service; the aggregate degrades rather than errors.
	ScorerHealth(ctx context.Context) *dto.ScorerHealthDTO
}

type assessmentService struct {
	resultRepo   repository.TestResultRepository
	answerRepo   repository.UserAnswerRepository
	feedbackRepo repository.AIFeedbackRepository
	writing      WritingScorerClient
	speaking     SpeakingScorerClient
	converter    ScoreConverterService
}

func NewAssessmentService(
	resultRepo repository.TestResultRepository,
	answerRepo repository.UserAnswerRepository,
	feedbackRepo repository.AIFeedbackRepository,
	writing WritingScorerClient,
	speaking SpeakingScorerClient,
	converter ScoreConverterService,
) AssessmentService {
	return &assessmentService{
		resultRepo:   resultRepo,
		answerRepo:   answerRepo,
		feedbackRepo: feedbackRepo,
		writing:      writing,
		speaking:     speaking,
		converter:    converter,
	}
}

// partScore carries the raw outcome of one scored part.
type partScore struct {
	partType string
	score    float64
}

func (s *assessmentService) SubmitBulkAssessment(ctx context.Context, userID uuid.UUID, req dto.SubmitBulkAssessmentRequest) (*dto.SubmitBulkAssessmentResponse, error) {
	result, err := s.resultRepo.FindByIDWithDetails(req.TestResultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test session %d", ErrNotFound, req.TestResultID)
		}
		return nil, fmt.Errorf("error fetching test session: %w", err)
	}
	if result.UserID != userID {
		return nil, fmt.Errorf("%w: test session %d", ErrNotFound, req.TestResultID)
	}
	switch result.Test.Skill {
	case model.TestSkillWriting, model.TestSkillSpeaking, model.TestSkillFourSkills:
	default:
		return nil, fmt.Errorf("%w: test session %d is not a writing or speaking session", ErrValidation, req.TestResultID)
	}
	if result.Status == model.TestResultGraded {
		return nil, ErrAlreadyGraded
	}

	prompts, err := buildPromptIndex(result.Test.Questions)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitBulkAssessmentResponse{TestResultID: result.ID}
	var scoredParts []partScore
	var answersToPersist []model.UserAnswer
	var feedbackByAnswer []pendingFeedback

	for _, part := range req.Parts {
		scores, persisted, feedbacks, partErr := s.scorePart(ctx, result.ID, part, prompts)
		if partErr != nil {
			// A failed scoring call leaves the part unscored. It is
			// never recorded as a zero.
			log.Warn().Err(partErr).Str("partType", part.PartType).Uint("testResultID", result.ID).Msg("Part scoring failed")
			resp.Failures = append(resp.Failures, dto.PartFailureDTO{PartType: part.PartType, Reason: partErr.Error()})
			continue
		}
		if scores == nil {
			// Every answer in the part was empty; skipped entirely.
			continue
		}
		scoredParts = append(scoredParts, *scores)
		answersToPersist = append(answersToPersist, persisted...)
		feedbackByAnswer = append(feedbackByAnswer, feedbacks...)
	}

	if len(scoredParts) == 0 {
		// Nothing was scored; the session stays in progress so the user
		// can resubmit once the scoring services recover.
		resp.Status = string(result.Status)
		return resp, nil
	}

	if err := s.answerRepo.UpsertBatch(answersToPersist); err != nil {
		return nil, fmt.Errorf("error persisting assessed answers: %w", err)
	}
	savedAnswers, err := s.answerRepo.FindByTestResultID(result.ID)
	if err != nil {
		return nil, fmt.Errorf("error reloading assessed answers: %w", err)
	}
	answerIDs := make(map[answerSlot]uint, len(savedAnswers))
	for _, a := range savedAnswers {
		answerIDs[answerSlot{a.TestQuestionID, a.SubQuestionIndex}] = a.ID
	}
	var feedbackRows []model.AIFeedback
	for _, pf := range feedbackByAnswer {
		row := pf.feedback
		row.UserAnswerID = answerIDs[pf.slot]
		if row.UserAnswerID == 0 {
			log.Warn().Uint("testQuestionID", pf.slot.testQuestionID).Msg("No persisted answer for feedback row, skipping")
			continue
		}
		feedbackRows = append(feedbackRows, row)
		resp.Feedbacks = append(resp.Feedbacks, pf.dto)
	}
	if err := s.feedbackRepo.CreateBatch(feedbackRows); err != nil {
		return nil, fmt.Errorf("error persisting feedback: %w", err)
	}

	writingResult := aggregateSkillResult(scoredParts, true)
	speakingResult := aggregateSkillResult(scoredParts, false)

	var skillScores []model.UserTestSkillScore
	var totalScore int
	if writingResult != nil {
		converted, err := s.converter.ConvertWritingScore(writingResult.TotalScore)
		if err != nil {
			return nil, fmt.Errorf("error converting writing score: %w", err)
		}
		resp.WritingResult = writingResult
		resp.WritingScore = &converted
		totalScore += converted
		skillScores = append(skillScores, model.UserTestSkillScore{
			TestResultID: result.ID, Skill: model.QuestionSkillWriting, Score: converted,
		})
	}
	if speakingResult != nil {
		converted, err := s.converter.ConvertSpeakingScore(speakingResult.TotalScore)
		if err != nil {
			return nil, fmt.Errorf("error converting speaking score: %w", err)
		}
		resp.SpeakingResult = speakingResult
		resp.SpeakingScore = &converted
		totalScore += converted
		skillScores = append(skillScores, model.UserTestSkillScore{
			TestResultID: result.ID, Skill: model.QuestionSkillSpeaking, Score: converted,
		})
	}

	claimed, err := s.resultRepo.ClaimForGrading(result.ID, result.Status, model.TestResultGraded)
	if err != nil {
		return nil, fmt.Errorf("error claiming session for grading: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyGraded
	}

	duration := req.Duration
	if duration <= 0 {
		duration = int(time.Since(result.CreatedAt).Minutes())
	}
	result.Status = model.TestResultGraded
	result.Duration = duration
	result.TotalScore = &totalScore
	result.SkillScores = skillScores
	result.Answers = nil
	if err := s.resultRepo.Save(result); err != nil {
		return nil, fmt.Errorf("error saving graded session: %w", err)
	}
	log.Info().Uint("testResultID", result.ID).Int("totalScore", totalScore).Int("scoredParts", len(scoredParts)).Msg("Assessment session graded")

	resp.Status = string(model.TestResultGraded)
	resp.TotalScore = &totalScore
	return resp, nil
}

func (s *assessmentService) ScorerHealth(ctx context.Context) *dto.ScorerHealthDTO {
	health := &dto.ScorerHealthDTO{OverallStatus: "healthy", CheckedAt: time.Now().UTC()}
	checks := []struct {
		name  string
		probe func(context.Context) error
	}{
		{"writing_api", s.writing.CheckHealth},
		{"speaking_api", s.speaking.CheckHealth},
	}
	for _, c := range checks {
		status := dto.ScorerStatusDTO{Name: c.name, Status: "healthy"}
		if err := c.probe(ctx); err != nil {
			log.Warn().Err(err).Str("service", c.name).Msg("Scoring service health check failed")
			status.Status = "unhealthy"
			status.Error = err.Error()
			health.OverallStatus = "degraded"
		}
		health.Services = append(health.Services, status)
	}
	return health
}

type pendingFeedback struct {
	slot     answerSlot
	feedback model.AIFeedback
	dto      dto.PartFeedbackDTO
}

// scorePart scores every non-empty answer of one part. It returns a nil
// partScore when all answers were empty, and an error when any scoring
// call failed, which voids the whole part.
func (s *assessmentService) scorePart(ctx context.Context, testResultID uint, part dto.BulkAssessmentPartDTO, prompts map[answerSlot]string) (*partScore, []model.UserAnswer, []pendingFeedback, error) {
	var sum float64
	var scored int
	var persisted []model.UserAnswer
	var feedbacks []pendingFeedback

	for _, answer := range part.Answers {
		slot := answerSlot{answer.TestQuestionID, answer.SubQuestionIndex}
		prompt, ok := prompts[slot]
		if !ok {
			return nil, nil, nil, fmt.Errorf("question %d is not part of this test", answer.TestQuestionID)
		}

		var outcome *ScoreOutcome
		var err error
		if isWritingPartType(part.PartType) {
			if answer.AnswerText == nil || strings.TrimSpace(*answer.AnswerText) == "" {
				continue
			}
			outcome, err = s.writing.ScoreText(ctx, part.PartType, prompt, *answer.AnswerText)
		} else {
			if answer.AudioFileURL == nil || *answer.AudioFileURL == "" {
				continue
			}
			outcome, err = s.speaking.ScoreAudio(ctx, part.PartType, prompt, *answer.AudioFileURL)
		}
		if err != nil {
			return nil, nil, nil, err
		}

		sum += outcome.OverallScore
		scored++
		persisted = append(persisted, model.UserAnswer{
			TestResultID:     testResultID,
			TestQuestionID:   answer.TestQuestionID,
			SubQuestionIndex: answer.SubQuestionIndex,
			AnswerText:       answer.AnswerText,
			AudioURL:         answer.AudioFileURL,
		})
		feedbacks = append(feedbacks, pendingFeedback{
			slot: slot,
			feedback: model.AIFeedback{
				Score:                outcome.OverallScore,
				DetailedScoresJSON:   string(outcome.DetailedScores),
				DetailedAnalysisJSON: string(outcome.DetailedAnalysis),
				RecommendationsJSON:  string(outcome.Recommendations),
				RawResponseJSON:      string(outcome.Raw),
				Transcription:        outcome.Transcription,
				CorrectedText:        outcome.CorrectedText,
			},
			dto: dto.PartFeedbackDTO{
				PartType:         part.PartType,
				TestQuestionID:   answer.TestQuestionID,
				SubQuestionIndex: answer.SubQuestionIndex,
				Score:            outcome.OverallScore,
				DetailedScores:   outcome.DetailedScores,
				DetailedAnalysis: outcome.DetailedAnalysis,
				Recommendations:  outcome.Recommendations,
				Transcription:    outcome.Transcription,
				CorrectedText:    outcome.CorrectedText,
			},
		})
	}

	if scored == 0 {
		return nil, nil, nil, nil
	}
	return &partScore{partType: part.PartType, score: sum / float64(scored)}, persisted, feedbacks, nil
}

// aggregateSkillResult averages the raw part scores of one skill.
// TotalScore stays on the raw 0-100 scale; conversion to the TOEIC
// 0-200 scale happens once, after averaging.
func aggregateSkillResult(parts []partScore, wantWriting bool) *dto.SkillResultDTO {
	seen := map[string]bool{}
	var sum float64
	var count int
	for _, p := range parts {
		if isWritingPartType(p.partType) != wantWriting {
			continue
		}
		if seen[p.partType] {
			continue
		}
		seen[p.partType] = true
		sum += p.score
		count++
	}
	if count == 0 {
		return nil
	}
	total := model.SpeakingPartCount
	if wantWriting {
		total = model.WritingPartCount
	}
	return &dto.SkillResultDTO{
		TotalScore:     sum / float64(count),
		CompletedParts: count,
		TotalParts:     total,
		IsComplete:     count == total,
	}
}

func isWritingPartType(partType string) bool {
	return strings.HasPrefix(partType, "writing_")
}

// buildPromptIndex maps each answerable slot to its task prompt text.
func buildPromptIndex(questions []model.TestQuestion) (map[answerSlot]string, error) {
	prompts := make(map[answerSlot]string)
	for i := range questions {
		tq := &questions[i]
		if tq.IsQuestionGroup {
			group, err := tq.GroupSnapshot()
			if err != nil {
				return nil, err
			}
			for j := range group.Questions {
				prompts[answerSlot{tq.ID, j}] = group.Questions[j].Content
			}
		} else {
			snap, err := tq.Snapshot()
			if err != nil {
				return nil, err
			}
			prompts[answerSlot{tq.ID, 0}] = snap.Content
		}
	}
	return prompts, nil
}
