package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type UserTestService interface {
	GetPublishedTests(skill, testType string) ([]dto.TestSummaryDTO, error)
	GetTestDetails(testID uint) (*dto.TestDetailDTO, error)
	GetTestHistory(userID uuid.UUID) ([]dto.TestHistoryItemDTO, error)
	GetUserStatistics(userID uuid.UUID) (*dto.UserStatisticsDTO, error)
	GetProgressStatistics(userID uuid.UUID, skill string, from, to *time.Time) (*dto.ProgressStatisticsDTO, error)
}

type userTestService struct {
	testRepo      repository.TestRepository
	resultRepo    repository.TestResultRepository
	flashcardRepo repository.FlashcardRepository
}

func NewUserTestService(
	testRepo repository.TestRepository,
	resultRepo repository.TestResultRepository,
	flashcardRepo repository.FlashcardRepository,
) UserTestService {
	return &userTestService{
		testRepo:      testRepo,
		resultRepo:    resultRepo,
		flashcardRepo: flashcardRepo,
	}
}

func (s *userTestService) GetPublishedTests(skill, testType string) ([]dto.TestSummaryDTO, error) {
	testsWithCount, err := s.testRepo.FindAllWithQuestionCount(model.TestSkill(skill), model.TestType(testType), model.TestStatusPublished)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get published tests from repository")
		return nil, fmt.Errorf("error fetching tests: %w", err)
	}

	var dtos []dto.TestSummaryDTO
	for _, twc := range testsWithCount {
		dtos = append(dtos, dto.TestSummaryDTO{
			ID:            twc.Test.ID,
			Title:         twc.Test.Title,
			Description:   twc.Test.Description,
			Skill:         string(twc.Test.Skill),
			Type:          string(twc.Test.Type),
			Status:        string(twc.Test.Status),
			Duration:      twc.Test.Duration,
			Version:       twc.Test.Version,
			ParentTestID:  twc.Test.ParentTestID,
			QuestionCount: twc.QuestionCount,
			CreatedAt:     twc.Test.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *userTestService) GetTestDetails(testID uint) (*dto.TestDetailDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return nil, fmt.Errorf("error fetching test %d: %w", testID, err)
	}

	questions, err := renderTestQuestions(test.Questions)
	if err != nil {
		return nil, err
	}
	return &dto.TestDetailDTO{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Skill:       string(test.Skill),
		Type:        string(test.Type),
		Status:      string(test.Status),
		Duration:    test.Duration,
		Version:     test.Version,
		Questions:   questions,
		CreatedAt:   test.CreatedAt,
	}, nil
}

func (s *userTestService) GetTestHistory(userID uuid.UUID) ([]dto.TestHistoryItemDTO, error) {
	results, err := s.resultRepo.FindHistoryByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Failed to get test history")
		return nil, fmt.Errorf("error fetching test history: %w", err)
	}

	var dtos []dto.TestHistoryItemDTO
	for _, r := range results {
		dtos = append(dtos, dto.TestHistoryItemDTO{
			TestResultID: r.ID,
			TestID:       r.TestID,
			TestTitle:    r.Test.Title,
			Skill:        string(r.Test.Skill),
			Status:       string(r.Status),
			TotalScore:   r.TotalScore,
			Duration:     r.Duration,
			CreatedAt:    r.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *userTestService) GetUserStatistics(userID uuid.UUID) (*dto.UserStatisticsDTO, error) {
	results, err := s.resultRepo.FindHistoryByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching test history: %w", err)
	}
	flashcards, err := s.flashcardRepo.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("error counting flashcards: %w", err)
	}

	stats := dto.UserStatisticsDTO{
		TestsTaken:     len(results),
		FlashcardCount: int(flashcards),
	}
	var scoreSum int
	var scoreCount int
	for _, r := range results {
		stats.MinutesSpent += r.Duration
		if r.Status != model.TestResultGraded {
			continue
		}
		stats.TestsGraded++
		if r.TotalScore == nil {
			continue
		}
		scoreSum += *r.TotalScore
		scoreCount++
		if r.Test.Skill == model.TestSkillLR {
			if stats.BestLRScore == nil || *r.TotalScore > *stats.BestLRScore {
				score := *r.TotalScore
				stats.BestLRScore = &score
			}
		}
	}
	if scoreCount > 0 {
		stats.AverageScore = float64(scoreSum) / float64(scoreCount)
	}
	return &stats, nil
}

// GetProgressStatistics aggregates the user's graded simulator sessions
// of one skill over a date range. LR progress carries per-skill
// listening/reading breakdowns built from the persisted skill scores.
func (s *userTestService) GetProgressStatistics(userID uuid.UUID, skill string, from, to *time.Time) (*dto.ProgressStatisticsDTO, error) {
	switch model.TestSkill(skill) {
	case model.TestSkillLR, model.TestSkillWriting, model.TestSkillSpeaking, model.TestSkillFourSkills:
	default:
		return nil, fmt.Errorf("%w: unknown skill %q", ErrValidation, skill)
	}

	results, err := s.resultRepo.FindSimulatorResultsByUser(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error fetching simulator results: %w", err)
	}

	stats := dto.ProgressStatisticsDTO{Skill: skill, From: from, To: to}
	var scoreSum, durationSum int
	listening := skillAccumulator{}
	reading := skillAccumulator{}
	for _, r := range results {
		if string(r.Test.Skill) != skill || r.Status != model.TestResultGraded || r.TotalScore == nil {
			continue
		}
		stats.TotalTests++
		scoreSum += *r.TotalScore
		durationSum += r.Duration
		if *r.TotalScore > stats.HighestScore {
			stats.HighestScore = *r.TotalScore
		}
		for _, ss := range r.SkillScores {
			switch ss.Skill {
			case model.QuestionSkillListening:
				listening.add(ss)
			case model.QuestionSkillReading:
				reading.add(ss)
			}
		}
	}
	if stats.TotalTests == 0 {
		return nil, fmt.Errorf("%w: no graded simulator sessions for skill %s", ErrNotFound, skill)
	}

	stats.AverageScore = int(math.Round(float64(scoreSum) / float64(stats.TotalTests)))
	stats.AverageDurationMinutes = float64(durationSum) / float64(stats.TotalTests)
	if model.TestSkill(skill) == model.TestSkillLR {
		stats.Listening = listening.breakdown()
		stats.Reading = reading.breakdown()
	}
	return &stats, nil
}

// skillAccumulator folds skill score rows into a progress breakdown.
type skillAccumulator struct {
	scoreSum int
	highest  int
	correct  int
	total    int
	sessions int
}

func (a *skillAccumulator) add(ss model.UserTestSkillScore) {
	a.scoreSum += ss.Score
	if ss.Score > a.highest {
		a.highest = ss.Score
	}
	a.correct += ss.CorrectCount
	a.total += ss.TotalQuestions
	a.sessions++
}

func (a *skillAccumulator) breakdown() *dto.SkillProgressDTO {
	if a.sessions == 0 {
		return nil
	}
	b := &dto.SkillProgressDTO{
		AverageScore: int(math.Round(float64(a.scoreSum) / float64(a.sessions))),
		HighestScore: a.highest,
	}
	if a.total > 0 {
		b.Accuracy = float64(a.correct) / float64(a.total)
	}
	return b
}

// renderTestQuestions converts snapshots to their rendered form. Option
// correctness is stripped; takers only ever see labels and content.
func renderTestQuestions(questions []model.TestQuestion) ([]dto.TestQuestionViewDTO, error) {
	views := make([]dto.TestQuestionViewDTO, 0, len(questions))
	for i := range questions {
		tq := &questions[i]
		view := dto.TestQuestionViewDTO{
			TestQuestionID:  tq.ID,
			OrderInTest:     tq.OrderInTest,
			PartID:          tq.PartID,
			IsQuestionGroup: tq.IsQuestionGroup,
		}
		if tq.IsQuestionGroup {
			group, err := tq.GroupSnapshot()
			if err != nil {
				return nil, err
			}
			view.Passage = group.Passage
			view.AudioURL = group.AudioURL
			view.ImageURL = group.ImageURL
			for j := range group.Questions {
				view.Questions = append(view.Questions, renderQuestionSnapshot(&group.Questions[j], j))
			}
		} else {
			snap, err := tq.Snapshot()
			if err != nil {
				return nil, err
			}
			view.Questions = append(view.Questions, renderQuestionSnapshot(snap, 0))
		}
		views = append(views, view)
	}
	return views, nil
}

func renderQuestionSnapshot(snap *model.QuestionSnapshot, subIndex int) dto.QuestionViewDTO {
	q := dto.QuestionViewDTO{
		SubQuestionIndex: subIndex,
		PartID:           snap.PartID,
		Content:          snap.Content,
		AudioURL:         snap.AudioURL,
		ImageURL:         snap.ImageURL,
		PartType:         snap.PartType,
	}
	for _, o := range snap.Options {
		q.Options = append(q.Options, dto.OptionViewDTO{Label: o.Label, Content: o.Content})
	}
	return q
}
