package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/config"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TestSessionService drives the test-taking state machine: one active
// session per user and test, answer saves while in progress, and a
// single grading transition per session.
type TestSessionService interface {
	StartTest(userID uuid.UUID, testID uint) (*dto.TestStartResponse, error)
	SaveProgress(userID uuid.UUID, req dto.SaveProgressRequest) error
	SubmitLRTest(userID uuid.UUID, req dto.SubmitLRTestRequest) (*dto.GeneralLRResultDTO, error)
	GetLRResultDetail(userID uuid.UUID, testResultID uint) (*dto.LRResultDetailDTO, error)
	// AutoSubmitExpired finalizes one expired session on behalf of the
	// reaper. LR sessions are graded from their saved answers; Speaking
	// and Writing sessions are parked for manual grading.
	AutoSubmitExpired(testResultID uint) error
}

type testSessionService struct {
	testRepo   repository.TestRepository
	resultRepo repository.TestResultRepository
	answerRepo repository.UserAnswerRepository
	partRepo   repository.PartRepository
	converter  ScoreConverterService
	grace      time.Duration
}

func NewTestSessionService(
	testRepo repository.TestRepository,
	resultRepo repository.TestResultRepository,
	answerRepo repository.UserAnswerRepository,
	partRepo repository.PartRepository,
	converter ScoreConverterService,
	cfg *config.Config,
) TestSessionService {
	return &testSessionService{
		testRepo:   testRepo,
		resultRepo: resultRepo,
		answerRepo: answerRepo,
		partRepo:   partRepo,
		converter:  converter,
		grace:      cfg.Reaper.GracePeriod,
	}
}

func (s *testSessionService) StartTest(userID uuid.UUID, testID uint) (*dto.TestStartResponse, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return nil, fmt.Errorf("error fetching test %d: %w", testID, err)
	}
	if test.Status != model.TestStatusPublished {
		return nil, fmt.Errorf("%w: test %d is not published", ErrValidation, testID)
	}

	questions, err := renderTestQuestions(test.Questions)
	if err != nil {
		return nil, err
	}

	active, err := s.resultRepo.FindActiveByUserAndTest(userID, testID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error fetching active session: %w", err)
	}

	now := time.Now()
	if active != nil && err == nil {
		duration := time.Duration(test.Duration) * time.Minute
		if !active.IsExpired(now, duration, s.grace) {
			saved, err := s.answerRepo.FindByTestResultID(active.ID)
			if err != nil {
				return nil, fmt.Errorf("error fetching saved answers: %w", err)
			}
			log.Info().Uint("testResultID", active.ID).Str("userID", userID.String()).Msg("Resuming active test session")
			return &dto.TestStartResponse{
				TestResultID: active.ID,
				TestID:       test.ID,
				Status:       string(active.Status),
				StartedAt:    active.CreatedAt,
				Duration:     test.Duration,
				Resumed:      true,
				Questions:    questions,
				SavedAnswers: savedAnswerDTOs(saved),
			}, nil
		}

		// The old session outlived its window; close it out before
		// starting a new one.
		if err := s.finalizeExpired(active, test, now); err != nil {
			log.Error().Err(err).Uint("testResultID", active.ID).Msg("Failed to finalize expired session on start")
		}
	}

	result := model.TestResult{
		TestID: test.ID,
		UserID: userID,
		Status: model.TestResultInProgress,
	}
	if err := s.resultRepo.Create(&result); err != nil {
		return nil, fmt.Errorf("error creating test session: %w", err)
	}
	log.Info().Uint("testResultID", result.ID).Uint("testID", test.ID).Str("userID", userID.String()).Msg("Test session started")

	return &dto.TestStartResponse{
		TestResultID: result.ID,
		TestID:       test.ID,
		Status:       string(result.Status),
		StartedAt:    result.CreatedAt,
		Duration:     test.Duration,
		Resumed:      false,
		Questions:    questions,
	}, nil
}

func (s *testSessionService) SaveProgress(userID uuid.UUID, req dto.SaveProgressRequest) error {
	result, err := s.resultRepo.FindByID(req.TestResultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: test session %d", ErrNotFound, req.TestResultID)
		}
		return fmt.Errorf("error fetching test session: %w", err)
	}
	if result.UserID != userID {
		return fmt.Errorf("%w: test session %d", ErrNotFound, req.TestResultID)
	}
	if result.Status != model.TestResultInProgress {
		return ErrSessionNotActive
	}

	answers := make([]model.UserAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, model.UserAnswer{
			TestResultID:      result.ID,
			TestQuestionID:    a.TestQuestionID,
			SubQuestionIndex:  a.SubQuestionIndex,
			ChosenOptionLabel: a.ChosenOptionLabel,
			AnswerText:        a.AnswerText,
			AudioURL:          a.AudioURL,
		})
	}
	if err := s.answerRepo.UpsertBatch(answers); err != nil {
		return fmt.Errorf("error saving progress: %w", err)
	}
	return nil
}

func (s *testSessionService) SubmitLRTest(userID uuid.UUID, req dto.SubmitLRTestRequest) (*dto.GeneralLRResultDTO, error) {
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
	if result.Test.Skill != model.TestSkillLR && result.Test.Skill != model.TestSkillFourSkills {
		return nil, fmt.Errorf("%w: test session %d is not a listening-reading session", ErrValidation, req.TestResultID)
	}

	// A graded session returns its stored result; re-submission never
	// regrades.
	if result.Status == model.TestResultGraded {
		return s.storedLRResult(result)
	}
	if result.Status != model.TestResultInProgress {
		return nil, ErrSessionNotActive
	}

	if len(req.Answers) > 0 {
		answers := make([]model.UserAnswer, 0, len(req.Answers))
		for _, a := range req.Answers {
			label := a.ChosenOptionLabel
			answers = append(answers, model.UserAnswer{
				TestResultID:      result.ID,
				TestQuestionID:    a.TestQuestionID,
				SubQuestionIndex:  a.SubQuestionIndex,
				ChosenOptionLabel: &label,
			})
		}
		if err := s.answerRepo.UpsertBatch(answers); err != nil {
			return nil, fmt.Errorf("error saving submitted answers: %w", err)
		}
	}

	duration := req.Duration
	if duration <= 0 {
		duration = int(time.Since(result.CreatedAt).Minutes())
	}
	return s.gradeLRSession(result, duration)
}

// gradeLRSession computes the outcome first, then claims the session
// with a conditional status flip and persists only after winning the
// claim. A lost claim means a concurrent submission graded the session;
// the stored result is returned instead.
func (s *testSessionService) gradeLRSession(result *model.TestResult, duration int) (*dto.GeneralLRResultDTO, error) {
	answers, err := s.answerRepo.FindByTestResultID(result.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching answers for grading: %w", err)
	}
	partsByID, err := s.partsByID()
	if err != nil {
		return nil, err
	}

	outcome, err := gradeLRAnswers(result.Test.Questions, answers, partsByID, s.converter)
	if err != nil {
		return nil, err
	}

	claimed, err := s.resultRepo.ClaimForGrading(result.ID, model.TestResultInProgress, model.TestResultGraded)
	if err != nil {
		return nil, fmt.Errorf("error claiming session for grading: %w", err)
	}
	if !claimed {
		stored, err := s.resultRepo.FindByIDWithDetails(result.ID)
		if err != nil {
			return nil, fmt.Errorf("error reloading graded session: %w", err)
		}
		if stored.Status == model.TestResultGraded {
			return s.storedLRResult(stored)
		}
		return nil, ErrAlreadyGraded
	}

	if err := s.answerRepo.SaveAll(outcome.gradedAnswers); err != nil {
		log.Error().Err(err).Uint("testResultID", result.ID).Msg("Failed to persist graded answers")
	}
	result.Status = model.TestResultGraded
	result.Duration = duration
	result.TotalScore = &outcome.totalScore
	result.SkillScores = []model.UserTestSkillScore{
		{TestResultID: result.ID, Skill: model.QuestionSkillListening, Score: outcome.listeningScore, CorrectCount: outcome.listeningCorrect, TotalQuestions: outcome.listeningTotal},
		{TestResultID: result.ID, Skill: model.QuestionSkillReading, Score: outcome.readingScore, CorrectCount: outcome.readingCorrect, TotalQuestions: outcome.readingTotal},
	}
	result.Answers = nil
	if err := s.resultRepo.Save(result); err != nil {
		return nil, fmt.Errorf("error saving graded session: %w", err)
	}
	log.Info().Uint("testResultID", result.ID).Int("totalScore", outcome.totalScore).Msg("LR session graded")

	return &dto.GeneralLRResultDTO{
		TestResultID:     result.ID,
		TotalQuestions:   outcome.total,
		CorrectCount:     outcome.correct,
		IncorrectCount:   outcome.incorrect,
		SkipCount:        outcome.skip,
		Duration:         duration,
		TotalScore:       outcome.totalScore,
		ListeningCorrect: outcome.listeningCorrect,
		ListeningScore:   outcome.listeningScore,
		ReadingCorrect:   outcome.readingCorrect,
		ReadingScore:     outcome.readingScore,
	}, nil
}

// storedLRResult reads the result DTO of an already graded session
// straight from the persisted rows: the IsCorrect flags on its answers
// and the counts on its skill score rows. Nothing is regraded and the
// conversion tables are never consulted again.
func (s *testSessionService) storedLRResult(result *model.TestResult) (*dto.GeneralLRResultDTO, error) {
	out := &dto.GeneralLRResultDTO{TestResultID: result.ID, Duration: result.Duration}
	if result.TotalScore != nil {
		out.TotalScore = *result.TotalScore
	}
	for _, ss := range result.SkillScores {
		switch ss.Skill {
		case model.QuestionSkillListening:
			out.ListeningCorrect = ss.CorrectCount
			out.ListeningScore = ss.Score
			out.TotalQuestions += ss.TotalQuestions
		case model.QuestionSkillReading:
			out.ReadingCorrect = ss.CorrectCount
			out.ReadingScore = ss.Score
			out.TotalQuestions += ss.TotalQuestions
		}
	}
	for _, a := range result.Answers {
		if a.IsCorrect == nil {
			continue
		}
		if *a.IsCorrect {
			out.CorrectCount++
		} else {
			out.IncorrectCount++
		}
	}
	out.SkipCount = out.TotalQuestions - out.CorrectCount - out.IncorrectCount
	return out, nil
}

func (s *testSessionService) GetLRResultDetail(userID uuid.UUID, testResultID uint) (*dto.LRResultDetailDTO, error) {
	result, err := s.resultRepo.FindByIDWithDetails(testResultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test session %d", ErrNotFound, testResultID)
		}
		return nil, fmt.Errorf("error fetching test session: %w", err)
	}
	if result.UserID != userID {
		return nil, fmt.Errorf("%w: test session %d", ErrNotFound, testResultID)
	}
	if result.Status != model.TestResultGraded {
		return nil, fmt.Errorf("%w: test session %d is not graded yet", ErrValidation, testResultID)
	}

	summary, err := s.storedLRResult(result)
	if err != nil {
		return nil, err
	}

	key, err := buildAnswerKey(result.Test.Questions)
	if err != nil {
		return nil, err
	}
	answered := make(map[answerSlot]*model.UserAnswer, len(result.Answers))
	for i := range result.Answers {
		a := &result.Answers[i]
		answered[answerSlot{a.TestQuestionID, a.SubQuestionIndex}] = a
	}

	reviews := make([]dto.AnswerReviewDTO, 0, len(key.slots))
	for _, slot := range key.slots {
		entry := key.entries[slot]
		review := dto.AnswerReviewDTO{
			TestQuestionID:   slot.testQuestionID,
			SubQuestionIndex: slot.subIndex,
			CorrectLabel:     entry.correctLabel,
			Explanation:      entry.explanation,
		}
		if a, ok := answered[slot]; ok && a.ChosenOptionLabel != nil {
			review.ChosenOptionLabel = a.ChosenOptionLabel
			review.IsCorrect = *a.ChosenOptionLabel == entry.correctLabel
		}
		reviews = append(reviews, review)
	}

	return &dto.LRResultDetailDTO{Result: *summary, Answers: reviews}, nil
}

func (s *testSessionService) AutoSubmitExpired(testResultID uint) error {
	result, err := s.resultRepo.FindByIDWithDetails(testResultID)
	if err != nil {
		return fmt.Errorf("error fetching expired session %d: %w", testResultID, err)
	}
	if result.Status != model.TestResultInProgress {
		return nil
	}
	return s.finalizeExpired(result, &result.Test, time.Now())
}

func (s *testSessionService) finalizeExpired(result *model.TestResult, test *model.Test, now time.Time) error {
	elapsed := int(now.Sub(result.CreatedAt).Minutes())

	switch test.Skill {
	case model.TestSkillLR, model.TestSkillFourSkills:
		if result.Test.ID == 0 {
			result.Test = *test
		}
		_, err := s.gradeLRSession(result, elapsed)
		if err != nil && !errors.Is(err, ErrAlreadyGraded) {
			return err
		}
		return nil
	default:
		// Speaking and Writing sessions never went through AI scoring,
		// so there is nothing to grade automatically. They are parked
		// for manual grading rather than closed with a fabricated zero.
		claimed, err := s.resultRepo.ClaimForGrading(result.ID, model.TestResultInProgress, model.TestResultPendingManualGrading)
		if err != nil {
			return fmt.Errorf("error parking expired session %d: %w", result.ID, err)
		}
		if !claimed {
			return nil
		}
		result.Status = model.TestResultPendingManualGrading
		result.Duration = elapsed
		result.Answers = nil
		result.SkillScores = nil
		if err := s.resultRepo.Save(result); err != nil {
			return fmt.Errorf("error saving parked session %d: %w", result.ID, err)
		}
		log.Info().Uint("testResultID", result.ID).Int("elapsedMinutes", elapsed).Msg("Expired session parked for manual grading")
		return nil
	}
}

func (s *testSessionService) partsByID() (map[uint]model.Part, error) {
	parts, err := s.partRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("error fetching parts: %w", err)
	}
	byID := make(map[uint]model.Part, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}
	return byID, nil
}

type answerSlot struct {
	testQuestionID uint
	subIndex       int
}

type answerKeyEntry struct {
	correctLabel string
	partID       uint
	explanation  string
}

type answerKey struct {
	slots   []answerSlot
	entries map[answerSlot]answerKeyEntry
}

// buildAnswerKey flattens the snapshots of a test into per-slot correct
// labels, in test order.
func buildAnswerKey(questions []model.TestQuestion) (*answerKey, error) {
	key := &answerKey{entries: make(map[answerSlot]answerKeyEntry)}
	for i := range questions {
		tq := &questions[i]
		if tq.IsQuestionGroup {
			group, err := tq.GroupSnapshot()
			if err != nil {
				return nil, err
			}
			for j := range group.Questions {
				q := &group.Questions[j]
				label, _ := q.CorrectLabel()
				slot := answerSlot{tq.ID, j}
				key.slots = append(key.slots, slot)
				key.entries[slot] = answerKeyEntry{correctLabel: label, partID: tq.PartID, explanation: q.Explanation}
			}
		} else {
			snap, err := tq.Snapshot()
			if err != nil {
				return nil, err
			}
			label, _ := snap.CorrectLabel()
			slot := answerSlot{tq.ID, 0}
			key.slots = append(key.slots, slot)
			key.entries[slot] = answerKeyEntry{correctLabel: label, partID: tq.PartID, explanation: snap.Explanation}
		}
	}
	return key, nil
}

type lrOutcome struct {
	total            int
	correct          int
	incorrect        int
	skip             int
	listeningCorrect int
	listeningTotal   int
	readingCorrect   int
	readingTotal     int
	listeningScore   int
	readingScore     int
	totalScore       int
	gradedAnswers    []model.UserAnswer
}

// gradeLRAnswers grades saved answers against the frozen snapshots. The
// function is pure apart from the converter lookup, so grading the same
// session twice always yields the same result.
func gradeLRAnswers(questions []model.TestQuestion, answers []model.UserAnswer, partsByID map[uint]model.Part, converter ScoreConverterService) (*lrOutcome, error) {
	key, err := buildAnswerKey(questions)
	if err != nil {
		return nil, err
	}

	answered := make(map[answerSlot]*model.UserAnswer, len(answers))
	for i := range answers {
		a := &answers[i]
		answered[answerSlot{a.TestQuestionID, a.SubQuestionIndex}] = a
	}

	outcome := &lrOutcome{total: len(key.slots)}
	for _, slot := range key.slots {
		entry := key.entries[slot]
		part, ok := partsByID[entry.partID]
		if !ok {
			return nil, fmt.Errorf("unknown part %d in answer key", entry.partID)
		}
		switch part.Skill {
		case model.QuestionSkillListening:
			outcome.listeningTotal++
		case model.QuestionSkillReading:
			outcome.readingTotal++
		}

		a, has := answered[slot]
		if !has || a.ChosenOptionLabel == nil || *a.ChosenOptionLabel == "" {
			outcome.skip++
			continue
		}

		isCorrect := *a.ChosenOptionLabel == entry.correctLabel
		a.IsCorrect = &isCorrect
		outcome.gradedAnswers = append(outcome.gradedAnswers, *a)
		if isCorrect {
			outcome.correct++
			switch part.Skill {
			case model.QuestionSkillListening:
				outcome.listeningCorrect++
			case model.QuestionSkillReading:
				outcome.readingCorrect++
			}
		} else {
			outcome.incorrect++
		}
	}

	outcome.listeningScore, err = converter.ConvertListeningScore(outcome.listeningCorrect)
	if err != nil {
		return nil, fmt.Errorf("error converting listening score: %w", err)
	}
	outcome.readingScore, err = converter.ConvertReadingScore(outcome.readingCorrect)
	if err != nil {
		return nil, fmt.Errorf("error converting reading score: %w", err)
	}
	outcome.totalScore = outcome.listeningScore + outcome.readingScore
	return outcome, nil
}

func savedAnswerDTOs(answers []model.UserAnswer) []dto.SavedAnswerDTO {
	dtos := make([]dto.SavedAnswerDTO, 0, len(answers))
	for _, a := range answers {
		dtos = append(dtos, dto.SavedAnswerDTO{
			TestQuestionID:    a.TestQuestionID,
			SubQuestionIndex:  a.SubQuestionIndex,
			ChosenOptionLabel: a.ChosenOptionLabel,
			AnswerText:        a.AnswerText,
			AudioURL:          a.AudioURL,
		})
	}
	return dtos
}
