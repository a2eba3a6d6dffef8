package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assessmentFixture struct {
	testRepo     *fakeTestRepo
	resultRepo   *fakeResultRepo
	answerRepo   *fakeAnswerRepo
	feedbackRepo *fakeFeedbackRepo
	writing      *fakeWritingScorer
	speaking     *fakeSpeakingScorer
	svc          AssessmentService
	userID       uuid.UUID
}

func newAssessmentFixture() *assessmentFixture {
	testRepo := newFakeTestRepo()
	answerRepo := newFakeAnswerRepo()
	resultRepo := newFakeResultRepo(testRepo, answerRepo)
	feedbackRepo := &fakeFeedbackRepo{}
	writing := &fakeWritingScorer{scoreFn: func(string, string, string) (*ScoreOutcome, error) {
		return &ScoreOutcome{OverallScore: 80}, nil
	}}
	speaking := &fakeSpeakingScorer{scoreFn: func(string, string, string) (*ScoreOutcome, error) {
		return &ScoreOutcome{OverallScore: 90}, nil
	}}
	return &assessmentFixture{
		testRepo:     testRepo,
		resultRepo:   resultRepo,
		answerRepo:   answerRepo,
		feedbackRepo: feedbackRepo,
		writing:      writing,
		speaking:     speaking,
		svc:          NewAssessmentService(resultRepo, answerRepo, feedbackRepo, writing, speaking, NewScoreConverterService()),
		userID:       uuid.New(),
	}
}

// seedWritingSession stores a three-part writing test and an in-progress
// session on it. Questions map one part type each.
func seedWritingSession(t *testing.T, f *assessmentFixture) (*model.Test, *model.TestResult) {
	t.Helper()
	test := &model.Test{
		Title:    "TOEIC Writing Mini",
		Skill:    model.TestSkillWriting,
		Type:     model.TestTypePractice,
		Status:   model.TestStatusPublished,
		Duration: 60,
		Questions: []model.TestQuestion{
			mustSnapshotQuestion(1, 8, 1, model.PartTypeWritingSentence, ""),
			mustSnapshotQuestion(2, 8, 2, model.PartTypeWritingEmail, ""),
			mustSnapshotQuestion(3, 8, 3, model.PartTypeWritingEssay, ""),
		},
	}
	require.NoError(t, f.testRepo.Create(test))

	result := &model.TestResult{
		TestID:    test.ID,
		UserID:    f.userID,
		Status:    model.TestResultInProgress,
		CreatedAt: time.Now().Add(-30 * time.Minute),
	}
	require.NoError(t, f.resultRepo.Create(result))
	return test, result
}

func writingPart(partType string, questionID uint, text string) dto.BulkAssessmentPartDTO {
	return dto.BulkAssessmentPartDTO{
		PartType: partType,
		Answers:  []dto.AssessmentAnswerDTO{{TestQuestionID: questionID, AnswerText: strptr(text)}},
	}
}

func TestSubmitBulkAssessment_PartialSubmissionGraded(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	// The email part scores 80, the essay 60; the sentence part was
	// never submitted.
	f.writing.scoreFn = func(partType, _, _ string) (*ScoreOutcome, error) {
		if partType == model.PartTypeWritingEmail {
			return &ScoreOutcome{OverallScore: 80}, nil
		}
		return &ScoreOutcome{OverallScore: 60}, nil
	}

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Duration:     45,
		Parts: []dto.BulkAssessmentPartDTO{
			writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "Dear team,"),
			writingPart(model.PartTypeWritingEssay, test.Questions[2].ID, "In my opinion..."),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.WritingResult)
	assert.InDelta(t, 70.0, resp.WritingResult.TotalScore, 1e-9)
	assert.Equal(t, 2, resp.WritingResult.CompletedParts)
	assert.Equal(t, model.WritingPartCount, resp.WritingResult.TotalParts)
	assert.False(t, resp.WritingResult.IsComplete)

	require.NotNil(t, resp.WritingScore)
	assert.Equal(t, 150, *resp.WritingScore)
	require.NotNil(t, resp.TotalScore)
	assert.Equal(t, 150, *resp.TotalScore)
	assert.Nil(t, resp.SpeakingResult)
	assert.Equal(t, string(model.TestResultGraded), resp.Status)
	assert.Len(t, resp.Feedbacks, 2)
	assert.Empty(t, resp.Failures)

	stored, err := f.resultRepo.FindByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TestResultGraded, stored.Status)
	assert.Equal(t, 45, stored.Duration)
	require.Len(t, stored.SkillScores, 1)
	assert.Equal(t, model.QuestionSkillWriting, stored.SkillScores[0].Skill)
	assert.Equal(t, 150, stored.SkillScores[0].Score)
	assert.Len(t, f.feedbackRepo.feedbacks, 2)
}

func TestSubmitBulkAssessment_FailedPartIsolated(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	f.writing.scoreFn = func(partType, _, _ string) (*ScoreOutcome, error) {
		if partType == model.PartTypeWritingEssay {
			return nil, errors.New("scoring service unavailable")
		}
		return &ScoreOutcome{OverallScore: 80}, nil
	}

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{
			writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "Dear team,"),
			writingPart(model.PartTypeWritingEssay, test.Questions[2].ID, "In my opinion..."),
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Failures, 1)
	assert.Equal(t, model.PartTypeWritingEssay, resp.Failures[0].PartType)
	assert.Contains(t, resp.Failures[0].Reason, "unavailable")

	// The failed part contributes nothing; it is never a zero.
	require.NotNil(t, resp.WritingResult)
	assert.InDelta(t, 80.0, resp.WritingResult.TotalScore, 1e-9)
	assert.Equal(t, 1, resp.WritingResult.CompletedParts)
	require.NotNil(t, resp.WritingScore)
	assert.Equal(t, 170, *resp.WritingScore)
	assert.Equal(t, string(model.TestResultGraded), resp.Status)
}

func TestSubmitBulkAssessment_AllPartsFailedStaysInProgress(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	f.writing.scoreFn = func(string, string, string) (*ScoreOutcome, error) {
		return nil, errors.New("scoring service unavailable")
	}

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{
			writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "Dear team,"),
			writingPart(model.PartTypeWritingEssay, test.Questions[2].ID, "In my opinion..."),
		},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Failures, 2)
	assert.Nil(t, resp.WritingResult)
	assert.Nil(t, resp.TotalScore)
	assert.Equal(t, string(model.TestResultInProgress), resp.Status)

	// The session survives for a retry once the service recovers.
	stored, err := f.resultRepo.FindByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TestResultInProgress, stored.Status)
	assert.Empty(t, f.feedbackRepo.feedbacks)
}

func TestSubmitBulkAssessment_MeanOfAnswersWithinPart(t *testing.T) {
	f := newAssessmentFixture()
	testRepo := f.testRepo

	// Two sentence questions scored 100 and 50 average to a raw 75.
	test := &model.Test{
		Title:    "TOEIC Writing Sentences",
		Skill:    model.TestSkillWriting,
		Status:   model.TestStatusPublished,
		Duration: 60,
		Questions: []model.TestQuestion{
			mustSnapshotQuestion(1, 8, 1, model.PartTypeWritingSentence, ""),
			mustSnapshotQuestion(2, 8, 2, model.PartTypeWritingSentence, ""),
		},
	}
	require.NoError(t, testRepo.Create(test))
	result := &model.TestResult{TestID: test.ID, UserID: f.userID, Status: model.TestResultInProgress, CreatedAt: time.Now()}
	require.NoError(t, f.resultRepo.Create(result))

	scores := map[uint]float64{test.Questions[0].ID: 100, test.Questions[1].ID: 50}
	answersSeen := map[string]uint{}
	f.writing.scoreFn = func(_, _, answerText string) (*ScoreOutcome, error) {
		return &ScoreOutcome{OverallScore: scores[answersSeen[answerText]]}, nil
	}
	answersSeen["first sentence"] = test.Questions[0].ID
	answersSeen["second sentence"] = test.Questions[1].ID

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{{
			PartType: model.PartTypeWritingSentence,
			Answers: []dto.AssessmentAnswerDTO{
				{TestQuestionID: test.Questions[0].ID, AnswerText: strptr("first sentence")},
				{TestQuestionID: test.Questions[1].ID, AnswerText: strptr("second sentence")},
			},
		}},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.WritingResult)
	assert.InDelta(t, 75.0, resp.WritingResult.TotalScore, 1e-9)
	require.NotNil(t, resp.WritingScore)
	assert.Equal(t, 160, *resp.WritingScore)
}

func TestSubmitBulkAssessment_SpeakingSession(t *testing.T) {
	f := newAssessmentFixture()

	test := &model.Test{
		Title:    "TOEIC Speaking Mini",
		Skill:    model.TestSkillSpeaking,
		Status:   model.TestStatusPublished,
		Duration: 20,
		Questions: []model.TestQuestion{
			mustSnapshotQuestion(1, 9, 1, model.PartTypeReadAloud, ""),
		},
	}
	require.NoError(t, f.testRepo.Create(test))
	result := &model.TestResult{TestID: test.ID, UserID: f.userID, Status: model.TestResultInProgress, CreatedAt: time.Now()}
	require.NoError(t, f.resultRepo.Create(result))

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{{
			PartType: model.PartTypeReadAloud,
			Answers:  []dto.AssessmentAnswerDTO{{TestQuestionID: test.Questions[0].ID, AudioFileURL: strptr("https://cdn.example.com/a1.mp3")}},
		}},
	})
	require.NoError(t, err)

	assert.Nil(t, resp.WritingResult)
	require.NotNil(t, resp.SpeakingResult)
	assert.InDelta(t, 90.0, resp.SpeakingResult.TotalScore, 1e-9)
	assert.Equal(t, model.SpeakingPartCount, resp.SpeakingResult.TotalParts)
	require.NotNil(t, resp.SpeakingScore)
	assert.Equal(t, 190, *resp.SpeakingScore)
	assert.Equal(t, 1, f.speaking.calls)
	assert.Equal(t, 0, f.writing.calls)
}

func TestSubmitBulkAssessment_EmptyAnswersSkipped(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{
			writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "   "),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.writing.calls)
	assert.Nil(t, resp.WritingResult)
	assert.Equal(t, string(model.TestResultInProgress), resp.Status)
}

func TestSubmitBulkAssessment_UnknownQuestionFailsPart(t *testing.T) {
	f := newAssessmentFixture()
	_, result := seedWritingSession(t, f)

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts: []dto.BulkAssessmentPartDTO{
			writingPart(model.PartTypeWritingEmail, 9999, "Dear team,"),
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Failures, 1)
	assert.Contains(t, resp.Failures[0].Reason, "not part of this test")
	assert.Equal(t, string(model.TestResultInProgress), resp.Status)
}

func TestSubmitBulkAssessment_SessionChecks(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	req := dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts:        []dto.BulkAssessmentPartDTO{writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "Dear team,")},
	}

	_, err := f.svc.SubmitBulkAssessment(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{TestResultID: 9999, Parts: req.Parts})
	assert.ErrorIs(t, err, ErrNotFound)

	// Graded once, a second submission is refused.
	_, err = f.svc.SubmitBulkAssessment(context.Background(), f.userID, req)
	require.NoError(t, err)
	_, err = f.svc.SubmitBulkAssessment(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, ErrAlreadyGraded)
}

func TestSubmitBulkAssessment_RejectsLRSession(t *testing.T) {
	f := newAssessmentFixture()

	test := &model.Test{
		Title:    "TOEIC LR",
		Skill:    model.TestSkillLR,
		Status:   model.TestStatusPublished,
		Duration: 120,
		Questions: []model.TestQuestion{
			mustSnapshotQuestion(1, 1, 1, "", "A"),
		},
	}
	require.NoError(t, f.testRepo.Create(test))
	result := &model.TestResult{TestID: test.ID, UserID: f.userID, Status: model.TestResultInProgress, CreatedAt: time.Now()}
	require.NoError(t, f.resultRepo.Create(result))

	_, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts:        []dto.BulkAssessmentPartDTO{writingPart(model.PartTypeWritingSentence, test.Questions[0].ID, "text")},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitBulkAssessment_GradesParkedSession(t *testing.T) {
	f := newAssessmentFixture()
	test, result := seedWritingSession(t, f)

	// An expired session parked by the reaper can still be scored.
	parked := f.resultRepo.results[result.ID]
	parked.Status = model.TestResultPendingManualGrading

	resp, err := f.svc.SubmitBulkAssessment(context.Background(), f.userID, dto.SubmitBulkAssessmentRequest{
		TestResultID: result.ID,
		Parts:        []dto.BulkAssessmentPartDTO{writingPart(model.PartTypeWritingEmail, test.Questions[1].ID, "Dear team,")},
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.TestResultGraded), resp.Status)

	stored, err := f.resultRepo.FindByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TestResultGraded, stored.Status)
}

func TestScorerHealth_AllServicesHealthy(t *testing.T) {
	f := newAssessmentFixture()

	health := f.svc.ScorerHealth(context.Background())

	assert.Equal(t, "healthy", health.OverallStatus)
	assert.False(t, health.CheckedAt.IsZero())
	require.Len(t, health.Services, 2)
	assert.Equal(t, "writing_api", health.Services[0].Name)
	assert.Equal(t, "healthy", health.Services[0].Status)
	assert.Empty(t, health.Services[0].Error)
	assert.Equal(t, "speaking_api", health.Services[1].Name)
	assert.Equal(t, "healthy", health.Services[1].Status)
}

func TestScorerHealth_FailingServiceDegradesOverall(t *testing.T) {
	f := newAssessmentFixture()
	f.speaking.healthErr = errors.New("scoring service unreachable: connection refused")

	health := f.svc.ScorerHealth(context.Background())

	assert.Equal(t, "degraded", health.OverallStatus)
	require.Len(t, health.Services, 2)
	assert.Equal(t, "healthy", health.Services[0].Status)
	assert.Equal(t, "unhealthy", health.Services[1].Status)
	assert.Contains(t, health.Services[1].Error, "unreachable")
}
