package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userTestFixture struct {
	testRepo      *fakeTestRepo
	resultRepo    *fakeResultRepo
	flashcardRepo *fakeFlashcardRepo
	svc           UserTestService
	userID        uuid.UUID
}

func newUserTestFixture() *userTestFixture {
	testRepo := newFakeTestRepo()
	answerRepo := newFakeAnswerRepo()
	resultRepo := newFakeResultRepo(testRepo, answerRepo)
	flashcardRepo := newFakeFlashcardRepo()
	return &userTestFixture{
		testRepo:      testRepo,
		resultRepo:    resultRepo,
		flashcardRepo: flashcardRepo,
		svc:           NewUserTestService(testRepo, resultRepo, flashcardRepo),
		userID:        uuid.New(),
	}
}

func TestGetPublishedTests_FiltersDraftsAndSkill(t *testing.T) {
	f := newUserTestFixture()

	published := &model.Test{Title: "LR published", Skill: model.TestSkillLR, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(published))
	require.NoError(t, f.testRepo.Create(&model.Test{Title: "LR draft", Skill: model.TestSkillLR, Status: model.TestStatusDraft, Duration: 120}))
	require.NoError(t, f.testRepo.Create(&model.Test{Title: "Writing published", Skill: model.TestSkillWriting, Status: model.TestStatusPublished, Duration: 60}))

	all, err := f.svc.GetPublishedTests("", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lrOnly, err := f.svc.GetPublishedTests("lr", "")
	require.NoError(t, err)
	require.Len(t, lrOnly, 1)
	assert.Equal(t, "LR published", lrOnly[0].Title)
	assert.Equal(t, "published", lrOnly[0].Status)
}

func TestGetPublishedTests_FiltersByType(t *testing.T) {
	f := newUserTestFixture()

	require.NoError(t, f.testRepo.Create(&model.Test{
		Title: "LR practice", Skill: model.TestSkillLR, Type: model.TestTypePractice,
		Status: model.TestStatusPublished, Duration: 120,
	}))
	require.NoError(t, f.testRepo.Create(&model.Test{
		Title: "LR simulator", Skill: model.TestSkillLR, Type: model.TestTypeSimulator,
		Status: model.TestStatusPublished, Duration: 120,
	}))
	require.NoError(t, f.testRepo.Create(&model.Test{
		Title: "Writing simulator", Skill: model.TestSkillWriting, Type: model.TestTypeSimulator,
		Status: model.TestStatusPublished, Duration: 60,
	}))

	simulators, err := f.svc.GetPublishedTests("", "simulator")
	require.NoError(t, err)
	assert.Len(t, simulators, 2)

	lrSimulators, err := f.svc.GetPublishedTests("lr", "simulator")
	require.NoError(t, err)
	require.Len(t, lrSimulators, 1)
	assert.Equal(t, "LR simulator", lrSimulators[0].Title)
	assert.Equal(t, "simulator", lrSimulators[0].Type)
}

func TestGetTestDetails_StripsCorrectness(t *testing.T) {
	f := newUserTestFixture()

	audio := "https://cdn.example.com/g.mp3"
	groupSlot := model.TestQuestion{PartID: 3, OrderInTest: 2}
	require.NoError(t, groupSlot.SetGroupSnapshot(&model.QuestionGroupSnapshot{
		PartID:   3,
		AudioURL: &audio,
		Questions: []model.QuestionSnapshot{
			{PartID: 3, Content: "What does the speaker say?", Options: []model.OptionSnapshot{
				{Label: "A", Content: "a", IsCorrect: true},
				{Label: "B", Content: "b"},
				{Label: "C", Content: "c"},
				{Label: "D", Content: "d"},
			}},
			{PartID: 3, Content: "What happens next?", Options: []model.OptionSnapshot{
				{Label: "A", Content: "a"},
				{Label: "B", Content: "b", IsCorrect: true},
				{Label: "C", Content: "c"},
				{Label: "D", Content: "d"},
			}},
		},
	}))

	test := &model.Test{
		Title:    "Detail test",
		Skill:    model.TestSkillLR,
		Status:   model.TestStatusPublished,
		Duration: 120,
		Questions: []model.TestQuestion{
			mustSnapshotQuestion(1, 1, 1, "", "A"),
			groupSlot,
		},
	}
	require.NoError(t, f.testRepo.Create(test))

	detail, err := f.svc.GetTestDetails(test.ID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 2)

	single := detail.Questions[0]
	assert.False(t, single.IsQuestionGroup)
	require.Len(t, single.Questions, 1)
	assert.Len(t, single.Questions[0].Options, 4)

	grouped := detail.Questions[1]
	assert.True(t, grouped.IsQuestionGroup)
	require.NotNil(t, grouped.AudioURL)
	require.Len(t, grouped.Questions, 2)
	assert.Equal(t, 0, grouped.Questions[0].SubQuestionIndex)
	assert.Equal(t, 1, grouped.Questions[1].SubQuestionIndex)

	_, err = f.svc.GetTestDetails(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTestHistory(t *testing.T) {
	f := newUserTestFixture()

	test := &model.Test{Title: "History test", Skill: model.TestSkillLR, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(test))

	score := 750
	require.NoError(t, f.resultRepo.Create(&model.TestResult{
		TestID: test.ID, UserID: f.userID, Status: model.TestResultGraded,
		TotalScore: &score, Duration: 110, CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, f.resultRepo.Create(&model.TestResult{
		TestID: test.ID, UserID: f.userID, Status: model.TestResultInProgress, CreatedAt: time.Now(),
	}))
	// Another user's session is invisible.
	require.NoError(t, f.resultRepo.Create(&model.TestResult{
		TestID: test.ID, UserID: uuid.New(), Status: model.TestResultGraded, CreatedAt: time.Now(),
	}))

	history, err := f.svc.GetTestHistory(f.userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "History test", history[0].TestTitle)
	// Most recent first.
	assert.Equal(t, string(model.TestResultInProgress), history[0].Status)
	require.NotNil(t, history[1].TotalScore)
	assert.Equal(t, 750, *history[1].TotalScore)
}

func TestGetUserStatistics(t *testing.T) {
	f := newUserTestFixture()

	lrTest := &model.Test{Title: "LR", Skill: model.TestSkillLR, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(lrTest))
	writingTest := &model.Test{Title: "Writing", Skill: model.TestSkillWriting, Status: model.TestStatusPublished, Duration: 60}
	require.NoError(t, f.testRepo.Create(writingTest))

	addResult := func(testID uint, status model.TestResultStatus, score *int, duration int) {
		require.NoError(t, f.resultRepo.Create(&model.TestResult{
			TestID: testID, UserID: f.userID, Status: status,
			TotalScore: score, Duration: duration, CreatedAt: time.Now(),
		}))
	}
	s1, s2, s3 := 800, 650, 150
	addResult(lrTest.ID, model.TestResultGraded, &s1, 110)
	addResult(lrTest.ID, model.TestResultGraded, &s2, 100)
	addResult(writingTest.ID, model.TestResultGraded, &s3, 55)
	addResult(lrTest.ID, model.TestResultInProgress, nil, 0)

	require.NoError(t, f.flashcardRepo.Create(&model.Flashcard{UserID: f.userID, Word: "ledger"}))
	require.NoError(t, f.flashcardRepo.Create(&model.Flashcard{UserID: uuid.New(), Word: "other"}))

	stats, err := f.svc.GetUserStatistics(f.userID)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TestsTaken)
	assert.Equal(t, 3, stats.TestsGraded)
	require.NotNil(t, stats.BestLRScore)
	assert.Equal(t, 800, *stats.BestLRScore)
	assert.InDelta(t, float64(800+650+150)/3, stats.AverageScore, 1e-9)
	assert.Equal(t, 110+100+55, stats.MinutesSpent)
	assert.Equal(t, 1, stats.FlashcardCount)
}

func TestGetProgressStatistics_AggregatesLRSimulators(t *testing.T) {
	f := newUserTestFixture()

	simulator := &model.Test{Title: "LR sim", Skill: model.TestSkillLR, Type: model.TestTypeSimulator, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(simulator))
	practice := &model.Test{Title: "LR practice", Skill: model.TestSkillLR, Type: model.TestTypePractice, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(practice))

	addGraded := func(testID uint, score, duration int, createdAt time.Time, skillScores []model.UserTestSkillScore) {
		require.NoError(t, f.resultRepo.Create(&model.TestResult{
			TestID: testID, UserID: f.userID, Status: model.TestResultGraded,
			TotalScore: &score, Duration: duration, CreatedAt: createdAt,
			SkillScores: skillScores,
		}))
	}
	addGraded(simulator.ID, 600, 110, time.Now().Add(-48*time.Hour), []model.UserTestSkillScore{
		{Skill: model.QuestionSkillListening, Score: 350, CorrectCount: 70, TotalQuestions: 100},
		{Skill: model.QuestionSkillReading, Score: 250, CorrectCount: 50, TotalQuestions: 100},
	})
	addGraded(simulator.ID, 800, 100, time.Now().Add(-24*time.Hour), []model.UserTestSkillScore{
		{Skill: model.QuestionSkillListening, Score: 450, CorrectCount: 90, TotalQuestions: 100},
		{Skill: model.QuestionSkillReading, Score: 350, CorrectCount: 70, TotalQuestions: 100},
	})
	// Practice sessions and in-progress simulator sessions stay out of
	// progress numbers.
	addGraded(practice.ID, 990, 90, time.Now().Add(-12*time.Hour), nil)
	require.NoError(t, f.resultRepo.Create(&model.TestResult{
		TestID: simulator.ID, UserID: f.userID, Status: model.TestResultInProgress, CreatedAt: time.Now(),
	}))

	stats, err := f.svc.GetProgressStatistics(f.userID, "lr", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "lr", stats.Skill)
	assert.Equal(t, 2, stats.TotalTests)
	assert.Equal(t, 700, stats.AverageScore)
	assert.Equal(t, 800, stats.HighestScore)
	assert.InDelta(t, 105.0, stats.AverageDurationMinutes, 1e-9)

	require.NotNil(t, stats.Listening)
	assert.Equal(t, 400, stats.Listening.AverageScore)
	assert.Equal(t, 450, stats.Listening.HighestScore)
	assert.InDelta(t, 0.8, stats.Listening.Accuracy, 1e-9)

	require.NotNil(t, stats.Reading)
	assert.Equal(t, 300, stats.Reading.AverageScore)
	assert.Equal(t, 350, stats.Reading.HighestScore)
	assert.InDelta(t, 0.6, stats.Reading.Accuracy, 1e-9)
}

func TestGetProgressStatistics_DateRangeAndSkillFilter(t *testing.T) {
	f := newUserTestFixture()

	lrSim := &model.Test{Title: "LR sim", Skill: model.TestSkillLR, Type: model.TestTypeSimulator, Status: model.TestStatusPublished, Duration: 120}
	require.NoError(t, f.testRepo.Create(lrSim))
	writingSim := &model.Test{Title: "Writing sim", Skill: model.TestSkillWriting, Type: model.TestTypeSimulator, Status: model.TestStatusPublished, Duration: 60}
	require.NoError(t, f.testRepo.Create(writingSim))

	addGraded := func(testID uint, score, duration int, createdAt time.Time) {
		require.NoError(t, f.resultRepo.Create(&model.TestResult{
			TestID: testID, UserID: f.userID, Status: model.TestResultGraded,
			TotalScore: &score, Duration: duration, CreatedAt: createdAt,
		}))
	}
	addGraded(lrSim.ID, 500, 110, time.Now().Add(-30*24*time.Hour))
	addGraded(lrSim.ID, 700, 105, time.Now().Add(-2*24*time.Hour))
	addGraded(writingSim.ID, 160, 55, time.Now().Add(-24*time.Hour))

	from := time.Now().Add(-7 * 24 * time.Hour)
	stats, err := f.svc.GetProgressStatistics(f.userID, "lr", &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTests)
	assert.Equal(t, 700, stats.AverageScore)

	writing, err := f.svc.GetProgressStatistics(f.userID, "writing", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, writing.TotalTests)
	assert.Equal(t, 160, writing.HighestScore)
	// Only LR progress carries listening/reading breakdowns.
	assert.Nil(t, writing.Listening)
	assert.Nil(t, writing.Reading)

	_, err = f.svc.GetProgressStatistics(f.userID, "speaking", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetProgressStatistics(f.userID, "typing", nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
