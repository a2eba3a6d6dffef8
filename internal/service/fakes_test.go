package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/ToeicGenius/internal/model"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type fakeTestRepo struct {
	tests  map[uint]*model.Test
	nextID uint
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{tests: map[uint]*model.Test{}, nextID: 1}
}

func (r *fakeTestRepo) Create(test *model.Test) error {
	test.ID = r.nextID
	r.nextID++
	for i := range test.Questions {
		test.Questions[i].ID = test.ID*1000 + uint(i) + 1
		test.Questions[i].TestID = test.ID
	}
	r.tests[test.ID] = test
	return nil
}

func (r *fakeTestRepo) Update(test *model.Test) error {
	r.tests[test.ID] = test
	return nil
}

func (r *fakeTestRepo) UpdateStatus(id uint, status model.TestStatus) error {
	t, ok := r.tests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTestRepo) FindByID(id uint) (*model.Test, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	copied.Questions = nil
	return &copied, nil
}

func (r *fakeTestRepo) FindByIDWithQuestions(id uint) (*model.Test, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTestRepo) FindAllWithQuestionCount(skill model.TestSkill, testType model.TestType, status model.TestStatus) ([]struct {
	model.Test
	QuestionCount int
}, error) {
	var out []struct {
		model.Test
		QuestionCount int
	}
	for _, t := range r.tests {
		if skill != "" && t.Skill != skill {
			continue
		}
		if testType != "" && t.Type != testType {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, struct {
			model.Test
			QuestionCount int
		}{Test: *t, QuestionCount: len(t.Questions)})
	}
	return out, nil
}

func (r *fakeTestRepo) FindVersions(parentID uint) ([]model.Test, error) {
	var out []model.Test
	for _, t := range r.tests {
		if t.ID == parentID || (t.ParentTestID != nil && *t.ParentTestID == parentID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

type fakeResultRepo struct {
	results map[uint]*model.TestResult
	answers *fakeAnswerRepo
	tests   *fakeTestRepo
	nextID  uint
}

func newFakeResultRepo(tests *fakeTestRepo, answers *fakeAnswerRepo) *fakeResultRepo {
	return &fakeResultRepo{results: map[uint]*model.TestResult{}, answers: answers, tests: tests, nextID: 1}
}

func (r *fakeResultRepo) Create(result *model.TestResult) error {
	result.ID = r.nextID
	r.nextID++
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	copied := *result
	r.results[result.ID] = &copied
	return nil
}

func (r *fakeResultRepo) Save(result *model.TestResult) error {
	copied := *result
	copied.Test = model.Test{}
	copied.Answers = nil
	r.results[result.ID] = &copied
	return nil
}

func (r *fakeResultRepo) FindByID(id uint) (*model.TestResult, error) {
	res, ok := r.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *fakeResultRepo) FindByIDWithDetails(id uint) (*model.TestResult, error) {
	res, ok := r.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *res
	if r.tests != nil {
		if t, err := r.tests.FindByIDWithQuestions(res.TestID); err == nil {
			copied.Test = *t
		}
	}
	if r.answers != nil {
		saved, _ := r.answers.FindByTestResultID(id)
		copied.Answers = saved
	}
	return &copied, nil
}

func (r *fakeResultRepo) FindActiveByUserAndTest(userID uuid.UUID, testID uint) (*model.TestResult, error) {
	var latest *model.TestResult
	for _, res := range r.results {
		if res.UserID == userID && res.TestID == testID && res.Status == model.TestResultInProgress {
			if latest == nil || res.CreatedAt.After(latest.CreatedAt) {
				latest = res
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeResultRepo) FindHistoryByUser(userID uuid.UUID) ([]model.TestResult, error) {
	var out []model.TestResult
	for _, res := range r.results {
		if res.UserID != userID {
			continue
		}
		copied := *res
		if r.tests != nil {
			if t, err := r.tests.FindByID(res.TestID); err == nil {
				copied.Test = *t
			}
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeResultRepo) FindSimulatorResultsByUser(userID uuid.UUID, from, to *time.Time) ([]model.TestResult, error) {
	var out []model.TestResult
	for _, res := range r.results {
		if res.UserID != userID {
			continue
		}
		if from != nil && res.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && res.CreatedAt.After(*to) {
			continue
		}
		copied := *res
		if r.tests != nil {
			if t, err := r.tests.FindByID(res.TestID); err == nil {
				copied.Test = *t
			}
		}
		if copied.Test.Type != model.TestTypeSimulator {
			continue
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeResultRepo) FindExpiredInProgress(now time.Time, grace time.Duration) ([]model.TestResult, error) {
	var expired []model.TestResult
	for _, res := range r.results {
		if res.Status != model.TestResultInProgress {
			continue
		}
		copied := *res
		if r.tests != nil {
			if t, err := r.tests.FindByID(res.TestID); err == nil {
				copied.Test = *t
			}
		}
		duration := time.Duration(copied.Test.Duration) * time.Minute
		if copied.IsExpired(now, duration, grace) {
			expired = append(expired, copied)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (r *fakeResultRepo) ClaimForGrading(id uint, from, to model.TestResultStatus) (bool, error) {
	res, ok := r.results[id]
	if !ok {
		return false, nil
	}
	if res.Status != from {
		return false, nil
	}
	res.Status = to
	return true, nil
}

type fakeAnswerRepo struct {
	answers map[uint]map[answerSlot]*model.UserAnswer
	nextID  uint
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[uint]map[answerSlot]*model.UserAnswer{}, nextID: 1}
}

func (r *fakeAnswerRepo) UpsertBatch(answers []model.UserAnswer) error {
	for _, a := range answers {
		byResult, ok := r.answers[a.TestResultID]
		if !ok {
			byResult = map[answerSlot]*model.UserAnswer{}
			r.answers[a.TestResultID] = byResult
		}
		slot := answerSlot{a.TestQuestionID, a.SubQuestionIndex}
		if existing, ok := byResult[slot]; ok {
			existing.ChosenOptionLabel = a.ChosenOptionLabel
			existing.AnswerText = a.AnswerText
			existing.AudioURL = a.AudioURL
			continue
		}
		copied := a
		copied.ID = r.nextID
		r.nextID++
		byResult[slot] = &copied
	}
	return nil
}

func (r *fakeAnswerRepo) SaveAll(answers []model.UserAnswer) error {
	for _, a := range answers {
		byResult, ok := r.answers[a.TestResultID]
		if !ok {
			byResult = map[answerSlot]*model.UserAnswer{}
			r.answers[a.TestResultID] = byResult
		}
		copied := a
		byResult[answerSlot{a.TestQuestionID, a.SubQuestionIndex}] = &copied
	}
	return nil
}

func (r *fakeAnswerRepo) FindByTestResultID(testResultID uint) ([]model.UserAnswer, error) {
	var out []model.UserAnswer
	for _, a := range r.answers[testResultID] {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TestQuestionID != out[j].TestQuestionID {
			return out[i].TestQuestionID < out[j].TestQuestionID
		}
		return out[i].SubQuestionIndex < out[j].SubQuestionIndex
	})
	return out, nil
}

type fakeFeedbackRepo struct {
	feedbacks []model.AIFeedback
}

func (r *fakeFeedbackRepo) Create(feedback *model.AIFeedback) error {
	r.feedbacks = append(r.feedbacks, *feedback)
	return nil
}

func (r *fakeFeedbackRepo) CreateBatch(feedbacks []model.AIFeedback) error {
	r.feedbacks = append(r.feedbacks, feedbacks...)
	return nil
}

func (r *fakeFeedbackRepo) FindLatestByUserAnswerID(userAnswerID uint) (*model.AIFeedback, error) {
	for i := len(r.feedbacks) - 1; i >= 0; i-- {
		if r.feedbacks[i].UserAnswerID == userAnswerID {
			copied := r.feedbacks[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePartRepo struct {
	parts []model.Part
}

func (r *fakePartRepo) Create(part *model.Part) error {
	r.parts = append(r.parts, *part)
	return nil
}

func (r *fakePartRepo) FindByID(id uint) (*model.Part, error) {
	for _, p := range r.parts {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePartRepo) FindAll() ([]model.Part, error) {
	return append([]model.Part(nil), r.parts...), nil
}

func (r *fakePartRepo) FindBySkill(skill model.QuestionSkill) ([]model.Part, error) {
	var out []model.Part
	for _, p := range r.parts {
		if p.Skill == skill {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeFlashcardRepo struct {
	flashcards map[uint]*model.Flashcard
	nextID     uint
}

func newFakeFlashcardRepo() *fakeFlashcardRepo {
	return &fakeFlashcardRepo{flashcards: map[uint]*model.Flashcard{}, nextID: 1}
}

func (r *fakeFlashcardRepo) Create(flashcard *model.Flashcard) error {
	flashcard.ID = r.nextID
	r.nextID++
	copied := *flashcard
	r.flashcards[flashcard.ID] = &copied
	return nil
}

func (r *fakeFlashcardRepo) Update(flashcard *model.Flashcard) error {
	copied := *flashcard
	r.flashcards[flashcard.ID] = &copied
	return nil
}

func (r *fakeFlashcardRepo) Delete(id uint) error {
	delete(r.flashcards, id)
	return nil
}

func (r *fakeFlashcardRepo) FindByID(id uint) (*model.Flashcard, error) {
	fc, ok := r.flashcards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *fc
	return &copied, nil
}

func (r *fakeFlashcardRepo) FindAllByUser(userID uuid.UUID) ([]model.Flashcard, error) {
	var out []model.Flashcard
	for _, fc := range r.flashcards {
		if fc.UserID == userID {
			out = append(out, *fc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFlashcardRepo) FindAllBySet(setID uint) ([]model.Flashcard, error) {
	var out []model.Flashcard
	for _, fc := range r.flashcards {
		if fc.SetID != nil && *fc.SetID == setID {
			out = append(out, *fc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFlashcardRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var n int64
	for _, fc := range r.flashcards {
		if fc.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeFlashcardSetRepo struct {
	sets   map[uint]*model.FlashcardSet
	cards  *fakeFlashcardRepo
	nextID uint
}

func newFakeFlashcardSetRepo(cards *fakeFlashcardRepo) *fakeFlashcardSetRepo {
	return &fakeFlashcardSetRepo{sets: map[uint]*model.FlashcardSet{}, cards: cards, nextID: 1}
}

func (r *fakeFlashcardSetRepo) Create(set *model.FlashcardSet) error {
	set.ID = r.nextID
	r.nextID++
	copied := *set
	r.sets[set.ID] = &copied
	return nil
}

func (r *fakeFlashcardSetRepo) Update(set *model.FlashcardSet) error {
	copied := *set
	r.sets[set.ID] = &copied
	return nil
}

func (r *fakeFlashcardSetRepo) Delete(id uint) error {
	delete(r.sets, id)
	if r.cards != nil {
		for cardID, fc := range r.cards.flashcards {
			if fc.SetID != nil && *fc.SetID == id {
				delete(r.cards.flashcards, cardID)
			}
		}
	}
	return nil
}

func (r *fakeFlashcardSetRepo) FindByID(id uint) (*model.FlashcardSet, error) {
	set, ok := r.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *set
	return &copied, nil
}

func (r *fakeFlashcardSetRepo) FindAllByUserWithCardCount(userID uuid.UUID) ([]struct {
	model.FlashcardSet
	CardCount int
}, error) {
	var out []struct {
		model.FlashcardSet
		CardCount int
	}
	for _, set := range r.sets {
		if set.UserID != userID {
			continue
		}
		count := 0
		if r.cards != nil {
			cards, _ := r.cards.FindAllBySet(set.ID)
			count = len(cards)
		}
		out = append(out, struct {
			model.FlashcardSet
			CardCount int
		}{FlashcardSet: *set, CardCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeWritingScorer struct {
	scoreFn   func(partType, question, answerText string) (*ScoreOutcome, error)
	healthErr error
	calls     int
}

func (f *fakeWritingScorer) ScoreText(_ context.Context, partType, question, answerText string) (*ScoreOutcome, error) {
	f.calls++
	return f.scoreFn(partType, question, answerText)
}

func (f *fakeWritingScorer) CheckHealth(context.Context) error { return f.healthErr }

type fakeSpeakingScorer struct {
	scoreFn   func(partType, question, audioFileURL string) (*ScoreOutcome, error)
	healthErr error
	calls     int
}

func (f *fakeSpeakingScorer) ScoreAudio(_ context.Context, partType, question, audioFileURL string) (*ScoreOutcome, error) {
	f.calls++
	return f.scoreFn(partType, question, audioFileURL)
}

func (f *fakeSpeakingScorer) CheckHealth(context.Context) error { return f.healthErr }

// mustSnapshotQuestion builds a single-question slot with a frozen
// four-option (or optionless) snapshot.
func mustSnapshotQuestion(id uint, partID uint, order int, partType string, correctLabel string) model.TestQuestion {
	tq := model.TestQuestion{ID: id, PartID: partID, OrderInTest: order}
	snap := model.QuestionSnapshot{
		QuestionID: id,
		PartID:     partID,
		Content:    fmt.Sprintf("question %d", id),
		PartType:   partType,
	}
	if correctLabel != "" {
		for _, label := range []string{"A", "B", "C", "D"} {
			snap.Options = append(snap.Options, model.OptionSnapshot{
				Label:     label,
				Content:   "option " + label,
				IsCorrect: label == correctLabel,
			})
		}
	}
	if err := tq.SetSnapshot(&snap); err != nil {
		panic(err)
	}
	return tq
}

func strptr(s string) *string { return &s }
