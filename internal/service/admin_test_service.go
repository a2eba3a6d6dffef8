package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/ToeicGenius/internal/dto"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminTestService assembles and manages tests. Every assembly path
// freezes question content into snapshots, validates the structure, and
// persists the whole test atomically.
type AdminTestService interface {
	CreateTest(req dto.TestCreateDTO) (*dto.TestSummaryDTO, error)
	CreateTestFromBank(req dto.TestFromBankDTO) (*dto.TestSummaryDTO, error)
	CreateRandomTest(req dto.TestRandomDTO) (*dto.TestSummaryDTO, error)
	CreateNewVersion(testID uint, req dto.TestCreateDTO) (*dto.TestSummaryDTO, error)
	PublishTest(testID uint) error
	ArchiveTest(testID uint) error
	GetTestVersions(testID uint) ([]dto.TestSummaryDTO, error)
	AddQuestionToBank(req dto.QuestionCreateDTO) (*model.Question, error)
	AddGroupToBank(req dto.QuestionGroupCreateDTO) (*model.QuestionGroup, error)
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	partRepo     repository.PartRepository
	validator    TestValidator
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	partRepo repository.PartRepository,
	validator TestValidator,
) AdminTestService {
	return &adminTestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		partRepo:     partRepo,
		validator:    validator,
	}
}

func (s *adminTestService) CreateTest(req dto.TestCreateDTO) (*dto.TestSummaryDTO, error) {
	questions, err := buildInlineSlots(req.Questions)
	if err != nil {
		return nil, err
	}
	test := model.Test{
		Title:       req.Title,
		Description: req.Description,
		Skill:       model.TestSkill(req.Skill),
		Type:        model.TestType(req.Type),
		Status:      model.TestStatusDraft,
		Duration:    req.Duration,
		Version:     1,
		Questions:   questions,
	}
	return s.validateAndCreate(&test)
}

func (s *adminTestService) CreateTestFromBank(req dto.TestFromBankDTO) (*dto.TestSummaryDTO, error) {
	if len(req.QuestionIDs) == 0 && len(req.GroupIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one question or group id is required", ErrValidation)
	}

	bankQuestions, err := s.questionRepo.FindByIDs(req.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("error fetching bank questions: %w", err)
	}
	if len(bankQuestions) != len(req.QuestionIDs) {
		return nil, fmt.Errorf("%w: %d of %d bank questions not found", ErrValidation,
			len(req.QuestionIDs)-len(bankQuestions), len(req.QuestionIDs))
	}
	groups, err := s.questionRepo.FindGroupByIDs(req.GroupIDs)
	if err != nil {
		return nil, fmt.Errorf("error fetching bank question groups: %w", err)
	}
	if len(groups) != len(req.GroupIDs) {
		return nil, fmt.Errorf("%w: %d of %d bank question groups not found", ErrValidation,
			len(req.GroupIDs)-len(groups), len(req.GroupIDs))
	}

	questions, err := buildBankSlots(bankQuestions, groups)
	if err != nil {
		return nil, err
	}
	test := model.Test{
		Title:       req.Title,
		Description: req.Description,
		Skill:       model.TestSkill(req.Skill),
		Type:        model.TestType(req.Type),
		Status:      model.TestStatusDraft,
		Duration:    req.Duration,
		Version:     1,
		Questions:   questions,
	}
	return s.validateAndCreate(&test)
}

func (s *adminTestService) CreateRandomTest(req dto.TestRandomDTO) (*dto.TestSummaryDTO, error) {
	var bankQuestions []model.Question
	for _, pick := range req.Parts {
		drawn, err := s.questionRepo.FindRandomByPart(pick.PartID, pick.QuestionCount)
		if err != nil {
			return nil, fmt.Errorf("error drawing random questions for part %d: %w", pick.PartID, err)
		}
		if len(drawn) < pick.QuestionCount {
			return nil, fmt.Errorf("%w: part %d has only %d bank questions, %d requested",
				ErrValidation, pick.PartID, len(drawn), pick.QuestionCount)
		}
		bankQuestions = append(bankQuestions, drawn...)
	}

	questions, err := buildBankSlots(bankQuestions, nil)
	if err != nil {
		return nil, err
	}
	test := model.Test{
		Title:       req.Title,
		Description: req.Description,
		Skill:       model.TestSkill(req.Skill),
		Type:        model.TestType(req.Type),
		Status:      model.TestStatusDraft,
		Duration:    req.Duration,
		Version:     1,
		Questions:   questions,
	}
	return s.validateAndCreate(&test)
}

// CreateNewVersion assembles a replacement test that points back at the
// version chain's root. Existing versions and their sessions are left
// untouched; graded results keep rendering from their own snapshots.
func (s *adminTestService) CreateNewVersion(testID uint, req dto.TestCreateDTO) (*dto.TestSummaryDTO, error) {
	parent, err := s.testRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return nil, fmt.Errorf("error fetching test %d: %w", testID, err)
	}

	rootID := parent.ID
	if parent.ParentTestID != nil {
		rootID = *parent.ParentTestID
	}
	versions, err := s.testRepo.FindVersions(rootID)
	if err != nil {
		return nil, fmt.Errorf("error fetching versions of test %d: %w", rootID, err)
	}
	maxVersion := 1
	for _, v := range versions {
		if v.Version > maxVersion {
			maxVersion = v.Version
		}
	}

	questions, err := buildInlineSlots(req.Questions)
	if err != nil {
		return nil, err
	}
	test := model.Test{
		Title:        req.Title,
		Description:  req.Description,
		Skill:        model.TestSkill(req.Skill),
		Type:         model.TestType(req.Type),
		Status:       model.TestStatusDraft,
		Duration:     req.Duration,
		ParentTestID: &rootID,
		Version:      maxVersion + 1,
		Questions:    questions,
	}
	return s.validateAndCreate(&test)
}

func (s *adminTestService) PublishTest(testID uint) error {
	if err := s.testRepo.UpdateStatus(testID, model.TestStatusPublished); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return fmt.Errorf("error publishing test %d: %w", testID, err)
	}
	log.Info().Uint("testID", testID).Msg("Test published")
	return nil
}

func (s *adminTestService) ArchiveTest(testID uint) error {
	if err := s.testRepo.UpdateStatus(testID, model.TestStatusArchived); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return fmt.Errorf("error archiving test %d: %w", testID, err)
	}
	log.Info().Uint("testID", testID).Msg("Test archived")
	return nil
}

func (s *adminTestService) GetTestVersions(testID uint) ([]dto.TestSummaryDTO, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
		}
		return nil, fmt.Errorf("error fetching test %d: %w", testID, err)
	}
	rootID := test.ID
	if test.ParentTestID != nil {
		rootID = *test.ParentTestID
	}
	versions, err := s.testRepo.FindVersions(rootID)
	if err != nil {
		return nil, fmt.Errorf("error fetching versions of test %d: %w", rootID, err)
	}

	dtos := make([]dto.TestSummaryDTO, 0, len(versions))
	for _, v := range versions {
		var summary dto.TestSummaryDTO
		copier.Copy(&summary, &v)
		summary.Skill = string(v.Skill)
		summary.Type = string(v.Type)
		summary.Status = string(v.Status)
		dtos = append(dtos, summary)
	}
	return dtos, nil
}

func (s *adminTestService) AddQuestionToBank(req dto.QuestionCreateDTO) (*model.Question, error) {
	question := bankQuestionFromDTO(req)
	if err := s.questionRepo.Create(question); err != nil {
		log.Error().Err(err).Msg("Failed to create bank question")
		return nil, fmt.Errorf("database error creating bank question: %w", err)
	}
	return question, nil
}

func (s *adminTestService) AddGroupToBank(req dto.QuestionGroupCreateDTO) (*model.QuestionGroup, error) {
	group := model.QuestionGroup{
		PartID:   req.PartID,
		Passage:  req.Passage,
		AudioURL: req.AudioURL,
		ImageURL: req.ImageURL,
	}
	for i, qReq := range req.Questions {
		q := bankQuestionFromDTO(qReq)
		q.PartID = req.PartID
		q.OrderInGroup = i + 1
		group.Questions = append(group.Questions, *q)
	}
	if err := s.questionRepo.CreateGroup(&group); err != nil {
		log.Error().Err(err).Msg("Failed to create bank question group")
		return nil, fmt.Errorf("database error creating bank question group: %w", err)
	}
	return &group, nil
}

func (s *adminTestService) validateAndCreate(test *model.Test) (*dto.TestSummaryDTO, error) {
	partsByID, err := s.partsByID()
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateTestStructure(test.Skill, test.Questions, partsByID); err != nil {
		return nil, err
	}
	if err := s.testRepo.Create(test); err != nil {
		log.Error().Err(err).Str("title", test.Title).Msg("Failed to create test in database")
		return nil, fmt.Errorf("database error creating test: %w", err)
	}
	log.Info().Uint("testID", test.ID).Str("skill", string(test.Skill)).Int("questions", len(test.Questions)).Msg("Test assembled")

	var resp dto.TestSummaryDTO
	copier.Copy(&resp, test)
	resp.Skill = string(test.Skill)
	resp.Type = string(test.Type)
	resp.Status = string(test.Status)
	resp.QuestionCount = len(test.Questions)
	return &resp, nil
}

func (s *adminTestService) partsByID() (map[uint]model.Part, error) {
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

func bankQuestionFromDTO(req dto.QuestionCreateDTO) *model.Question {
	question := model.Question{
		PartID:      req.PartID,
		Content:     req.Content,
		AudioURL:    req.AudioURL,
		ImageURL:    req.ImageURL,
		Explanation: req.Explanation,
		PartType:    req.PartType,
	}
	for _, o := range req.Options {
		question.Options = append(question.Options, model.Option{
			Label:     o.Label,
			Content:   o.Content,
			IsCorrect: o.IsCorrect,
		})
	}
	return &question
}

// buildInlineSlots freezes manually supplied content into snapshots.
func buildInlineSlots(slots []dto.TestQuestionCreateDTO) ([]model.TestQuestion, error) {
	var questions []model.TestQuestion
	for _, slot := range slots {
		if (slot.Question == nil) == (slot.QuestionGroup == nil) {
			return nil, fmt.Errorf("%w: slot at order %d must carry exactly one of question or question_group",
				ErrValidation, slot.OrderInTest)
		}
		tq := model.TestQuestion{OrderInTest: slot.OrderInTest}
		if slot.Question != nil {
			tq.PartID = slot.Question.PartID
			snap := snapshotFromCreateDTO(*slot.Question)
			if err := tq.SetSnapshot(&snap); err != nil {
				return nil, err
			}
		} else {
			tq.PartID = slot.QuestionGroup.PartID
			group := model.QuestionGroupSnapshot{
				PartID:   slot.QuestionGroup.PartID,
				Passage:  slot.QuestionGroup.Passage,
				AudioURL: slot.QuestionGroup.AudioURL,
				ImageURL: slot.QuestionGroup.ImageURL,
			}
			for _, qReq := range slot.QuestionGroup.Questions {
				qSnap := snapshotFromCreateDTO(qReq)
				qSnap.PartID = slot.QuestionGroup.PartID
				group.Questions = append(group.Questions, qSnap)
			}
			if err := tq.SetGroupSnapshot(&group); err != nil {
				return nil, err
			}
		}
		questions = append(questions, tq)
	}
	return questions, nil
}

// buildBankSlots freezes bank rows into snapshots, single questions
// first and then groups, numbering slots in order.
func buildBankSlots(bankQuestions []model.Question, groups []model.QuestionGroup) ([]model.TestQuestion, error) {
	var questions []model.TestQuestion
	order := 1
	for i := range bankQuestions {
		q := &bankQuestions[i]
		tq := model.TestQuestion{
			PartID:             q.PartID,
			OrderInTest:        order,
			OriginalQuestionID: &q.ID,
		}
		snap := snapshotFromBankQuestion(q)
		if err := tq.SetSnapshot(&snap); err != nil {
			return nil, err
		}
		questions = append(questions, tq)
		order++
	}
	for i := range groups {
		g := &groups[i]
		tq := model.TestQuestion{
			PartID:          g.PartID,
			OrderInTest:     order,
			OriginalGroupID: &g.ID,
		}
		groupSnap := model.QuestionGroupSnapshot{
			QuestionGroupID: g.ID,
			PartID:          g.PartID,
			Passage:         g.Passage,
			AudioURL:        g.AudioURL,
			ImageURL:        g.ImageURL,
		}
		for j := range g.Questions {
			groupSnap.Questions = append(groupSnap.Questions, snapshotFromBankQuestion(&g.Questions[j]))
		}
		if err := tq.SetGroupSnapshot(&groupSnap); err != nil {
			return nil, err
		}
		questions = append(questions, tq)
		order++
	}
	return questions, nil
}

func snapshotFromCreateDTO(req dto.QuestionCreateDTO) model.QuestionSnapshot {
	snap := model.QuestionSnapshot{
		PartID:      req.PartID,
		Content:     req.Content,
		AudioURL:    req.AudioURL,
		ImageURL:    req.ImageURL,
		Explanation: req.Explanation,
		PartType:    req.PartType,
	}
	for _, o := range req.Options {
		snap.Options = append(snap.Options, model.OptionSnapshot{
			Label:     o.Label,
			Content:   o.Content,
			IsCorrect: o.IsCorrect,
		})
	}
	return snap
}

func snapshotFromBankQuestion(q *model.Question) model.QuestionSnapshot {
	snap := model.QuestionSnapshot{
		QuestionID:  q.ID,
		PartID:      q.PartID,
		Content:     q.Content,
		AudioURL:    q.AudioURL,
		ImageURL:    q.ImageURL,
		Explanation: q.Explanation,
		PartType:    q.PartType,
	}
	for _, o := range q.Options {
		snap.Options = append(snap.Options, model.OptionSnapshot{
			Label:     o.Label,
			Content:   o.Content,
			IsCorrect: o.IsCorrect,
		})
	}
	return snap
}
