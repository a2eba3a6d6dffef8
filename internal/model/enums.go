package model

// TestSkill identifies which TOEIC exam a test belongs to.
type TestSkill string

const (
	TestSkillLR         TestSkill = "lr"
	TestSkillSpeaking   TestSkill = "speaking"
	TestSkillWriting    TestSkill = "writing"
	TestSkillFourSkills TestSkill = "four_skills"
)

// TestType distinguishes full simulators from shorter practice sets.
type TestType string

const (
	TestTypeSimulator TestType = "simulator"
	TestTypePractice  TestType = "practice"
)

// TestStatus is the lifecycle of an assembled test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"
	TestStatusPublished TestStatus = "published"
	TestStatusArchived  TestStatus = "archived"
)

// TestResultStatus is the lifecycle of a test-taking session.
// InProgress sessions accept answer saves; Graded sessions are final.
// PendingManualGrading marks expired Speaking/Writing sessions that
// never went through AI assessment.
type TestResultStatus string

const (
	TestResultInProgress           TestResultStatus = "in_progress"
	TestResultPendingManualGrading TestResultStatus = "pending_manual_grading"
	TestResultGraded               TestResultStatus = "graded"
)

// QuestionSkill identifies the skill of a single part/question.
type QuestionSkill string

const (
	QuestionSkillListening QuestionSkill = "listening"
	QuestionSkillReading   QuestionSkill = "reading"
	QuestionSkillSpeaking  QuestionSkill = "speaking"
	QuestionSkillWriting   QuestionSkill = "writing"
)

// Part types for Speaking and Writing, used to route answers to the
// right scoring endpoint and to count distinct parts in a submission.
const (
	PartTypeWritingSentence   = "writing_sentence"
	PartTypeWritingEmail      = "writing_email"
	PartTypeWritingEssay      = "writing_essay"
	PartTypeReadAloud         = "read_aloud"
	PartTypeDescribePicture   = "describe_picture"
	PartTypeRespondQuestions  = "respond_questions"
	PartTypeRespondWithInfo   = "respond_with_info"
	PartTypeExpressOpinion    = "express_opinion"
)

// WritingPartCount and SpeakingPartCount are the number of distinct
// part types a complete submission covers.
const (
	WritingPartCount  = 3
	SpeakingPartCount = 5
)
