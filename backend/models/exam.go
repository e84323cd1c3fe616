package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MockTest is a timed exam made of ordered sections. TotalMarks is kept in
// sync with the questions when the paper is edited; completed attempts carry
// their own snapshot of it.
type MockTest struct {
	gorm.Model
	Title           string `gorm:"not null"`
	Description     string
	Category        string  // exam category, e.g. "SSC", "Banking"
	Duration        int     // minutes
	NegativeMarking float64 // fraction of a question's marks deducted per wrong answer
	TotalMarks      float64
	IsActive        bool `gorm:"default:true"`
	Sections        []TestSection
}

type TestSection struct {
	gorm.Model
	MockTestID    uint
	Title         string
	TimeLimit     int // minutes, 0 = no per-section limit
	SequenceOrder int
	Questions     []TestQuestion
}

type TestQuestion struct {
	gorm.Model
	TestSectionID uint
	Text          string
	Options       string // JSON array of options
	CorrectOption int
	Marks         float64 `gorm:"default:1"`
	Explanation   string
	Subject       string
	Difficulty    string // easy, medium, hard
	SequenceOrder int
}

// OptionList decodes the stored options. Malformed JSON is reported rather
// than shown as an empty question.
func (q *TestQuestion) OptionList() ([]string, error) {
	if q.Options == "" {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return nil, fmt.Errorf("question %d: malformed options: %w", q.ID, err)
	}
	return options, nil
}

// TestAttempt is one learner's run through a MockTest. Answers and
// SectionResults are JSON columns; scoring fields are only meaningful once
// IsCompleted is true. Rank and TotalAttempts are snapshots from the last
// ranking recomputation for the test.
type TestAttempt struct {
	gorm.Model
	UserID       uint `gorm:"not null;index:idx_attempt_user_test"`
	MockTestID   uint `gorm:"not null;index:idx_attempt_user_test"`
	Answers      string
	StartedAt    time.Time
	SubmittedAt  *time.Time
	IsCompleted  bool `gorm:"default:false"`
	IsAutoSubmit bool `gorm:"default:false"`

	Score            float64
	TotalMarks       float64
	Percentage       float64
	Accuracy         float64
	Rank             int
	TotalAttempts    int
	TimeSpent        float64 // minutes
	CorrectAnswers   int
	WrongAnswers     int
	SkippedQuestions int
	SectionResults   string
}

// SectionResult is the per-section slice of a scored attempt, stored inside
// TestAttempt.SectionResults.
type SectionResult struct {
	SectionID        uint    `json:"section_id"`
	Title            string  `json:"title"`
	Score            float64 `json:"score"`
	TotalMarks       float64 `json:"total_marks"`
	CorrectAnswers   int     `json:"correct_answers"`
	WrongAnswers     int     `json:"wrong_answers"`
	SkippedQuestions int     `json:"skipped_questions"`
}

// AnswerMap returns the attempt's answers keyed by question ID. A question
// with no entry counts as skipped; a corrupted column is an error, not an
// all-skipped attempt.
func (a *TestAttempt) AnswerMap() (map[uint]int, error) {
	answers := make(map[uint]int)
	if a.Answers == "" {
		return answers, nil
	}
	if err := json.Unmarshal([]byte(a.Answers), &answers); err != nil {
		return nil, fmt.Errorf("attempt %d: malformed answers: %w", a.ID, err)
	}
	return answers, nil
}

func (a *TestAttempt) SetAnswerMap(answers map[uint]int) {
	data, _ := json.Marshal(answers)
	a.Answers = string(data)
}

func (a *TestAttempt) SectionResultList() ([]SectionResult, error) {
	if a.SectionResults == "" {
		return nil, nil
	}
	var results []SectionResult
	if err := json.Unmarshal([]byte(a.SectionResults), &results); err != nil {
		return nil, fmt.Errorf("attempt %d: malformed section results: %w", a.ID, err)
	}
	return results, nil
}

func (a *TestAttempt) SetSectionResults(results []SectionResult) {
	data, _ := json.Marshal(results)
	a.SectionResults = string(data)
}
