package exam

import "github.com/shiv90154/Lms-sub002/backend/models"

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

// EvaluateAnswer decides the outcome of a single question and the marks it
// awards. selected is nil when the learner left the question blank. A wrong
// answer deducts negativeMarking * question marks; the delta is returned as
// is, so totals can go below zero.
func EvaluateAnswer(question *models.TestQuestion, selected *int, negativeMarking float64) (Outcome, float64) {
	if selected == nil {
		return OutcomeSkipped, 0
	}

	if *selected == question.CorrectOption {
		return OutcomeCorrect, question.Marks
	}

	return OutcomeIncorrect, -(question.Marks * negativeMarking)
}
