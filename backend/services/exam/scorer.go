package exam

import (
	"fmt"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// ScoreAttempt fills the attempt's scoring fields from the test paper and the
// attempt's saved answers. One pass over every question in every section;
// questions with no answer entry count as skipped. TotalMarks is snapshotted
// onto the attempt so later edits to the paper don't rewrite history.
//
// The attempt is mutated in memory only; persisting the result is the
// caller's job, so a failed scoring pass never leaves half-written fields in
// the store.
func ScoreAttempt(test *models.MockTest, attempt *models.TestAttempt) error {
	totalMarks := 0.0
	totalQuestions := 0
	for _, section := range test.Sections {
		for _, q := range section.Questions {
			totalMarks += q.Marks
			totalQuestions++
		}
	}

	if totalQuestions == 0 {
		return fmt.Errorf("%w: test %d has no questions", ErrValidation, test.ID)
	}
	if totalMarks == 0 {
		return fmt.Errorf("%w: test %d has zero total marks", ErrValidation, test.ID)
	}

	answers, err := attempt.AnswerMap()
	if err != nil {
		return err
	}

	score := 0.0
	correct, wrong, skipped := 0, 0, 0
	sectionResults := make([]models.SectionResult, 0, len(test.Sections))

	for _, section := range test.Sections {
		sr := models.SectionResult{SectionID: section.ID, Title: section.Title}

		for i := range section.Questions {
			q := &section.Questions[i]
			sr.TotalMarks += q.Marks

			var selected *int
			if chosen, ok := answers[q.ID]; ok {
				selected = &chosen
			}

			outcome, awarded := EvaluateAnswer(q, selected, test.NegativeMarking)
			sr.Score += awarded
			score += awarded

			switch outcome {
			case OutcomeCorrect:
				sr.CorrectAnswers++
				correct++
			case OutcomeIncorrect:
				sr.WrongAnswers++
				wrong++
			default:
				sr.SkippedQuestions++
				skipped++
			}
		}

		sectionResults = append(sectionResults, sr)
	}

	attempt.Score = score
	attempt.TotalMarks = totalMarks
	attempt.Percentage = score / totalMarks * 100
	attempt.CorrectAnswers = correct
	attempt.WrongAnswers = wrong
	attempt.SkippedQuestions = skipped

	if correct+wrong > 0 {
		attempt.Accuracy = float64(correct) / float64(correct+wrong) * 100
	} else {
		attempt.Accuracy = 0
	}

	if attempt.SubmittedAt != nil {
		minutes := attempt.SubmittedAt.Sub(attempt.StartedAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		attempt.TimeSpent = minutes
	}

	attempt.SetSectionResults(sectionResults)
	return nil
}
