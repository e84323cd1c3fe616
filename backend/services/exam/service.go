package exam

import (
	"fmt"
	"sync"
	"time"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// TestRepo loads the full paper, correct answers included. Only this
// package's scoring path may see it; learner-facing reads go through the
// controllers, which strip the key.
type TestRepo interface {
	GetWithQuestions(testID uint) (*models.MockTest, error)
}

type AttemptRepo interface {
	Create(attempt *models.TestAttempt) error
	GetByID(id uint) (*models.TestAttempt, error)
	GetIncomplete(userID, testID uint) (*models.TestAttempt, error)
	CompletedForTest(testID uint) ([]models.TestAttempt, error)
	Save(attempt *models.TestAttempt) error
	SaveAll(attempts []models.TestAttempt) error
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service owns the attempt lifecycle: NOT_STARTED -> IN_PROGRESS ->
// SUBMITTED, with SUBMITTED terminal. Ranking recomputation is serialized
// per test with an in-process mutex, so two submissions for the same test
// never interleave their full-recompute passes and persisted ranks always
// reflect both writes.
type Service struct {
	tests    TestRepo
	attempts AttemptRepo
	clock    Clock

	mu        sync.Mutex
	rankLocks map[uint]*sync.Mutex
}

func NewService(tests TestRepo, attempts AttemptRepo) *Service {
	return NewServiceWithClock(tests, attempts, systemClock{})
}

func NewServiceWithClock(tests TestRepo, attempts AttemptRepo, clock Clock) *Service {
	return &Service{
		tests:     tests,
		attempts:  attempts,
		clock:     clock,
		rankLocks: make(map[uint]*sync.Mutex),
	}
}

func (s *Service) rankLock(testID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.rankLocks[testID]
	if !ok {
		lock = &sync.Mutex{}
		s.rankLocks[testID] = lock
	}
	return lock
}

// StartAttempt creates an attempt, or returns the existing incomplete one
// for this (user, test) so a refresh resumes instead of duplicating.
func (s *Service) StartAttempt(userID, testID uint) (*models.TestAttempt, error) {
	test, err := s.tests.GetWithQuestions(testID)
	if err != nil {
		return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
	}
	if !test.IsActive {
		return nil, fmt.Errorf("%w: test %d is not active", ErrValidation, testID)
	}

	if existing, err := s.attempts.GetIncomplete(userID, testID); err == nil && existing != nil {
		return existing, nil
	}

	attempt := &models.TestAttempt{
		UserID:     userID,
		MockTestID: testID,
		StartedAt:  s.clock.Now(),
	}
	attempt.SetAnswerMap(map[uint]int{})

	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SaveProgress overwrites the attempt's answers while it is in progress.
// Called periodically by the client so a crashed tab can resume.
func (s *Service) SaveProgress(attemptID, callerUserID uint, answers map[uint]int) error {
	attempt, err := s.attempts.GetByID(attemptID)
	if err != nil {
		return fmt.Errorf("%w: attempt %d", ErrNotFound, attemptID)
	}
	if attempt.UserID != callerUserID {
		return fmt.Errorf("%w: attempt %d belongs to another user", ErrForbidden, attemptID)
	}
	if attempt.IsCompleted {
		return fmt.Errorf("%w: attempt %d", ErrConflict, attemptID)
	}

	attempt.SetAnswerMap(answers)
	return s.attempts.Save(attempt)
}

// SubmitAttempt scores and ranks an in-progress attempt. Submission is
// single-use; a second call fails with ErrConflict and leaves the stored
// result untouched. Auto-submit (timer expiry) is scored identically and
// only recorded for audit.
func (s *Service) SubmitAttempt(attemptID, callerUserID uint, answers map[uint]int, isAutoSubmit bool) (*models.TestAttempt, error) {
	attempt, err := s.attempts.GetByID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("%w: attempt %d", ErrNotFound, attemptID)
	}
	if attempt.UserID != callerUserID {
		return nil, fmt.Errorf("%w: attempt %d belongs to another user", ErrForbidden, attemptID)
	}
	if attempt.IsCompleted {
		return nil, fmt.Errorf("%w: attempt %d", ErrConflict, attemptID)
	}

	test, err := s.tests.GetWithQuestions(attempt.MockTestID)
	if err != nil {
		return nil, fmt.Errorf("%w: test %d", ErrNotFound, attempt.MockTestID)
	}

	if answers != nil {
		attempt.SetAnswerMap(answers)
	}

	now := s.clock.Now()
	attempt.SubmittedAt = &now
	attempt.IsCompleted = true
	attempt.IsAutoSubmit = isAutoSubmit

	if err := ScoreAttempt(test, attempt); err != nil {
		return nil, err
	}

	// The scored attempt must be durably written before the ranking pass
	// reads the completed set, otherwise its own score is missing from it.
	if err := s.attempts.Save(attempt); err != nil {
		return nil, err
	}

	if err := s.RecomputeRanking(attempt.MockTestID); err != nil {
		return nil, err
	}

	// Reload for the rank assigned by the pass above.
	return s.attempts.GetByID(attempt.ID)
}

// RecomputeRanking rebuilds ranks for every completed attempt of a test.
// Full recompute on every submission; attempt volume per test is bounded, so
// the simple pass beats maintaining an incremental order structure.
func (s *Service) RecomputeRanking(testID uint) error {
	lock := s.rankLock(testID)
	lock.Lock()
	defer lock.Unlock()

	completed, err := s.attempts.CompletedForTest(testID)
	if err != nil {
		return err
	}
	if len(completed) == 0 {
		return nil
	}

	return s.attempts.SaveAll(RankAttempts(completed))
}

// AnswerKeyEntry pairs a question's key with what the learner picked.
// Selected is -1 when the question was skipped.
type AnswerKeyEntry struct {
	QuestionID    uint     `json:"question_id"`
	SectionID     uint     `json:"section_id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Selected      int      `json:"selected"`
	Explanation   string   `json:"explanation,omitempty"`
	Marks         float64  `json:"marks"`
}

// AnswerKey returns the full key with the learner's answers overlaid. Only
// the owner (or an admin) may see it, and only once the attempt is
// completed, so keys never leak mid-test.
func (s *Service) AnswerKey(attemptID, callerUserID uint, callerIsAdmin bool) ([]AnswerKeyEntry, error) {
	attempt, err := s.attempts.GetByID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("%w: attempt %d", ErrNotFound, attemptID)
	}
	if attempt.UserID != callerUserID && !callerIsAdmin {
		return nil, fmt.Errorf("%w: attempt %d belongs to another user", ErrForbidden, attemptID)
	}
	if !attempt.IsCompleted {
		return nil, fmt.Errorf("%w: attempt %d is not completed", ErrForbidden, attemptID)
	}

	test, err := s.tests.GetWithQuestions(attempt.MockTestID)
	if err != nil {
		return nil, fmt.Errorf("%w: test %d", ErrNotFound, attempt.MockTestID)
	}

	answers, err := attempt.AnswerMap()
	if err != nil {
		return nil, err
	}
	var key []AnswerKeyEntry
	for _, section := range test.Sections {
		for _, q := range section.Questions {
			selected := -1
			if chosen, ok := answers[q.ID]; ok {
				selected = chosen
			}
			options, err := q.OptionList()
			if err != nil {
				return nil, err
			}
			key = append(key, AnswerKeyEntry{
				QuestionID:    q.ID,
				SectionID:     section.ID,
				Text:          q.Text,
				Options:       options,
				CorrectOption: q.CorrectOption,
				Selected:      selected,
				Explanation:   q.Explanation,
				Marks:         q.Marks,
			})
		}
	}
	return key, nil
}

// Leaderboard lists a test's completed attempts in rank order.
func (s *Service) Leaderboard(testID uint) ([]models.TestAttempt, error) {
	if _, err := s.tests.GetWithQuestions(testID); err != nil {
		return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
	}
	completed, err := s.attempts.CompletedForTest(testID)
	if err != nil {
		return nil, err
	}
	return RankAttempts(completed), nil
}
