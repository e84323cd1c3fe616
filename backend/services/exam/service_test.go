package exam

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// In-memory repositories so lifecycle rules are tested without a database.

type fakeTestRepo struct {
	tests map[uint]*models.MockTest
}

func (r *fakeTestRepo) GetWithQuestions(testID uint) (*models.MockTest, error) {
	test, ok := r.tests[testID]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return test, nil
}

type fakeAttemptRepo struct {
	nextID   uint
	attempts map[uint]*models.TestAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{nextID: 1, attempts: make(map[uint]*models.TestAttempt)}
}

func (r *fakeAttemptRepo) Create(attempt *models.TestAttempt) error {
	attempt.ID = r.nextID
	r.nextID++
	clone := *attempt
	r.attempts[attempt.ID] = &clone
	return nil
}

func (r *fakeAttemptRepo) GetByID(id uint) (*models.TestAttempt, error) {
	attempt, ok := r.attempts[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	clone := *attempt
	return &clone, nil
}

func (r *fakeAttemptRepo) GetIncomplete(userID, testID uint) (*models.TestAttempt, error) {
	for _, attempt := range r.attempts {
		if attempt.UserID == userID && attempt.MockTestID == testID && !attempt.IsCompleted {
			clone := *attempt
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAttemptRepo) CompletedForTest(testID uint) ([]models.TestAttempt, error) {
	var completed []models.TestAttempt
	for _, attempt := range r.attempts {
		if attempt.MockTestID == testID && attempt.IsCompleted {
			completed = append(completed, *attempt)
		}
	}
	return completed, nil
}

func (r *fakeAttemptRepo) Save(attempt *models.TestAttempt) error {
	clone := *attempt
	r.attempts[attempt.ID] = &clone
	return nil
}

func (r *fakeAttemptRepo) SaveAll(attempts []models.TestAttempt) error {
	for i := range attempts {
		stored, ok := r.attempts[attempts[i].ID]
		if !ok {
			return fmt.Errorf("record not found")
		}
		stored.Rank = attempts[i].Rank
		stored.TotalAttempts = attempts[i].TotalAttempts
	}
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func answersOf(t *testing.T, attempt *models.TestAttempt) map[uint]int {
	t.Helper()
	answers, err := attempt.AnswerMap()
	require.NoError(t, err)
	return answers
}

func newTestService() (*Service, *fakeAttemptRepo) {
	attempts := newFakeAttemptRepo()
	tests := &fakeTestRepo{tests: map[uint]*models.MockTest{1: twoSectionTest()}}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	return NewServiceWithClock(tests, attempts, clock), attempts
}

func TestStartAttempt_IdempotentResume(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	second, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "restart must resume, not duplicate")
}

func TestStartAttempt_UnknownTest(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.StartAttempt(7, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartAttempt_InactiveTest(t *testing.T) {
	attempts := newFakeAttemptRepo()
	inactive := twoSectionTest()
	inactive.IsActive = false
	svc := NewServiceWithClock(
		&fakeTestRepo{tests: map[uint]*models.MockTest{1: inactive}},
		attempts,
		&fakeClock{now: time.Now()},
	)

	_, err := svc.StartAttempt(7, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSaveProgress(t *testing.T) {
	svc, repo := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SaveProgress(attempt.ID, 7, map[uint]int{101: 0}))

	stored, err := repo.GetByID(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{101: 0}, answersOf(t, stored))
}

func TestSaveProgress_NotOwner(t *testing.T) {
	svc, repo := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	err = svc.SaveProgress(attempt.ID, 8, map[uint]int{101: 0})
	assert.ErrorIs(t, err, ErrForbidden)

	stored, _ := repo.GetByID(attempt.ID)
	assert.Empty(t, answersOf(t, stored), "rejected save must not mutate the attempt")
}

func TestSubmitAttempt(t *testing.T) {
	svc, _ := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	scored, err := svc.SubmitAttempt(attempt.ID, 7, map[uint]int{101: 0, 102: 3, 104: 3}, false)
	require.NoError(t, err)

	assert.True(t, scored.IsCompleted)
	assert.False(t, scored.IsAutoSubmit)
	assert.InDelta(t, 7.5, scored.Score, 1e-9)
	assert.Equal(t, 1, scored.Rank)
	assert.Equal(t, 1, scored.TotalAttempts)
	require.NotNil(t, scored.SubmittedAt)
}

func TestSubmitAttempt_SingleUse(t *testing.T) {
	svc, repo := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	scored, err := svc.SubmitAttempt(attempt.ID, 7, map[uint]int{101: 0}, false)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, 7, map[uint]int{101: 0, 102: 1}, false)
	assert.ErrorIs(t, err, ErrConflict)

	stored, _ := repo.GetByID(attempt.ID)
	assert.Equal(t, scored.Score, stored.Score, "second submit must not touch the stored result")
	assert.Equal(t, answersOf(t, scored), answersOf(t, stored))
}

func TestSubmitAttempt_NotOwner(t *testing.T) {
	svc, _ := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, 8, nil, false)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitAttempt_AutoSubmitScoredIdentically(t *testing.T) {
	svc, _ := newTestService()

	answers := map[uint]int{101: 0, 102: 3, 104: 3}

	first, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)
	manual, err := svc.SubmitAttempt(first.ID, 7, answers, false)
	require.NoError(t, err)

	second, err := svc.StartAttempt(8, 1)
	require.NoError(t, err)
	auto, err := svc.SubmitAttempt(second.ID, 8, answers, true)
	require.NoError(t, err)

	assert.True(t, auto.IsAutoSubmit)
	assert.Equal(t, manual.Score, auto.Score)
	assert.Equal(t, manual.Percentage, auto.Percentage)
}

func TestSubmitAttempt_ReRanksEarlierSubmissions(t *testing.T) {
	svc, repo := newTestService()

	low, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(low.ID, 7, map[uint]int{101: 3}, false) // -2.5
	require.NoError(t, err)

	high, err := svc.StartAttempt(8, 1)
	require.NoError(t, err)
	scored, err := svc.SubmitAttempt(high.ID, 8, map[uint]int{101: 0, 102: 1, 103: 2, 104: 3}, false) // 20
	require.NoError(t, err)

	assert.Equal(t, 1, scored.Rank)

	storedLow, _ := repo.GetByID(low.ID)
	assert.Equal(t, 2, storedLow.Rank, "earlier attempt must be re-ranked")
	assert.Equal(t, 2, storedLow.TotalAttempts)
}

func TestAnswerKey_AccessRules(t *testing.T) {
	svc, _ := newTestService()

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	// not completed yet
	_, err = svc.AnswerKey(attempt.ID, 7, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SubmitAttempt(attempt.ID, 7, map[uint]int{101: 0}, false)
	require.NoError(t, err)

	// other user
	_, err = svc.AnswerKey(attempt.ID, 8, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// admin may see any completed attempt's key
	key, err := svc.AnswerKey(attempt.ID, 8, true)
	require.NoError(t, err)
	require.Len(t, key, 4)
	assert.Equal(t, uint(101), key[0].QuestionID)
	assert.Equal(t, 0, key[0].Selected)
	assert.Equal(t, -1, key[1].Selected) // skipped
	assert.Equal(t, 0, key[0].CorrectOption)
}
