package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExamFlow walks the whole mock-test lifecycle over the HTTP surface:
// admin builds the paper, two learners take it, scoring and ranking are
// checked end to end.
func TestExamFlow(t *testing.T) {
	adminID, adminToken := registerUser(t, "exam_admin")
	promoteToAdmin(t, adminID)
	_, learnerA := registerUser(t, "exam_learner_a")
	_, learnerB := registerUser(t, "exam_learner_b")

	// admin builds a 2-section paper, 5 marks per question, negative 0.5
	status, body := request(t, http.MethodPost, "/api/admin/tests", adminToken, map[string]interface{}{
		"title":            "SSC CGL Mock 1",
		"category":         "SSC",
		"duration":         60,
		"negative_marking": 0.5,
		"is_active":        true,
	})
	require.Equal(t, http.StatusCreated, status, "create test: %v", body)
	testID := fmtID(dataField(t, body)["ID"])

	questionIDs := make([]string, 0, 4)
	for _, sectionTitle := range []string{"Reasoning", "Quantitative"} {
		status, body = request(t, http.MethodPost, "/api/admin/tests/"+testID+"/sections", adminToken,
			map[string]interface{}{"title": sectionTitle})
		require.Equal(t, http.StatusCreated, status, "create section: %v", body)
		sectionID := fmtID(dataField(t, body)["ID"])

		for i := 0; i < 2; i++ {
			status, body = request(t, http.MethodPost, "/api/admin/sections/"+sectionID+"/questions", adminToken,
				map[string]interface{}{
					"text":           "Pick option A",
					"options":        []string{"A", "B", "C", "D"},
					"correct_option": 0,
					"marks":          5,
				})
			require.Equal(t, http.StatusCreated, status, "create question: %v", body)
			questionIDs = append(questionIDs, fmtID(dataField(t, body)["ID"]))
		}
	}

	// learner-facing paper must not contain the answer key
	status, body = request(t, http.MethodGet, "/api/tests/"+testID, learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	sections := dataField(t, body)["sections"].([]interface{})
	require.Len(t, sections, 2)
	firstQuestion := sections[0].(map[string]interface{})["questions"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, firstQuestion, "correct_option")
	assert.NotContains(t, firstQuestion, "explanation")

	// start is idempotent
	status, body = request(t, http.MethodPost, "/api/tests/"+testID+"/start", learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	attemptID := fmtID(dataField(t, body)["attempt_id"])

	status, body = request(t, http.MethodPost, "/api/tests/"+testID+"/start", learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, attemptID, fmtID(dataField(t, body)["attempt_id"]))

	// save progress mid-test
	status, _ = request(t, http.MethodPut, "/api/tests/attempts/"+attemptID+"/progress", learnerA,
		map[string]interface{}{"answers": map[string]int{questionIDs[0]: 0}})
	require.Equal(t, http.StatusOK, status)

	// another user cannot touch the attempt
	status, _ = request(t, http.MethodPut, "/api/tests/attempts/"+attemptID+"/progress", learnerB,
		map[string]interface{}{"answers": map[string]int{questionIDs[0]: 3}})
	assert.Equal(t, http.StatusForbidden, status)

	// learner A: correct, wrong, skipped, correct -> 5 - 2.5 + 0 + 5 = 7.5
	status, body = request(t, http.MethodPost, "/api/tests/attempts/"+attemptID+"/submit", learnerA,
		map[string]interface{}{"answers": map[string]int{
			questionIDs[0]: 0,
			questionIDs[1]: 2,
			questionIDs[3]: 0,
		}})
	require.Equal(t, http.StatusOK, status, "submit: %v", body)
	result := dataField(t, body)
	assert.InDelta(t, 7.5, result["score"].(float64), 1e-9)
	assert.InDelta(t, 20.0, result["total_marks"].(float64), 1e-9)
	assert.InDelta(t, 37.5, result["percentage"].(float64), 1e-9)
	assert.Equal(t, float64(2), result["correct_answers"])
	assert.Equal(t, float64(1), result["wrong_answers"])
	assert.Equal(t, float64(1), result["skipped_questions"])
	assert.Equal(t, float64(1), result["rank"])

	// resubmission is rejected and the stored result is unchanged
	status, _ = request(t, http.MethodPost, "/api/tests/attempts/"+attemptID+"/submit", learnerA,
		map[string]interface{}{"answers": map[string]int{questionIDs[0]: 0}})
	assert.Equal(t, http.StatusConflict, status)

	status, body = request(t, http.MethodGet, "/api/tests/attempts/"+attemptID+"/result", learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 7.5, dataField(t, body)["score"].(float64), 1e-9)

	// learner B aces the paper and takes rank 1; A drops to 2
	status, body = request(t, http.MethodPost, "/api/tests/"+testID+"/start", learnerB, nil)
	require.Equal(t, http.StatusOK, status)
	attemptB := fmtID(dataField(t, body)["attempt_id"])

	answers := make(map[string]int, len(questionIDs))
	for _, id := range questionIDs {
		answers[id] = 0
	}
	status, body = request(t, http.MethodPost, "/api/tests/attempts/"+attemptB+"/submit", learnerB,
		map[string]interface{}{"answers": answers, "is_auto_submit": true})
	require.Equal(t, http.StatusOK, status)
	resultB := dataField(t, body)
	assert.InDelta(t, 20.0, resultB["score"].(float64), 1e-9)
	assert.Equal(t, float64(1), resultB["rank"])
	assert.Equal(t, float64(2), resultB["total_attempts"])
	assert.Equal(t, true, resultB["is_auto_submit"])

	status, body = request(t, http.MethodGet, "/api/tests/"+testID+"/leaderboard", learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	board := dataField(t, body)["leaderboard"].([]interface{})
	require.Len(t, board, 2)
	top := board[0].(map[string]interface{})
	assert.Equal(t, "exam_learner_b", top["username"])
	assert.Equal(t, float64(1), top["rank"])
	second := board[1].(map[string]interface{})
	assert.Equal(t, float64(2), second["rank"])

	// answer key: owner only, and only after completion
	status, body = request(t, http.MethodGet, "/api/tests/attempts/"+attemptID+"/answer-key", learnerA, nil)
	require.Equal(t, http.StatusOK, status)
	key := body["data"].([]interface{})
	require.Len(t, key, 4)
	entry := key[0].(map[string]interface{})
	assert.Equal(t, float64(0), entry["correct_option"])
	assert.Equal(t, float64(0), entry["selected"])

	status, _ = request(t, http.MethodGet, "/api/tests/attempts/"+attemptID+"/answer-key", learnerB, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
