package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/services/exam"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

type TestsController struct {
	DB   *gorm.DB
	Cfg  *config.Config
	Exam *exam.Service
}

func NewTestsController(db *gorm.DB, cfg *config.Config, examSvc *exam.Service) *TestsController {
	return &TestsController{DB: db, Cfg: cfg, Exam: examSvc}
}

// examError maps the service's error taxonomy onto HTTP statuses.
func examError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, exam.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, err)
	case errors.Is(err, exam.ErrForbidden):
		return utils.Error(c, fiber.StatusForbidden, err)
	case errors.Is(err, exam.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, err)
	case errors.Is(err, exam.ErrValidation):
		return utils.Error(c, fiber.StatusUnprocessableEntity, err)
	default:
		return utils.InternalServerError(c, err.Error())
	}
}

func (tc *TestsController) GetAvailableTests(c *fiber.Ctx) error {
	category := c.Query("category")

	query := tc.DB.Model(&models.MockTest{}).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var tests []models.MockTest
	if err := query.Preload("Sections.Questions").Find(&tests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, test := range tests {
		questionCount := 0
		for _, s := range test.Sections {
			questionCount += len(s.Questions)
		}
		result = append(result, fiber.Map{
			"id":               test.ID,
			"title":            test.Title,
			"description":      test.Description,
			"category":         test.Category,
			"duration":         test.Duration,
			"total_marks":      test.TotalMarks,
			"negative_marking": test.NegativeMarking,
			"questions":        questionCount,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetTestDetails returns the paper for taking the test. Correct answers and
// explanations never leave the server here; they are only reachable through
// the answer-key endpoint after submission.
func (tc *TestsController) GetTestDetails(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.MockTest
	if err := tc.DB.Preload("Sections.Questions").First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if !test.IsActive {
		return utils.NotFound(c, "Test not found")
	}

	sections := make([]fiber.Map, 0, len(test.Sections))
	for _, section := range test.Sections {
		questions := make([]fiber.Map, 0, len(section.Questions))
		for _, q := range section.Questions {
			options, err := q.OptionList()
			if err != nil {
				return utils.InternalServerError(c, "Stored question data is corrupted")
			}
			questions = append(questions, fiber.Map{
				"id":      q.ID,
				"text":    q.Text,
				"options": options,
				"marks":   q.Marks,
				"subject": q.Subject,
				"order":   q.SequenceOrder,
			})
		}
		sections = append(sections, fiber.Map{
			"id":         section.ID,
			"title":      section.Title,
			"time_limit": section.TimeLimit,
			"order":      section.SequenceOrder,
			"questions":  questions,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":               test.ID,
		"title":            test.Title,
		"description":      test.Description,
		"category":         test.Category,
		"duration":         test.Duration,
		"total_marks":      test.TotalMarks,
		"negative_marking": test.NegativeMarking,
		"sections":         sections,
	})
}

func (tc *TestsController) StartAttempt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	attempt, err := tc.Exam.StartAttempt(userID, uint(testID))
	if err != nil {
		return examError(c, err)
	}

	answers, err := attempt.AnswerMap()
	if err != nil {
		return utils.InternalServerError(c, "Stored attempt data is corrupted")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"attempt_id": attempt.ID,
		"test_id":    attempt.MockTestID,
		"started_at": attempt.StartedAt,
		"answers":    answers,
	})
}

type answersInput struct {
	Answers map[string]int `json:"answers"` // question id -> selected option index
}

func parseAnswers(input answersInput) (map[uint]int, error) {
	answers := make(map[uint]int, len(input.Answers))
	for key, selected := range input.Answers {
		questionID, err := strconv.Atoi(key)
		if err != nil || questionID <= 0 {
			return nil, errors.New("invalid question id " + key)
		}
		answers[uint(questionID)] = selected
	}
	return answers, nil
}

func (tc *TestsController) SaveProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	attemptID, err := strconv.Atoi(c.Params("attemptId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var input answersInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	answers, err := parseAnswers(input)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := tc.Exam.SaveProgress(uint(attemptID), userID, answers); err != nil {
		return examError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Progress saved"})
}

func (tc *TestsController) SubmitAttempt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	attemptID, err := strconv.Atoi(c.Params("attemptId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var input struct {
		answersInput
		IsAutoSubmit bool `json:"is_auto_submit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	answers, err := parseAnswers(input.answersInput)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	attempt, err := tc.Exam.SubmitAttempt(uint(attemptID), userID, answers, input.IsAutoSubmit)
	if err != nil {
		return examError(c, err)
	}

	result, err := attemptResult(attempt)
	if err != nil {
		return utils.InternalServerError(c, "Stored attempt data is corrupted")
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func (tc *TestsController) GetAttemptResult(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	attemptID, err := strconv.Atoi(c.Params("attemptId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var attempt models.TestAttempt
	if err := tc.DB.First(&attempt, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Attempt not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if attempt.UserID != userID {
		return utils.Forbidden(c, "Attempt belongs to another user")
	}
	if !attempt.IsCompleted {
		return utils.Conflict(c, "Attempt is not submitted yet")
	}

	result, err := attemptResult(&attempt)
	if err != nil {
		return utils.InternalServerError(c, "Stored attempt data is corrupted")
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func attemptResult(attempt *models.TestAttempt) (fiber.Map, error) {
	sections, err := attempt.SectionResultList()
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"attempt_id":        attempt.ID,
		"test_id":           attempt.MockTestID,
		"score":             attempt.Score,
		"total_marks":       attempt.TotalMarks,
		"percentage":        attempt.Percentage,
		"accuracy":          attempt.Accuracy,
		"rank":              attempt.Rank,
		"total_attempts":    attempt.TotalAttempts,
		"correct_answers":   attempt.CorrectAnswers,
		"wrong_answers":     attempt.WrongAnswers,
		"skipped_questions": attempt.SkippedQuestions,
		"time_spent":        attempt.TimeSpent,
		"is_auto_submit":    attempt.IsAutoSubmit,
		"submitted_at":      attempt.SubmittedAt,
		"section_results":   sections,
	}, nil
}

func (tc *TestsController) GetAnswerKey(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	attemptID, err := strconv.Atoi(c.Params("attemptId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var user models.User
	if err := tc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	key, err := tc.Exam.AnswerKey(uint(attemptID), userID, user.IsAdmin())
	if err != nil {
		return examError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, key)
}

func (tc *TestsController) GetLeaderboard(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	attempts, err := tc.Exam.Leaderboard(uint(testID))
	if err != nil {
		return examError(c, err)
	}

	rows := make([]fiber.Map, 0, len(attempts))
	for _, a := range attempts {
		var user models.User
		tc.DB.First(&user, a.UserID)

		rows = append(rows, fiber.Map{
			"rank":         a.Rank,
			"user_id":      a.UserID,
			"username":     user.Username,
			"score":        a.Score,
			"percentage":   a.Percentage,
			"accuracy":     a.Accuracy,
			"time_spent":   a.TimeSpent,
			"submitted_at": a.SubmittedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"test_id":        testID,
		"total_attempts": len(attempts),
		"leaderboard":    rows,
	})
}

func (tc *TestsController) GetMyAttempts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var attempts []models.TestAttempt
	if err := tc.DB.
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("submitted_at DESC").
		Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(attempts))
	for i := range attempts {
		var test models.MockTest
		tc.DB.First(&test, attempts[i].MockTestID)

		row, err := attemptResult(&attempts[i])
		if err != nil {
			return utils.InternalServerError(c, "Stored attempt data is corrupted")
		}
		row["test_title"] = test.Title
		result = append(result, row)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// Admin CRUD below.

func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	var input struct {
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		Category        string  `json:"category"`
		Duration        int     `json:"duration"`
		NegativeMarking float64 `json:"negative_marking"`
		IsActive        bool    `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}
	if input.NegativeMarking < 0 {
		return utils.BadRequest(c, "Negative marking must be non-negative")
	}

	test := models.MockTest{
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Duration:        input.Duration,
		NegativeMarking: input.NegativeMarking,
		IsActive:        input.IsActive,
	}

	if err := tc.DB.Create(&test).Error; err != nil {
		return utils.InternalServerError(c, "Could not create test")
	}

	return utils.Created(c, test)
}

func (tc *TestsController) UpdateTest(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.MockTest
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		Category        *string  `json:"category"`
		Duration        *int     `json:"duration"`
		NegativeMarking *float64 `json:"negative_marking"`
		IsActive        *bool    `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		test.Title = *input.Title
	}
	if input.Description != nil {
		test.Description = *input.Description
	}
	if input.Category != nil {
		test.Category = *input.Category
	}
	if input.Duration != nil {
		test.Duration = *input.Duration
	}
	if input.NegativeMarking != nil {
		if *input.NegativeMarking < 0 {
			return utils.BadRequest(c, "Negative marking must be non-negative")
		}
		test.NegativeMarking = *input.NegativeMarking
	}
	if input.IsActive != nil {
		test.IsActive = *input.IsActive
	}

	if err := tc.DB.Save(&test).Error; err != nil {
		return utils.InternalServerError(c, "Could not update test")
	}

	return utils.Success(c, fiber.StatusOK, test)
}

func (tc *TestsController) AddSection(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.MockTest
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title     string `json:"title"`
		TimeLimit int    `json:"time_limit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	var count int64
	tc.DB.Model(&models.TestSection{}).Where("mock_test_id = ?", testID).Count(&count)

	section := models.TestSection{
		MockTestID:    uint(testID),
		Title:         input.Title,
		TimeLimit:     input.TimeLimit,
		SequenceOrder: int(count) + 1,
	}

	if err := tc.DB.Create(&section).Error; err != nil {
		return utils.InternalServerError(c, "Could not create section")
	}

	return utils.Created(c, section)
}

func (tc *TestsController) AddQuestion(c *fiber.Ctx) error {
	sectionID, err := strconv.Atoi(c.Params("sectionId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid section ID")
	}

	var section models.TestSection
	if err := tc.DB.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
		Marks         float64  `json:"marks"`
		Explanation   string   `json:"explanation"`
		Subject       string   `json:"subject"`
		Difficulty    string   `json:"difficulty"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Text == "" {
		return utils.BadRequest(c, "Question text is required")
	}
	if len(input.Options) < 2 {
		return utils.BadRequest(c, "At least two options are required")
	}
	if input.CorrectOption < 0 || input.CorrectOption >= len(input.Options) {
		return utils.BadRequest(c, "Invalid correct option index")
	}
	if input.Marks <= 0 {
		return utils.BadRequest(c, "Marks must be positive")
	}

	optionsJson, err := json.Marshal(input.Options)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode options")
	}

	var count int64
	tc.DB.Model(&models.TestQuestion{}).Where("test_section_id = ?", sectionID).Count(&count)

	question := models.TestQuestion{
		TestSectionID: uint(sectionID),
		Text:          input.Text,
		Options:       string(optionsJson),
		CorrectOption: input.CorrectOption,
		Marks:         input.Marks,
		Explanation:   input.Explanation,
		Subject:       input.Subject,
		Difficulty:    input.Difficulty,
		SequenceOrder: int(count) + 1,
	}

	if err := tc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	// Keep the paper's total in sync for listings; attempts snapshot their
	// own copy at scoring time.
	tc.DB.Model(&models.MockTest{}).Where("id = ?", section.MockTestID).
		UpdateColumn("total_marks", gorm.Expr("total_marks + ?", input.Marks))

	return utils.Created(c, question)
}
