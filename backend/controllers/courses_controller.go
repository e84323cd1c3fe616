package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	category := c.Query("category")

	query := cc.DB.Model(&models.Course{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var courses []models.Course
	if err := query.Preload("Lessons").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":             course.ID,
			"title":          course.Title,
			"description":    course.ShortDesc,
			"category":       course.Category,
			"difficulty":     course.Difficulty,
			"price":          course.Price,
			"discount_price": course.DiscountPrice,
			"thumbnail_url":  course.ThumbnailURL,
			"lessons":        len(course.Lessons),
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("lessons.sequence_order")
	}).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrollment models.CourseEnrollment
	enrolled := cc.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error == nil

	lessons := make([]fiber.Map, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		row := fiber.Map{
			"id":           lesson.ID,
			"title":        lesson.Title,
			"description":  lesson.Description,
			"duration":     lesson.Duration,
			"order":        lesson.SequenceOrder,
			"free_preview": lesson.IsFreePreview,
		}
		// Video URLs are gated: free previews for everyone, the rest only
		// for enrolled learners.
		if lesson.IsFreePreview || enrolled {
			row["video_url"] = lesson.VideoURL
		}
		lessons = append(lessons, row)
	}

	result := fiber.Map{
		"id":             course.ID,
		"title":          course.Title,
		"short_desc":     course.ShortDesc,
		"description":    course.Description,
		"category":       course.Category,
		"difficulty":     course.Difficulty,
		"price":          course.Price,
		"discount_price": course.DiscountPrice,
		"thumbnail_url":  course.ThumbnailURL,
		"lessons":        lessons,
		"enrolled":       enrolled,
	}
	if enrolled {
		result["progress"] = fiber.Map{
			"lessons_completed": enrollment.LessonsCompleted,
			"completion_rate":   enrollment.CompletionRate,
			"last_lesson_id":    enrollment.LastLessonID,
		}
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// Enroll is idempotent: enrolling twice returns the existing enrollment.
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrollment models.CourseEnrollment
	err = cc.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err == nil {
		return utils.Success(c, fiber.StatusOK, enrollment)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	enrollment = models.CourseEnrollment{
		UserID:   userID,
		CourseID: uint(courseID),
	}
	if err := cc.DB.Create(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not enroll")
	}

	return utils.Created(c, enrollment)
}

func (cc *CoursesController) GetMyCourses(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var enrollments []models.CourseEnrollment
	if err := cc.DB.Where("user_id = ?", userID).Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course models.Course
		if err := cc.DB.Preload("Lessons").First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}

		result = append(result, fiber.Map{
			"id":                course.ID,
			"title":             course.Title,
			"thumbnail_url":     course.ThumbnailURL,
			"lessons":           len(course.Lessons),
			"lessons_completed": enrollment.LessonsCompleted,
			"completion_rate":   enrollment.CompletionRate,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (cc *CoursesController) UpdateProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		LessonID uint `json:"lesson_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var enrollment models.CourseEnrollment
	if err := cc.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return utils.Forbidden(c, "Not enrolled in this course")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND course_id = ?", input.LessonID, courseID).
		First(&lesson).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	var totalLessons int64
	cc.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&totalLessons)

	if lesson.SequenceOrder > enrollment.LessonsCompleted {
		enrollment.LessonsCompleted = lesson.SequenceOrder
	}
	enrollment.LastLessonID = lesson.ID
	if totalLessons > 0 {
		enrollment.CompletionRate = float64(enrollment.LessonsCompleted) / float64(totalLessons) * 100
	}

	if err := cc.DB.Save(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lessons_completed": enrollment.LessonsCompleted,
		"completion_rate":   enrollment.CompletionRate,
	})
}

// Admin CRUD below.

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if course.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input map[string]interface{}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	allowed := map[string]bool{
		"title": true, "short_desc": true, "description": true,
		"category": true, "difficulty": true, "price": true,
		"discount_price": true, "thumbnail_url": true, "is_published": true,
	}
	updates := make(map[string]interface{})
	for key, value := range input {
		if allowed[key] {
			updates[key] = value
		}
	}

	if err := cc.DB.Model(&course).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, course)
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		VideoURL      string `json:"video_url"`
		Duration      int    `json:"duration"`
		IsFreePreview bool   `json:"is_free_preview"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	var count int64
	cc.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&count)

	lesson := models.Lesson{
		CourseID:      uint(courseID),
		Title:         input.Title,
		Description:   input.Description,
		VideoURL:      input.VideoURL,
		Duration:      input.Duration,
		SequenceOrder: int(count) + 1,
		IsFreePreview: input.IsFreePreview,
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Created(c, lesson)
}
