package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var attemptCount int64
	uc.DB.Model(&models.TestAttempt{}).
		Where("user_id = ? AND is_completed = ?", userID, true).Count(&attemptCount)

	var enrollmentCount int64
	uc.DB.Model(&models.CourseEnrollment{}).Where("user_id = ?", userID).Count(&enrollmentCount)

	return c.JSON(fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"phone":            user.Phone,
		"role":             user.Role,
		"target_exam":      user.TargetExam,
		"avatar_url":       user.AvatarURL,
		"tests_completed":  attemptCount,
		"courses_enrolled": enrollmentCount,
	})
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var input struct {
		Username   string `json:"username"`
		Phone      string `json:"phone"`
		TargetExam string `json:"target_exam"`
		AvatarURL  string `json:"avatar_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.TargetExam != "" {
		user.TargetExam = input.TargetExam
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return c.JSON(fiber.Map{"message": "Profile updated"})
}
