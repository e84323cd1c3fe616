package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/services/mailer"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

type LeadsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *mailer.Mailer
	Logger *zap.Logger
}

func NewLeadsController(db *gorm.DB, cfg *config.Config, mail *mailer.Mailer, logger *zap.Logger) *LeadsController {
	return &LeadsController{DB: db, Cfg: cfg, Mailer: mail, Logger: logger}
}

// CreateLead is the public enquiry form endpoint, no auth required.
func (lc *LeadsController) CreateLead(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		CourseID uint   `json:"course_id"`
		Message  string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" || input.Phone == "" {
		return utils.BadRequest(c, "Name and phone are required")
	}

	lead := models.EnrollmentLead{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		CourseID: input.CourseID,
		Message:  input.Message,
		Status:   "new",
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.InternalServerError(c, "Could not save enquiry")
	}

	// Notification failure must not fail the capture.
	if err := lc.Mailer.NotifyLead(&lead); err != nil {
		lc.Logger.Warn("lead notification email failed",
			zap.Uint("lead_id", lead.ID),
			zap.Error(err))
	}

	return utils.Created(c, fiber.Map{"message": "We will contact you shortly"})
}

func (lc *LeadsController) GetLeads(c *fiber.Ctx) error {
	status := c.Query("status")

	query := lc.DB.Model(&models.EnrollmentLead{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var leads []models.EnrollmentLead
	if err := query.Find(&leads).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, leads)
}

func (lc *LeadsController) UpdateLeadStatus(c *fiber.Ctx) error {
	leadID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lead ID")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	switch input.Status {
	case "new", "contacted", "closed":
	default:
		return utils.BadRequest(c, "Status must be new, contacted or closed")
	}

	result := lc.DB.Model(&models.EnrollmentLead{}).
		Where("id = ?", leadID).
		Update("status", input.Status)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update lead")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Lead not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Lead updated"})
}
