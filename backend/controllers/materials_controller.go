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

type MaterialsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMaterialsController(db *gorm.DB, cfg *config.Config) *MaterialsController {
	return &MaterialsController{DB: db, Cfg: cfg}
}

func (mc *MaterialsController) GetMaterials(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	category := c.Query("category")

	query := mc.DB.Model(&models.StudyMaterial{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var materials []models.StudyMaterial
	if err := query.Find(&materials).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var user models.User
	mc.DB.First(&user, userID)

	result := make([]fiber.Map, 0, len(materials))
	for _, material := range materials {
		row := fiber.Map{
			"id":          material.ID,
			"title":       material.Title,
			"description": material.Description,
			"category":    material.Category,
			"price":       material.Price,
			"is_free":     material.IsFree,
		}
		// Download link only for free items, purchasers and admins.
		if material.IsFree || user.IsAdmin() || mc.hasPurchased(userID, material.ID) {
			row["file_url"] = material.FileURL
		}
		result = append(result, row)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (mc *MaterialsController) hasPurchased(userID, materialID uint) bool {
	var count int64
	mc.DB.Model(&models.MaterialPurchase{}).
		Where("user_id = ? AND study_material_id = ?", userID, materialID).
		Count(&count)
	return count > 0
}

func (mc *MaterialsController) CreateMaterial(c *fiber.Ctx) error {
	var material models.StudyMaterial
	if err := c.BodyParser(&material); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if material.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}
	if !material.IsFree && material.Price <= 0 {
		return utils.BadRequest(c, "Paid material needs a positive price")
	}

	if err := mc.DB.Create(&material).Error; err != nil {
		return utils.InternalServerError(c, "Could not create material")
	}

	return utils.Created(c, material)
}

func (mc *MaterialsController) UpdateMaterial(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var material models.StudyMaterial
	if err := mc.DB.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Material not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input map[string]interface{}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	allowed := map[string]bool{
		"title": true, "description": true, "category": true,
		"file_url": true, "price": true, "is_free": true,
	}
	updates := make(map[string]interface{})
	for key, value := range input {
		if allowed[key] {
			updates[key] = value
		}
	}

	if err := mc.DB.Model(&material).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update material")
	}

	return utils.Success(c, fiber.StatusOK, material)
}

// GrantAccess records a paid-material purchase for a user, used by staff
// after an offline or gateway payment is reconciled. Idempotent.
func (mc *MaterialsController) GrantAccess(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var input struct {
		UserID  uint `json:"user_id"`
		OrderID uint `json:"order_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.UserID == 0 {
		return utils.BadRequest(c, "user_id is required")
	}

	var material models.StudyMaterial
	if err := mc.DB.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Material not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if mc.hasPurchased(input.UserID, material.ID) {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Already granted"})
	}

	purchase := models.MaterialPurchase{
		UserID:          input.UserID,
		StudyMaterialID: material.ID,
		OrderID:         input.OrderID,
	}
	if err := mc.DB.Create(&purchase).Error; err != nil {
		return utils.InternalServerError(c, "Could not grant access")
	}

	return utils.Created(c, purchase)
}

func (mc *MaterialsController) DeleteMaterial(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	result := mc.DB.Delete(&models.StudyMaterial{}, materialID)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete material")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Material not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Material deleted"})
}
