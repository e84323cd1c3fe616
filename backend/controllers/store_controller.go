package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
	"github.com/shiv90154/Lms-sub002/backend/services/mailer"
	"github.com/shiv90154/Lms-sub002/backend/services/payment"
	"github.com/shiv90154/Lms-sub002/backend/services/store"
	"github.com/shiv90154/Lms-sub002/backend/utils"
)

type StoreController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Gateway *payment.Gateway
	Mailer  *mailer.Mailer
	Logger  *zap.Logger
}

func NewStoreController(db *gorm.DB, cfg *config.Config, gateway *payment.Gateway, mail *mailer.Mailer, logger *zap.Logger) *StoreController {
	return &StoreController{DB: db, Cfg: cfg, Gateway: gateway, Mailer: mail, Logger: logger}
}

func (sc *StoreController) GetBooks(c *fiber.Ctx) error {
	category := c.Query("category")
	search := c.Query("q")

	query := sc.DB.Model(&models.Book{}).Where("is_available = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		query = query.Where("title LIKE ? OR author LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, books)
}

func (sc *StoreController) GetBook(c *fiber.Ctx) error {
	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid book ID")
	}

	var book models.Book
	if err := sc.DB.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Book not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, book)
}

func (sc *StoreController) AddToCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input struct {
		BookID   uint `json:"book_id"`
		Quantity int  `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	var book models.Book
	if err := sc.DB.First(&book, input.BookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Book not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !book.IsAvailable {
		return utils.Conflict(c, "Book is not available")
	}

	var item models.CartItem
	err := sc.DB.Where("user_id = ? AND book_id = ?", userID, input.BookID).First(&item).Error
	if err == nil {
		item.Quantity += input.Quantity
		if err := sc.DB.Save(&item).Error; err != nil {
			return utils.InternalServerError(c, "Could not update cart")
		}
		return utils.Success(c, fiber.StatusOK, item)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	item = models.CartItem{
		UserID:   userID,
		BookID:   input.BookID,
		Quantity: input.Quantity,
	}
	if err := sc.DB.Create(&item).Error; err != nil {
		return utils.InternalServerError(c, "Could not add to cart")
	}

	return utils.Created(c, item)
}

func (sc *StoreController) GetCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var items []models.CartItem
	if err := sc.DB.Preload("Book").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	total := 0.0
	rows := make([]fiber.Map, 0, len(items))
	for i := range items {
		price := store.EffectivePrice(&items[i].Book)
		total += price * float64(items[i].Quantity)
		rows = append(rows, fiber.Map{
			"id":         items[i].ID,
			"book_id":    items[i].BookID,
			"title":      items[i].Book.Title,
			"unit_price": price,
			"quantity":   items[i].Quantity,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"items": rows,
		"total": total,
	})
}

// UpdateCartItem sets an item's quantity outright. Zero removes the item, so
// clients don't need a separate call to drop a line they dialed down.
func (sc *StoreController) UpdateCartItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid cart item ID")
	}

	var input struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Quantity == nil || *input.Quantity < 0 {
		return utils.BadRequest(c, "Quantity must be zero or greater")
	}

	var item models.CartItem
	if err := sc.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Cart item not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if *input.Quantity == 0 {
		if err := sc.DB.Delete(&item).Error; err != nil {
			return utils.InternalServerError(c, "Could not update cart")
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Removed from cart"})
	}

	item.Quantity = *input.Quantity
	if err := sc.DB.Save(&item).Error; err != nil {
		return utils.InternalServerError(c, "Could not update cart")
	}

	return utils.Success(c, fiber.StatusOK, item)
}

func (sc *StoreController) RemoveFromCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid cart item ID")
	}

	result := sc.DB.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not update cart")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Cart item not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Removed from cart"})
}

func (sc *StoreController) ClearCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	if err := sc.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return utils.InternalServerError(c, "Could not clear cart")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Cart cleared"})
}

// Checkout snapshots the cart into an order, registers it with the payment
// gateway and empties the cart. The order stays in "created" until the
// payment callback is verified.
func (sc *StoreController) Checkout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var cart []models.CartItem
	if err := sc.DB.Preload("Book").Where("user_id = ?", userID).Find(&cart).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	items, total, err := store.BuildOrderItems(cart)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	order := models.Order{
		UserID:          userID,
		Receipt:         "order_" + uuid.NewString(),
		Total:           total,
		Status:          "created",
		ShippingAddress: input.ShippingAddress,
		Items:           items,
	}

	if sc.Gateway.Enabled() {
		gatewayOrderID, err := sc.Gateway.CreateOrder(total, order.Receipt)
		if err != nil {
			return utils.InternalServerError(c, "Could not create payment order")
		}
		order.GatewayOrderID = gatewayOrderID
	}

	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	}); err != nil {
		return utils.InternalServerError(c, "Could not create order")
	}

	return utils.Created(c, fiber.Map{
		"order_id":         order.ID,
		"receipt":          order.Receipt,
		"total":            order.Total,
		"gateway_order_id": order.GatewayOrderID,
		"razorpay_key_id":  sc.Cfg.RazorpayKeyID,
	})
}

// VerifyPayment closes the payment loop: the client posts back the gateway's
// payment id and signature, and the order flips to paid only when the
// signature checks out against the key secret.
func (sc *StoreController) VerifyPayment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input struct {
		OrderID           uint   `json:"order_id"`
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var order models.Order
	if err := sc.DB.Preload("Items").First(&order, input.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Order not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if order.UserID != userID {
		return utils.Forbidden(c, "Order belongs to another user")
	}
	if order.Status == "paid" {
		return utils.Conflict(c, "Order is already paid")
	}
	if order.GatewayOrderID == "" || order.GatewayOrderID != input.RazorpayOrderID {
		return utils.BadRequest(c, "Order ID mismatch")
	}

	if !sc.Gateway.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature) {
		order.Status = "failed"
		sc.DB.Save(&order)
		return utils.BadRequest(c, "Invalid payment signature")
	}

	order.Status = "paid"
	order.PaymentID = input.RazorpayPaymentID
	if err := sc.DB.Save(&order).Error; err != nil {
		return utils.InternalServerError(c, "Could not update order")
	}

	// Confirmation failure must not fail the payment.
	var user models.User
	if err := sc.DB.First(&user, userID).Error; err == nil {
		if err := sc.Mailer.ConfirmOrder(user.Email, &order); err != nil {
			sc.Logger.Warn("order confirmation email failed",
				zap.Uint("order_id", order.ID),
				zap.Error(err))
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

func (sc *StoreController) GetMyOrders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var orders []models.Order
	if err := sc.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, orders)
}

// Admin CRUD below.

func (sc *StoreController) CreateBook(c *fiber.Ctx) error {
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if book.Title == "" || book.Price <= 0 {
		return utils.BadRequest(c, "Title and a positive price are required")
	}

	if err := sc.DB.Create(&book).Error; err != nil {
		return utils.InternalServerError(c, "Could not create book")
	}

	return utils.Created(c, book)
}

func (sc *StoreController) UpdateBook(c *fiber.Ctx) error {
	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid book ID")
	}

	var book models.Book
	if err := sc.DB.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Book not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input map[string]interface{}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	allowed := map[string]bool{
		"title": true, "author": true, "description": true, "category": true,
		"price": true, "discount_price": true, "cover_url": true,
		"stock": true, "is_available": true,
	}
	updates := make(map[string]interface{})
	for key, value := range input {
		if allowed[key] {
			updates[key] = value
		}
	}

	if err := sc.DB.Model(&book).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update book")
	}

	return utils.Success(c, fiber.StatusOK, book)
}

func (sc *StoreController) GetAllOrders(c *fiber.Ctx) error {
	status := c.Query("status")

	query := sc.DB.Preload("Items").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, orders)
}
