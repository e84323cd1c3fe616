package store

import (
	"fmt"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// EffectivePrice is the discount price when one is set, otherwise the list
// price.
func EffectivePrice(book *models.Book) float64 {
	if book.DiscountPrice > 0 && book.DiscountPrice < book.Price {
		return book.DiscountPrice
	}
	return book.Price
}

// BuildOrderItems turns cart lines into order items with price snapshots and
// returns the order total. Empty carts and non-positive quantities are
// caller errors.
func BuildOrderItems(cart []models.CartItem) ([]models.OrderItem, float64, error) {
	if len(cart) == 0 {
		return nil, 0, fmt.Errorf("cart is empty")
	}

	items := make([]models.OrderItem, 0, len(cart))
	total := 0.0
	for i := range cart {
		line := &cart[i]
		if line.Quantity <= 0 {
			return nil, 0, fmt.Errorf("invalid quantity %d for book %d", line.Quantity, line.BookID)
		}
		if !line.Book.IsAvailable {
			return nil, 0, fmt.Errorf("book %d is not available", line.BookID)
		}

		price := EffectivePrice(&line.Book)
		total += price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			BookID:    line.BookID,
			Title:     line.Book.Title,
			UnitPrice: price,
			Quantity:  line.Quantity,
		})
	}

	return items, total, nil
}
