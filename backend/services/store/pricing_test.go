package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

func TestEffectivePrice(t *testing.T) {
	assert.Equal(t, 299.0, EffectivePrice(&models.Book{Price: 499, DiscountPrice: 299}))
	assert.Equal(t, 499.0, EffectivePrice(&models.Book{Price: 499}))
	// a "discount" above list price is ignored
	assert.Equal(t, 499.0, EffectivePrice(&models.Book{Price: 499, DiscountPrice: 599}))
}

func TestBuildOrderItems(t *testing.T) {
	cart := []models.CartItem{
		{
			BookID:   1,
			Quantity: 2,
			Book:     models.Book{Title: "Quantitative Aptitude", Price: 499, DiscountPrice: 399, IsAvailable: true},
		},
		{
			BookID:   2,
			Quantity: 1,
			Book:     models.Book{Title: "General Knowledge 2024", Price: 250, IsAvailable: true},
		},
	}

	items, total, err := BuildOrderItems(cart)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.InDelta(t, 399*2+250, total, 1e-9)
	assert.Equal(t, "Quantitative Aptitude", items[0].Title)
	assert.InDelta(t, 399, items[0].UnitPrice, 1e-9)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestBuildOrderItems_Errors(t *testing.T) {
	_, _, err := BuildOrderItems(nil)
	assert.Error(t, err)

	_, _, err = BuildOrderItems([]models.CartItem{
		{BookID: 1, Quantity: 0, Book: models.Book{Price: 100, IsAvailable: true}},
	})
	assert.Error(t, err)

	_, _, err = BuildOrderItems([]models.CartItem{
		{BookID: 1, Quantity: 1, Book: models.Book{Price: 100, IsAvailable: false}},
	})
	assert.Error(t, err)
}
