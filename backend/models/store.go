package models

import "gorm.io/gorm"

type Book struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Author        string
	Description   string
	Category      string
	Price         float64 `gorm:"not null"`
	DiscountPrice float64
	CoverURL      string
	Stock         int
	IsAvailable   bool `gorm:"default:true"`
}

type StudyMaterial struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	Category    string
	FileURL     string
	Price       float64
	IsFree      bool `gorm:"default:false"`
}

type CartItem struct {
	gorm.Model
	UserID   uint `gorm:"not null;index:idx_cart_user_book"`
	BookID   uint `gorm:"not null;index:idx_cart_user_book"`
	Book     Book
	Quantity int `gorm:"default:1"`
}

// Order statuses move created -> paid (or stay created when payment never
// completes). Payment identifiers come from the gateway.
type Order struct {
	gorm.Model
	UserID          uint   `gorm:"not null"`
	Receipt         string `gorm:"unique"`
	Total           float64
	Status          string `gorm:"default:created"` // created, paid, failed
	GatewayOrderID  string
	PaymentID       string
	ShippingAddress string
	Items           []OrderItem
}

type OrderItem struct {
	gorm.Model
	OrderID   uint
	BookID    uint
	Title     string  // snapshot, book may change later
	UnitPrice float64 // snapshot of the effective price at order time
	Quantity  int
}

type MaterialPurchase struct {
	gorm.Model
	UserID          uint `gorm:"index:idx_purchase_user_material"`
	StudyMaterialID uint `gorm:"index:idx_purchase_user_material"`
	OrderID         uint
}
