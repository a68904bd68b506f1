package models

import "time"

const (
	OrderStatusPending = "pending"

	PaymentMethodMidtrans = "midtrans"
)

// Order carries a shipping snapshot taken at creation time, so later edits
// to the customer record never change a past order's shipping data.
// ExternalOrderID is the correlation key shared with the payment gateway;
// it is distinct from the primary key and unique for the life of the store.
type Order struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	CustomerID      uint     `gorm:"index;not null" json:"customer_id"`
	Customer        Customer `json:"-"`
	TotalAmount     int64    `gorm:"not null" json:"total_amount"`
	Status          string   `gorm:"not null" json:"status"`
	PaymentMethod   string   `gorm:"not null" json:"payment_method"`
	ExternalOrderID string   `gorm:"uniqueIndex;not null" json:"external_order_id"`

	ShippingName       string `gorm:"not null" json:"shipping_name"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingPostalCode string `json:"shipping_postal_code"`

	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem records the unit price at order time; immutable once written.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Quantity  uint      `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
