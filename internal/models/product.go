package models

import "time"

// Product prices are stored in whole rupiah (no minor units).
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `gorm:"index;not null" json:"category"`
	Stock       uint      `gorm:"default:0" json:"stock"` // display only, never reserved
	CreatedAt   time.Time `json:"created_at"`
}
