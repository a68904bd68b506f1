// Package orders persists order aggregates: a header plus its line items.
package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/syberke/TechStore/internal/models"
)

var (
	// ErrNoItems rejects order creation up front: an order with zero lines
	// is an invalid end state for a checkout.
	ErrNoItems = errors.New("order must contain at least one item")

	// ErrDuplicateOrderID means the external order id collided with an
	// existing order. The caller must not open a gateway session for it.
	ErrDuplicateOrderID = errors.New("external order id already exists")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create writes the order header and its items in a single transaction.
// A failure on either write rolls back both, so no orphan header can be
// left behind. Items get their OrderID assigned from the created header.
func (r *Repository) Create(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateOrderID
			}
			return fmt.Errorf("create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}

		if err := tx.CreateInBatches(&items, len(items)).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		return nil
	})
}
