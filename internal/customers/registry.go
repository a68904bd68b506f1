// Package customers is the registry of customer records, keyed by email.
package customers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/syberke/TechStore/internal/models"
)

var ErrEmailRequired = errors.New("customer email is required")

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Upsert creates the customer or, if a row with that email already exists,
// overwrites its name and phone (last write wins). Conflict resolution
// happens inside the database via the unique index on email, so concurrent
// calls with the same email cannot create duplicates.
func (r *Registry) Upsert(ctx context.Context, email, name, phone string) (*models.Customer, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	customer := models.Customer{
		Email: email,
		Name:  name,
		Phone: phone,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "updated_at"}),
	}).Create(&customer).Error
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	// The primary key is not populated on every driver when the insert hit
	// the conflict path, so re-read by the natural key.
	var saved models.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("load customer after upsert: %w", err)
	}

	return &saved, nil
}
