// Package checkout sequences a checkout attempt: price the cart, upsert the
// customer, persist the order with its lines, then open a payment session
// with the gateway. Strictly sequential, no retries, no compensation across
// stages.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/syberke/TechStore/internal/customers"
	"github.com/syberke/TechStore/internal/metrics"
	"github.com/syberke/TechStore/internal/models"
	"github.com/syberke/TechStore/internal/orders"
	"github.com/syberke/TechStore/internal/payment"
	"github.com/syberke/TechStore/internal/pricing"
)

// GatewayClient opens a payment session and returns the opaque session token.
type GatewayClient interface {
	CreateTransaction(ctx context.Context, req payment.SnapRequest) (string, error)
}

// ConfirmationSender dispatches the order-confirmation email. Failures are
// logged and never fail the checkout.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, recipientEmail, customerName string, orderID uint, totalAmount int64) error
}

type CustomerProfile struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

// CartItem references a product by id only; unit prices always come from the
// server-held product rows, never from the caller.
type CartItem struct {
	ProductID uint
	Quantity  int
}

type Request struct {
	Customer CustomerProfile
	Items    []CartItem
}

type Result struct {
	OrderID      uint
	SessionToken string
}

type Service struct {
	db       *gorm.DB
	registry *customers.Registry
	orders   *orders.Repository
	gateway  GatewayClient
	notifier ConfirmationSender

	// newExternalID mints the gateway correlation id for an attempt.
	// Random by default; replaceable so a collision can be provoked.
	newExternalID func() string
}

// NewService wires the orchestrator. notifier may be nil when confirmation
// mail is not configured.
func NewService(db *gorm.DB, registry *customers.Registry, repo *orders.Repository, gateway GatewayClient, notifier ConfirmationSender) *Service {
	return &Service{
		db:       db,
		registry: registry,
		orders:   repo,
		gateway:  gateway,
		notifier: notifier,
		newExternalID: func() string {
			return "ORDER-" + uuid.NewString()
		},
	}
}

// Checkout runs one end-to-end checkout attempt. A failure after the order
// commit leaves a pending order with no gateway session; that orphan is
// logged, not rolled back, and the caller must restart from the cart with a
// fresh attempt.
func (s *Service) Checkout(ctx context.Context, req Request) (result *Result, err error) {
	timer := prometheus.NewTimer(metrics.CheckoutDuration)
	defer func() {
		timer.ObserveDuration()
		outcome := "success"
		if err != nil {
			outcome = string(ClassOf(err))
		}
		metrics.CheckoutAttempts.WithLabelValues(outcome).Inc()
	}()

	if err := validate(req); err != nil {
		return nil, fail(FailureInvalidInput, StageValidate, err)
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			return nil, fail(FailureInvalidInput, StageValidate, err)
		}
		return nil, fail(FailurePersistence, StageValidate, err)
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, pricing.Line{
			UnitPrice: products[item.ProductID].Price,
			Quantity:  item.Quantity,
		})
	}
	total, err := pricing.Total(lines)
	if err != nil {
		return nil, fail(FailureInvalidInput, StageValidate, err)
	}

	customer, err := s.registry.Upsert(ctx, req.Customer.Email, req.Customer.Name, req.Customer.Phone)
	if err != nil {
		if errors.Is(err, customers.ErrEmailRequired) {
			return nil, fail(FailureInvalidInput, StageCustomer, err)
		}
		return nil, fail(FailurePersistence, StageCustomer, err)
	}

	externalID := s.newExternalID()

	order := &models.Order{
		CustomerID:         customer.ID,
		TotalAmount:        total,
		Status:             models.OrderStatusPending,
		PaymentMethod:      models.PaymentMethodMidtrans,
		ExternalOrderID:    externalID,
		ShippingName:       req.Customer.Name,
		ShippingPhone:      req.Customer.Phone,
		ShippingAddress:    req.Customer.Address,
		ShippingCity:       req.Customer.City,
		ShippingPostalCode: req.Customer.PostalCode,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  uint(item.Quantity),
			Price:     products[item.ProductID].Price,
		})
	}

	if err := s.orders.Create(ctx, order, items); err != nil {
		if errors.Is(err, orders.ErrDuplicateOrderID) {
			return nil, fail(FailureDuplicateOrderID, StageOrder, err)
		}
		return nil, fail(FailurePersistence, StageOrder, err)
	}

	token, err := s.gateway.CreateTransaction(ctx, s.buildSnapRequest(externalID, total, req, products))
	if err != nil {
		// The order is already committed; it stays pending with no
		// session (orphan order), visible to a later reconciliation.
		logrus.WithFields(logrus.Fields{
			"order_id":          order.ID,
			"external_order_id": externalID,
		}).WithError(err).Warn("order left pending without a payment session")

		if errors.Is(err, payment.ErrGatewayUnreachable) {
			return nil, fail(FailureGatewayUnreachable, StageGateway, err)
		}
		return nil, fail(FailureGatewayRejected, StageGateway, err)
	}

	if s.notifier != nil {
		go func(email, name string, orderID uint, amount int64) {
			if err := s.notifier.SendOrderConfirmation(context.Background(), email, name, orderID, amount); err != nil {
				logrus.WithField("order_id", orderID).WithError(err).Error("failed to send order confirmation")
			}
		}(customer.Email, customer.Name, order.ID, total)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"external_order_id": externalID,
		"total_amount":      total,
	}).Info("checkout completed")

	return &Result{OrderID: order.ID, SessionToken: token}, nil
}

// validate rejects bad input before any write occurs.
func validate(req Request) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	if req.Customer.Name == "" {
		return ErrMissingName
	}
	if req.Customer.Email == "" {
		return ErrMissingEmail
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if item.ProductID == 0 {
			return ErrUnknownProduct
		}
	}
	return nil
}

func (s *Service) loadProducts(ctx context.Context, items []CartItem) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var rows []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	products := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		products[p.ID] = p
	}
	for _, item := range items {
		if _, ok := products[item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownProduct, item.ProductID)
		}
	}

	return products, nil
}

func (s *Service) buildSnapRequest(externalID string, total int64, req Request, products map[uint]models.Product) payment.SnapRequest {
	itemDetails := make([]payment.ItemDetail, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[item.ProductID]
		itemDetails = append(itemDetails, payment.ItemDetail{
			ID:       fmt.Sprint(product.ID),
			Price:    product.Price,
			Quantity: item.Quantity,
			Name:     product.Name,
		})
	}

	return payment.SnapRequest{
		TransactionDetails: payment.TransactionDetails{
			OrderID:     externalID,
			GrossAmount: total,
		},
		CustomerDetails: payment.CustomerDetails{
			FirstName: req.Customer.Name,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		ItemDetails: itemDetails,
	}
}
