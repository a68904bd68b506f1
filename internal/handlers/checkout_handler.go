package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syberke/TechStore/internal/checkout"
)

type CheckoutHandler struct {
	service *checkout.Service
}

func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

type CheckoutProduct struct {
	ID uint `json:"id"`
}

type CheckoutItem struct {
	Product  CheckoutProduct `json:"product"`
	Quantity int             `json:"quantity"`
}

type CheckoutCustomer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// CheckoutRequest mirrors the storefront checkout payload. The product block
// may carry name and price from the client, but only the id is trusted.
type CheckoutRequest struct {
	Customer CheckoutCustomer `json:"customer"`
	Items    []CheckoutItem   `json:"items"`
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request data"})
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), toServiceRequest(req))
	if err != nil {
		status, message := failureResponse(err)
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"snapToken": result.SessionToken,
		"orderId":   result.OrderID,
	})
}

func toServiceRequest(req CheckoutRequest) checkout.Request {
	items := make([]checkout.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, checkout.CartItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
		})
	}

	return checkout.Request{
		Customer: checkout.CustomerProfile{
			Name:       req.Customer.Name,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			Address:    req.Customer.Address,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
		},
		Items: items,
	}
}

// failureResponse maps a checkout failure class to an HTTP status and a
// caller-safe message. Only invalid-input detail is client-correctable;
// everything else stays generic.
func failureResponse(err error) (int, string) {
	var f *checkout.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError, "internal server error"
	}

	switch f.Class {
	case checkout.FailureInvalidInput:
		return http.StatusBadRequest, f.Err.Error()
	case checkout.FailureDuplicateOrderID:
		return http.StatusConflict, "duplicate order id"
	case checkout.FailureGatewayRejected:
		return http.StatusBadGateway, "failed to create payment"
	case checkout.FailureGatewayUnreachable:
		return http.StatusGatewayTimeout, "payment gateway unreachable"
	default:
		return http.StatusInternalServerError, "failed to process checkout"
	}
}
