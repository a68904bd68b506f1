package checkout_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	config "github.com/syberke/TechStore/configs"
	"github.com/syberke/TechStore/internal/checkout"
	"github.com/syberke/TechStore/internal/customers"
	"github.com/syberke/TechStore/internal/models"
	"github.com/syberke/TechStore/internal/orders"
	"github.com/syberke/TechStore/internal/payment"
)

type confirmationCall struct {
	Email   string
	OrderID uint
	Total   int64
}

type fakeNotifier struct {
	calls chan confirmationCall
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{calls: make(chan confirmationCall, 8)}
}

func (f *fakeNotifier) SendOrderConfirmation(ctx context.Context, recipientEmail, customerName string, orderID uint, totalAmount int64) error {
	f.calls <- confirmationCall{Email: recipientEmail, OrderID: orderID, Total: totalAmount}
	return nil
}

// fakeGateway is an httptest-backed Snap endpoint driven through the real
// payment client, so the whole outbound path is exercised.
type fakeGateway struct {
	srv    *httptest.Server
	status int
	token  string

	mu       sync.Mutex
	requests []payment.SnapRequest
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{status: http.StatusCreated, token: "tok_abc"}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req payment.SnapRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		g.mu.Lock()
		g.requests = append(g.requests, req)
		g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if g.status < 200 || g.status >= 300 {
			w.WriteHeader(g.status)
			_ = json.NewEncoder(w).Encode(map[string][]string{"error_messages": {"declined"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": g.token})
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) recorded() []payment.SnapRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.SnapRequest(nil), g.requests...)
}

func setupService(t *testing.T) (*checkout.Service, *gorm.DB, *fakeGateway, *fakeNotifier) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	err = testDB.AutoMigrate(&models.Product{}, &models.Customer{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	gateway := newFakeGateway(t)
	client := payment.NewClient(config.MidtransConfig{
		BaseURL:   gateway.srv.URL,
		ServerKey: "SB-test-key",
		Timeout:   2 * time.Second,
	})

	notifier := newFakeNotifier()
	service := checkout.NewService(
		testDB,
		customers.NewRegistry(testDB),
		orders.NewRepository(testDB),
		client,
		notifier,
	)

	return service, testDB, gateway, notifier
}

func seedProducts(t *testing.T, testDB *gorm.DB) (models.Product, models.Product) {
	keyboard := models.Product{Name: "Mechanical Keyboard", Description: "tenkeyless", Price: 50000, Category: "accessories", Stock: 10}
	mouse := models.Product{Name: "Wireless Mouse", Description: "2.4GHz", Price: 30000, Category: "accessories", Stock: 25}
	require.NoError(t, testDB.Create(&keyboard).Error)
	require.NoError(t, testDB.Create(&mouse).Error)
	return keyboard, mouse
}

func validRequest(keyboard, mouse models.Product) checkout.Request {
	return checkout.Request{
		Customer: checkout.CustomerProfile{
			Name:       "Ana Wijaya",
			Email:      "ana@example.com",
			Phone:      "0811111111",
			Address:    "Jl. Sudirman 1",
			City:       "Jakarta",
			PostalCode: "10110",
		},
		Items: []checkout.CartItem{
			{ProductID: keyboard.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 1},
		},
	}
}

func classOf(t *testing.T, err error) checkout.FailureClass {
	t.Helper()
	require.Error(t, err)
	return checkout.ClassOf(err)
}

func TestCheckoutSuccess(t *testing.T) {
	service, testDB, gateway, notifier := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)

	result, err := service.Checkout(context.Background(), validRequest(keyboard, mouse))

	require.NoError(t, err)
	assert.Equal(t, "tok_abc", result.SessionToken)
	assert.Greater(t, result.OrderID, uint(0))

	// Persisted total matches the pricing calculator output.
	var order models.Order
	require.NoError(t, testDB.Preload("Items").First(&order, result.OrderID).Error)
	assert.Equal(t, int64(130000), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentMethodMidtrans, order.PaymentMethod)
	assert.True(t, strings.HasPrefix(order.ExternalOrderID, "ORDER-"))
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(50000), order.Items[0].Price)
	assert.Equal(t, uint(2), order.Items[0].Quantity)

	// Shipping snapshot captured at order time.
	assert.Equal(t, "Ana Wijaya", order.ShippingName)
	assert.Equal(t, "Jakarta", order.ShippingCity)
	assert.Equal(t, "10110", order.ShippingPostalCode)

	// Gateway saw the server-computed gross amount and line manifest.
	recorded := gateway.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, order.ExternalOrderID, recorded[0].TransactionDetails.OrderID)
	assert.Equal(t, int64(130000), recorded[0].TransactionDetails.GrossAmount)
	require.Len(t, recorded[0].ItemDetails, 2)
	assert.Equal(t, "Mechanical Keyboard", recorded[0].ItemDetails[0].Name)

	// Confirmation mail dispatched asynchronously.
	select {
	case call := <-notifier.calls:
		assert.Equal(t, "ana@example.com", call.Email)
		assert.Equal(t, result.OrderID, call.OrderID)
		assert.Equal(t, int64(130000), call.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an order confirmation to be sent")
	}
}

func TestCheckoutDistinctExternalOrderIDs(t *testing.T) {
	service, testDB, _, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)

	_, err := service.Checkout(context.Background(), validRequest(keyboard, mouse))
	require.NoError(t, err)
	_, err = service.Checkout(context.Background(), validRequest(keyboard, mouse))
	require.NoError(t, err)

	var ids []string
	require.NoError(t, testDB.Model(&models.Order{}).Pluck("external_order_id", &ids).Error)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestCheckoutDuplicateExternalOrderID(t *testing.T) {
	service, testDB, gateway, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)
	checkout.SetExternalIDGenerator(service, func() string { return "ORDER-pinned" })

	_, err := service.Checkout(context.Background(), validRequest(keyboard, mouse))
	require.NoError(t, err)
	require.Len(t, gateway.recorded(), 1)

	_, err = service.Checkout(context.Background(), validRequest(keyboard, mouse))

	assert.Equal(t, checkout.FailureDuplicateOrderID, classOf(t, err))
	assert.ErrorIs(t, err, orders.ErrDuplicateOrderID)

	var f *checkout.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, checkout.StageOrder, f.Stage)

	// The colliding attempt stops at the store: no second gateway call,
	// no second order, no extra lines.
	assert.Len(t, gateway.recorded(), 1)
	var orderCount, itemCount int64
	testDB.Model(&models.Order{}).Count(&orderCount)
	testDB.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(2), itemCount)
}

func TestCheckoutInvalidInput(t *testing.T) {
	service, testDB, gateway, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)

	assertNoWrites := func(t *testing.T) {
		t.Helper()
		var customerCount, orderCount int64
		testDB.Model(&models.Customer{}).Count(&customerCount)
		testDB.Model(&models.Order{}).Count(&orderCount)
		assert.Equal(t, int64(0), customerCount)
		assert.Equal(t, int64(0), orderCount)
		assert.Empty(t, gateway.recorded())
	}

	t.Run("Empty cart", func(t *testing.T) {
		req := validRequest(keyboard, mouse)
		req.Items = nil

		_, err := service.Checkout(context.Background(), req)

		assert.Equal(t, checkout.FailureInvalidInput, classOf(t, err))
		assert.ErrorIs(t, err, checkout.ErrEmptyCart)
		assertNoWrites(t)
	})

	t.Run("Missing customer email", func(t *testing.T) {
		req := validRequest(keyboard, mouse)
		req.Customer.Email = ""

		_, err := service.Checkout(context.Background(), req)

		assert.Equal(t, checkout.FailureInvalidInput, classOf(t, err))
		assert.ErrorIs(t, err, checkout.ErrMissingEmail)
		assertNoWrites(t)
	})

	t.Run("Missing customer name", func(t *testing.T) {
		req := validRequest(keyboard, mouse)
		req.Customer.Name = ""

		_, err := service.Checkout(context.Background(), req)

		assert.Equal(t, checkout.FailureInvalidInput, classOf(t, err))
		assert.ErrorIs(t, err, checkout.ErrMissingName)
		assertNoWrites(t)
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		req := validRequest(keyboard, mouse)
		req.Items[0].Quantity = 0

		_, err := service.Checkout(context.Background(), req)

		assert.Equal(t, checkout.FailureInvalidInput, classOf(t, err))
		assert.ErrorIs(t, err, checkout.ErrInvalidQuantity)
		assertNoWrites(t)
	})

	t.Run("Unknown product id", func(t *testing.T) {
		req := validRequest(keyboard, mouse)
		req.Items[0].ProductID = 99999

		_, err := service.Checkout(context.Background(), req)

		assert.Equal(t, checkout.FailureInvalidInput, classOf(t, err))
		assert.ErrorIs(t, err, checkout.ErrUnknownProduct)
		assertNoWrites(t)
	})
}

func TestCheckoutGatewayRejected(t *testing.T) {
	service, testDB, gateway, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)
	gateway.status = http.StatusPaymentRequired

	_, err := service.Checkout(context.Background(), validRequest(keyboard, mouse))

	assert.Equal(t, checkout.FailureGatewayRejected, classOf(t, err))

	// Documented non-rollback behavior: the order stays pending with no
	// session token, and the customer upsert is not undone.
	var order models.Order
	require.NoError(t, testDB.Preload("Items").First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(130000), order.TotalAmount)
	assert.Len(t, order.Items, 2)

	var customerCount int64
	testDB.Model(&models.Customer{}).Count(&customerCount)
	assert.Equal(t, int64(1), customerCount)
}

func TestCheckoutGatewayUnreachable(t *testing.T) {
	service, testDB, gateway, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)
	gateway.srv.Close() // connection refused

	_, err := service.Checkout(context.Background(), validRequest(keyboard, mouse))

	assert.Equal(t, checkout.FailureGatewayUnreachable, classOf(t, err))

	var order models.Order
	require.NoError(t, testDB.First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestFailureEnvelope(t *testing.T) {
	service, testDB, _, _ := setupService(t)
	keyboard, mouse := seedProducts(t, testDB)

	req := validRequest(keyboard, mouse)
	req.Items = nil
	_, err := service.Checkout(context.Background(), req)

	var f *checkout.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, checkout.StageValidate, f.Stage)
	assert.Equal(t, checkout.FailureInvalidInput, f.Class)
	assert.Contains(t, f.Error(), "validate")
}
