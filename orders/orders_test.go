package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/receipts"
	"ktvadmin/utils"
)

var fixedNow = time.Date(2025, 3, 1, 21, 30, 0, 0, time.Local)

type memOrders struct {
	orders map[string]models.Order
	list   []models.Order
	lastF  Filter
}

func newMemOrders(seed ...models.Order) *memOrders {
	s := &memOrders{orders: map[string]models.Order{}}
	for _, o := range seed {
		s.orders[o.OrderID] = o
	}
	return s
}

func (s *memOrders) LastID(context.Context) (string, error) {
	last := ""
	for id := range s.orders {
		if id > last {
			last = id
		}
	}
	return last, nil
}

func (s *memOrders) Insert(_ context.Context, o *models.Order) error {
	s.orders[o.OrderID] = *o
	return nil
}

func (s *memOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, utils.NotFound("Order")
	}
	return &o, nil
}

func (s *memOrders) List(_ context.Context, f Filter) ([]models.Order, error) {
	s.lastF = f
	return s.list, nil
}

type customerMap map[string]models.Customer

func (m customerMap) FindByID(_ context.Context, id string) (*models.Customer, error) {
	c, ok := m[id]
	if !ok {
		return nil, utils.NotFound("Customer")
	}
	return &c, nil
}

type membershipMap map[string]models.Membership

func (m membershipMap) FindByID(_ context.Context, id string) (*models.Membership, error) {
	ms, ok := m[id]
	if !ok {
		return nil, utils.NotFound("Membership")
	}
	return &ms, nil
}

type mockStock struct {
	mock.Mock
}

func (m *mockStock) AdjustStock(ctx context.Context, productID string, delta int) error {
	return m.Called(ctx, productID, delta).Error(0)
}

type nopEvents struct{}

func (nopEvents) Emit(context.Context, mq.Event) error { return nil }
func (nopEvents) Close() error                          { return nil }

func ptr[T any](v T) *T { return &v }

func newTestService(store Store, stock StockAdjuster) *Service {
	silver := "M001"
	customers := customerMap{
		"C001": {CustomerID: "C001", MembershipID: &silver},
		"C002": {CustomerID: "C002"},
		"C003": {CustomerID: "C003", MembershipID: ptr("M404")},
		"C004": {CustomerID: "C004", MembershipID: ptr("M002")},
	}
	memberships := membershipMap{
		"M001": {MembershipID: "M001", Type: models.TierSilver, Discount: 10},
		"M002": {MembershipID: "M002", Type: models.TierGold},
	}
	svc := NewService(store, customers, memberships, stock, nopEvents{}, logger.New(io.Discard))
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func TestPrice(t *testing.T) {
	lines := []models.OrderDetail{
		{ProductID: "D001", Quantity: 2, UnitPrice: 25},
		{ProductID: "F001", Quantity: 1, UnitPrice: 50, Subtotal: 50},
	}

	details, sub, discount, total := Price(lines, nil, 10)
	assert.Equal(t, 50.0, details[0].Subtotal)
	assert.Equal(t, 100.0, sub)
	assert.Equal(t, 10.0, discount)
	assert.Equal(t, 90.0, total)
	assert.Equal(t, 0.0, lines[0].Subtotal, "input lines are not mutated")

	_, sub, discount, total = Price(lines, ptr(200.0), 0)
	assert.Equal(t, 200.0, sub)
	assert.Equal(t, 0.0, discount)
	assert.Equal(t, 200.0, total)

	_, _, discount, total = Price([]models.OrderDetail{{Quantity: 3, UnitPrice: 33.3}}, nil, 5)
	assert.Equal(t, 5.0, discount)
	assert.Equal(t, 94.9, total)
}

func TestCreateAppliesSilverDiscount(t *testing.T) {
	stock := &mockStock{}
	stock.On("AdjustStock", mock.Anything, "D001", -2).Return(nil).Once()
	stock.On("AdjustStock", mock.Anything, "F001", -1).Return(nil).Once()
	store := newMemOrders(models.Order{OrderID: "O041"})
	svc := newTestService(store, stock)

	o, err := svc.Create(context.Background(), CreateInput{
		CustomerID: "C001",
		BookingID:  ptr("B003"),
		OrderDetails: []models.OrderDetail{
			{ProductID: "D001", ProductName: "Cola", Quantity: 2, UnitPrice: 25},
			{ProductID: "F001", ProductName: "Fries", Quantity: 1, UnitPrice: 50},
		},
		Subtotal:      ptr(100.0),
		PaymentMethod: "Cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "O042", o.OrderID)
	assert.Equal(t, 100.0, o.Subtotal)
	assert.Equal(t, 10.0, o.Discount)
	assert.Equal(t, 90.0, o.TotalAmount)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, fixedNow, o.OrderDate)
	assert.Equal(t, "B003", *o.BookingID)
	stock.AssertExpectations(t)
}

func TestCreateDiscountSources(t *testing.T) {
	line := []models.OrderDetail{{ProductID: "S001", Quantity: 1, UnitPrice: 100}}
	tests := []struct {
		customer string
		discount float64
	}{
		{"C002", 0},  // no membership
		{"C003", 0},  // dangling membership id
		{"C004", 20}, // stored discount unset, tier table applies
		{"C999", 0},  // unknown customer
	}
	for _, tt := range tests {
		t.Run(tt.customer, func(t *testing.T) {
			stock := &mockStock{}
			stock.On("AdjustStock", mock.Anything, "S001", -1).Return(nil)
			svc := newTestService(newMemOrders(), stock)

			o, err := svc.Create(context.Background(), CreateInput{CustomerID: tt.customer, OrderDetails: line})
			require.NoError(t, err)
			assert.Equal(t, tt.discount, o.Discount)
			assert.Equal(t, 100-tt.discount, o.TotalAmount)
			assert.Nil(t, o.BookingID)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemOrders(), &mockStock{})

	_, err := svc.Create(context.Background(), CreateInput{CustomerID: "C001"})
	assert.True(t, utils.IsValidation(err))
	assert.Contains(t, err.Error(), "orderDetails")

	_, err = svc.Create(context.Background(), CreateInput{
		CustomerID:   "C001",
		OrderDetails: []models.OrderDetail{{ProductID: "D001", Quantity: 0, UnitPrice: 10}},
	})
	assert.True(t, utils.IsValidation(err))
	assert.Contains(t, err.Error(), "quantity")

	_, err = svc.Create(context.Background(), CreateInput{
		CustomerID:    "C001",
		OrderDetails:  []models.OrderDetail{{ProductID: "D001", Quantity: 1}},
		PaymentMethod: "Cheque",
	})
	assert.Contains(t, err.Error(), "paymentMethod")
}

func TestCreateStockFailureSurfaces(t *testing.T) {
	stock := &mockStock{}
	stock.On("AdjustStock", mock.Anything, "D001", -1).Return(errors.New("connection reset"))
	store := newMemOrders()
	svc := newTestService(store, stock)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:   "C002",
		OrderDetails: []models.OrderDetail{{ProductID: "D001", Quantity: 1, UnitPrice: 10}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrement stock for D001")
	assert.Len(t, store.orders, 1, "order stays written")
}

func TestListSumsRevenue(t *testing.T) {
	store := newMemOrders()
	store.list = []models.Order{{OrderID: "O002", TotalAmount: 90}, {OrderID: "O001", TotalAmount: 45.5}}
	svc := newTestService(store, &mockStock{})

	list, revenue, err := svc.List(context.Background(), ListQuery{Status: "Delivered", Date: "2025-03-01"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 135.5, revenue)
	assert.Equal(t, "Delivered", store.lastF.Status)
	require.NotNil(t, store.lastF.From)
	assert.Equal(t, 1, store.lastF.From.Day())
}

func TestFilterDoc(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)
	assert.Equal(t, bson.M{
		"customerId": "C001",
		"bookingId":  "B002",
		"orderDate":  bson.M{"$gte": from, "$lte": to},
	}, filterDoc(Filter{CustomerID: "C001", BookingID: "B002", From: &from, To: &to}))
}

func TestOrderHandlers(t *testing.T) {
	stock := &mockStock{}
	stock.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store := newMemOrders()
	store.list = []models.Order{{OrderID: "O001", TotalAmount: 90}}
	h := NewHandler(newTestService(store, stock), logger.New(io.Discard), receipts.Renderer{}, 5*time.Second)
	router := httprouter.New()
	router.GET("/orders", h.List)
	router.POST("/orders", h.Create)
	router.GET("/orders/:id", h.Get)
	router.GET("/orders/:id/receipt", h.Receipt)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"customerId":"C001","subtotal":100,"orderDetails":[{"productId":"D001","quantity":4,"unitPrice":25}]}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var env struct {
		Data    models.Order `json:"data"`
		Message string       `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 90.0, env.Data.TotalAmount)
	assert.Equal(t, "Order created successfully", env.Message)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	var list map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 90.0, list["totalRevenue"])
	assert.Equal(t, 1.0, list["count"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+env.Data.OrderID+"/receipt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/O404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
