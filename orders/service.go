package orders

import (
	"context"
	"fmt"
	"math"
	"time"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

const idPrefix = "O"

type Store interface {
	LastID(ctx context.Context) (string, error)
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, f Filter) ([]models.Order, error)
}

type CustomerFinder interface {
	FindByID(ctx context.Context, customerID string) (*models.Customer, error)
}

type MembershipFinder interface {
	FindByID(ctx context.Context, membershipID string) (*models.Membership, error)
}

type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID string, delta int) error
}

type Filter struct {
	CustomerID string
	Status     string
	BookingID  string
	From, To   *time.Time
}

type ListQuery struct {
	CustomerID string
	Status     string
	BookingID  string
	Date       string
}

type CreateInput struct {
	CustomerID    string               `json:"customerId" validate:"required"`
	BookingID     *string              `json:"bookingId"`
	Status        string               `json:"status" validate:"omitempty,oneof=Pending Preparing Ready Delivered Cancelled"`
	OrderDetails  []models.OrderDetail `json:"orderDetails" validate:"required,min=1,dive"`
	Subtotal      *float64             `json:"subtotal" validate:"omitnil,gte=0"`
	PaymentMethod string               `json:"paymentMethod" validate:"omitempty,oneof=Cash Card Transfer E-wallet"`
}

type Service struct {
	Orders      Store
	Customers   CustomerFinder
	Memberships MembershipFinder
	Stock       StockAdjuster
	Events      mq.Emitter
	Log         *logger.Logger
	Now         func() time.Time
}

func NewService(orders Store, customers CustomerFinder, memberships MembershipFinder, stock StockAdjuster, events mq.Emitter, log *logger.Logger) *Service {
	return &Service{
		Orders:      orders,
		Customers:   customers,
		Memberships: memberships,
		Stock:       stock,
		Events:      events,
		Log:         log,
		Now:         time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// List returns matching orders, newest first, with their summed totalAmount.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Order, float64, error) {
	f := Filter{CustomerID: q.CustomerID, Status: q.Status, BookingID: q.BookingID}
	if q.Date != "" {
		from, to, err := utils.DayRange(q.Date)
		if err != nil {
			return nil, 0, err
		}
		f.From, f.To = &from, &to
	}
	list, err := s.Orders.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	var revenue float64
	for _, o := range list {
		revenue += o.TotalAmount
	}
	return list, revenue, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.Orders.FindByID(ctx, orderID)
}

// Create prices the order, applies the customer's membership discount and
// then decrements stock line by line. Nothing is rolled back on failure.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	rate, err := s.discountRate(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	details, subtotal, discount, total := Price(in.OrderDetails, in.Subtotal, rate)

	last, err := s.Orders.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("last order id: %w", err)
	}
	status := in.Status
	if status == "" {
		status = models.OrderPending
	}
	bookingID := in.BookingID
	if bookingID != nil && *bookingID == "" {
		bookingID = nil
	}

	now := s.now()
	o := &models.Order{
		OrderID:       utils.NextSequentialID(idPrefix, last),
		CustomerID:    in.CustomerID,
		BookingID:     bookingID,
		OrderDate:     now,
		Status:        status,
		OrderDetails:  details,
		Subtotal:      subtotal,
		Discount:      discount,
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	s.Log.LogDatabase("INSERT", "orders", fmt.Sprintf("%s total %.2f (discount %.2f)", o.OrderID, o.TotalAmount, o.Discount))

	for _, d := range o.OrderDetails {
		if err := s.Stock.AdjustStock(ctx, d.ProductID, -d.Quantity); err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", d.ProductID, err)
		}
	}
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.OrderCreated, EntityID: o.OrderID, Data: o})
	return o, nil
}

// discountRate is the percent off for the customer's linked membership, or 0
// when the customer or membership cannot be found. Expiry is not checked.
func (s *Service) discountRate(ctx context.Context, customerID string) (float64, error) {
	c, err := s.Customers.FindByID(ctx, customerID)
	if utils.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if c.MembershipID == nil || *c.MembershipID == "" {
		return 0, nil
	}
	m, err := s.Memberships.FindByID(ctx, *c.MembershipID)
	if utils.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return m.Rate(), nil
}

// Price fills in missing line subtotals and derives the order amounts. A
// supplied subtotal wins over the sum of the lines.
func Price(lines []models.OrderDetail, subtotal *float64, ratePercent float64) ([]models.OrderDetail, float64, float64, float64) {
	details := make([]models.OrderDetail, len(lines))
	var sum float64
	for i, d := range lines {
		if d.Subtotal == 0 {
			d.Subtotal = float64(d.Quantity) * d.UnitPrice
		}
		details[i] = d
		sum += d.Subtotal
	}
	sub := sum
	if subtotal != nil {
		sub = *subtotal
	}
	discount := round2(sub * ratePercent / 100)
	return details, sub, discount, round2(sub - discount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
