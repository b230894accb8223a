package customers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/utils"
)

const idPrefix = "C"

type Store interface {
	LastID(ctx context.Context) (string, error)
	Insert(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, customerID string) (*models.Customer, error)
	List(ctx context.Context, q ListQuery) ([]models.Customer, error)
	Update(ctx context.Context, customerID string, set bson.M) (*models.Customer, error)
	Replace(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, customerID string) error
}

// ListQuery mirrors ?search=&sort=&order=&limit=.
type ListQuery struct {
	Search string
	Sort   string
	Order  int
	Limit  int64
}

var sortable = map[string]bool{
	"customerId": true,
	"name":       true,
	"email":      true,
	"phone":      true,
	"createdAt":  true,
	"updatedAt":  true,
}

// Normalize falls back to createdAt descending for unknown sort keys.
func (q ListQuery) Normalize() ListQuery {
	if !sortable[q.Sort] {
		q.Sort = "createdAt"
	}
	if q.Order != 1 {
		q.Order = -1
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return q
}

type CreateInput struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	MembershipID *string `json:"membershipId"`
}

// Patch is a partial update; only non-nil fields are written.
type Patch struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	MembershipID *string `json:"membershipId"`
}

func (p Patch) setDoc() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.MembershipID != nil {
		set["membershipId"] = nonEmpty(p.MembershipID)
	}
	return set
}

// PutInput replaces the whole customer. customerId must equal the URL id.
type PutInput struct {
	CustomerID   string  `json:"customerId" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Address      string  `json:"address" validate:"required"`
	MembershipID *string `json:"membershipId"`
}

type Service struct {
	Store Store
	Log   *logger.Logger
	Now   func() time.Time
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{Store: store, Log: log, Now: time.Now}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Customer, error) {
	return s.Store.List(ctx, q.Normalize())
}

func (s *Service) Get(ctx context.Context, customerID string) (*models.Customer, error) {
	return s.Store.FindByID(ctx, customerID)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Customer, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	last, err := s.Store.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("last customer id: %w", err)
	}
	now := s.Now()
	c := &models.Customer{
		CustomerID:   utils.NextSequentialID(idPrefix, last),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		MembershipID: nonEmpty(in.MembershipID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	s.Log.LogDatabase("INSERT", "customers", c.CustomerID)
	return c, nil
}

// Patch applies the supplied fields and returns the document after update.
func (s *Service) Patch(ctx context.Context, customerID string, p Patch) (*models.Customer, error) {
	if p.Name != nil && *p.Name == "" {
		return nil, utils.Invalid("name cannot be empty")
	}
	if err := utils.Validate(p); err != nil {
		return nil, err
	}
	set := p.setDoc()
	set["updatedAt"] = s.Now()
	return s.Store.Update(ctx, customerID, set)
}

func (s *Service) Put(ctx context.Context, customerID string, in PutInput) (*models.Customer, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.CustomerID != customerID {
		return nil, utils.Invalid("Customer ID in body does not match URL")
	}
	existing, err := s.Store.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c := &models.Customer{
		CustomerID:   customerID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		MembershipID: nonEmpty(in.MembershipID),
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    s.Now(),
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	if err := s.Store.Replace(ctx, c); err != nil {
		return nil, err
	}
	s.Log.LogDatabase("REPLACE", "customers", customerID)
	return c, nil
}

// Delete does not cascade to bookings, orders or memberships.
func (s *Service) Delete(ctx context.Context, customerID string) error {
	if err := s.Store.Delete(ctx, customerID); err != nil {
		return err
	}
	s.Log.LogDatabase("DELETE", "customers", customerID)
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
