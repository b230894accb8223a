package memberships

import (
	"context"
	"fmt"
	"time"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

const idPrefix = "M"

type Store interface {
	LastID(ctx context.Context) (string, error)
	Insert(ctx context.Context, m *models.Membership) error
	FindByID(ctx context.Context, membershipID string) (*models.Membership, error)
	List(ctx context.Context, f Filter) ([]models.Membership, error)
}

// CustomerLinker resolves the owning customer and points it at a new membership.
type CustomerLinker interface {
	FindByID(ctx context.Context, customerID string) (*models.Customer, error)
	SetMembership(ctx context.Context, customerID, membershipID string) error
}

type Filter struct {
	Type        string
	CustomerID  string
	ActiveSince *time.Time
}

type ListQuery struct {
	Type       string
	CustomerID string
	Active     bool
}

type CreateInput struct {
	CustomerID string   `json:"customerId" validate:"required"`
	Type       string   `json:"type" validate:"required,oneof=Bronze Silver Gold Platinum"`
	StartDate  string   `json:"startDate"`
	ExpiryDate string   `json:"expiryDate" validate:"required"`
	Benefits   []string `json:"benefits"`
}

type Service struct {
	Memberships Store
	Customers   CustomerLinker
	Events      mq.Emitter
	Log         *logger.Logger
	Now         func() time.Time
}

func NewService(memberships Store, customers CustomerLinker, events mq.Emitter, log *logger.Logger) *Service {
	return &Service{
		Memberships: memberships,
		Customers:   customers,
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

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Membership, error) {
	f := Filter{Type: q.Type, CustomerID: q.CustomerID}
	if q.Active {
		now := s.now()
		f.ActiveSince = &now
	}
	return s.Memberships.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, membershipID string) (*models.Membership, error) {
	return s.Memberships.FindByID(ctx, membershipID)
}

// Create issues a membership for an existing customer and links it back
// onto the customer record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Membership, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	now := s.now()
	start := now
	if in.StartDate != "" {
		t, err := utils.ParseTime(in.StartDate)
		if err != nil {
			return nil, err
		}
		start = t
	}
	expiry, err := utils.ParseTime(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if !expiry.After(start) {
		return nil, utils.Invalid("expiryDate must be after startDate")
	}
	if _, err := s.Customers.FindByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	last, err := s.Memberships.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("last membership id: %w", err)
	}
	benefits := in.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	m := &models.Membership{
		MembershipID: utils.NextSequentialID(idPrefix, last),
		CustomerID:   in.CustomerID,
		Type:         in.Type,
		Discount:     models.TierDiscount[in.Type],
		StartDate:    start,
		ExpiryDate:   expiry,
		Benefits:     benefits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Memberships.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	if err := s.Customers.SetMembership(ctx, m.CustomerID, m.MembershipID); err != nil {
		return nil, fmt.Errorf("link membership %s: %w", m.MembershipID, err)
	}
	s.Log.LogDatabase("INSERT", "memberships", fmt.Sprintf("%s %s for %s", m.MembershipID, m.Type, m.CustomerID))
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.MembershipCreated, EntityID: m.MembershipID, Data: m})
	return m, nil
}
