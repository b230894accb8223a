package booking

import (
	"context"
	"fmt"
	"time"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

const idPrefix = "B"

// Store persists bookings keyed by bookingId.
type Store interface {
	LastID(ctx context.Context) (string, error)
	Insert(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, f Filter) ([]models.Booking, error)
	Replace(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, bookingID string) error
}

// RoomStore is the part of the room repository bookings depend on.
type RoomStore interface {
	FindByID(ctx context.Context, roomID string) (*models.Room, error)
	SetAvailable(ctx context.Context, roomID string, available bool) error
}

type Filter struct {
	Status     string
	CustomerID string
	RoomID     string
	From, To   *time.Time
}

type TimeSlotInput struct {
	StartAt string `json:"startAt" validate:"required"`
	EndAt   string `json:"endAt" validate:"required"`
}

type CreateInput struct {
	BookingID  string               `json:"bookingId"`
	CustomerID string               `json:"customerId" validate:"required"`
	RoomID     string               `json:"roomId" validate:"required"`
	TimeSlot   *TimeSlotInput       `json:"timeSlot" validate:"required"`
	Status     models.BookingStatus `json:"status" validate:"omitempty,oneof=Pending Confirmed Active Completed Cancelled"`
}

// UpdateInput holds the fields a PUT may change; nil means keep.
type UpdateInput struct {
	CustomerID *string               `json:"customerId"`
	RoomID     *string               `json:"roomId"`
	TimeSlot   *TimeSlotInput        `json:"timeSlot"`
	Status     *models.BookingStatus `json:"status"`
}

type ListQuery struct {
	Status     string
	CustomerID string
	RoomID     string
	Date       string
}

type Service struct {
	Bookings Store
	Rooms    RoomStore
	Events   mq.Emitter
	Log      *logger.Logger
	Now      func() time.Time
}

func NewService(bookings Store, rooms RoomStore, events mq.Emitter, log *logger.Logger) *Service {
	return &Service{Bookings: bookings, Rooms: rooms, Events: events, Log: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Booking, error) {
	f := Filter{Status: q.Status, CustomerID: q.CustomerID, RoomID: q.RoomID}
	if q.Date != "" {
		from, to, err := utils.DayRange(q.Date)
		if err != nil {
			return nil, err
		}
		f.From, f.To = &from, &to
	}
	return s.Bookings.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Bookings.FindByID(ctx, bookingID)
}

// Create allocates the next B id and prices the slot against the room's
// current hourly rate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.BookingPending
	}
	slot, err := parseSlot(*in.TimeSlot)
	if err != nil {
		return nil, err
	}
	room, err := s.Rooms.FindByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}

	bookingID := in.BookingID
	if bookingID == "" {
		last, err := s.Bookings.LastID(ctx)
		if err != nil {
			return nil, fmt.Errorf("last booking id: %w", err)
		}
		bookingID = utils.NextSequentialID(idPrefix, last)
	}

	now := s.now()
	b := &models.Booking{
		BookingID:  bookingID,
		CustomerID: in.CustomerID,
		RoomID:     room.RoomID,
		BookingAt:  slot.StartAt,
		TimeSlot:   slot,
		Duration:   slot.Hours(),
		TotalPrice: slot.Hours() * room.PricePerHour,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Bookings.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	s.Log.LogBooking("CREATE", b.BookingID, fmt.Sprintf("room %s, %.2fh, status %s", b.RoomID, b.Duration, b.Status))
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.BookingCreated, EntityID: b.BookingID, Data: b})

	if status.Occupying() {
		if err := s.setRoomAvailable(ctx, b.RoomID, false); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Update merges in over the stored booking. A new time slot reprices the
// booking; a status change frees or occupies rooms. The writes are not atomic.
func (s *Service) Update(ctx context.Context, bookingID string, in UpdateInput) (*models.Booking, error) {
	existing, err := s.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if in.CustomerID != nil {
		if *in.CustomerID == "" {
			return nil, utils.Invalid("customerId cannot be empty")
		}
		updated.CustomerID = *in.CustomerID
	}
	if in.RoomID != nil {
		if *in.RoomID == "" {
			return nil, utils.Invalid("roomId cannot be empty")
		}
		updated.RoomID = *in.RoomID
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, utils.Invalid("Invalid fields: status (one of Pending Confirmed Active Completed Cancelled)")
		}
		updated.Status = *in.Status
	}

	roomChanged := updated.RoomID != existing.RoomID
	if roomChanged || in.TimeSlot != nil {
		room, err := s.Rooms.FindByID(ctx, updated.RoomID)
		if err != nil {
			return nil, err
		}
		if in.TimeSlot != nil {
			slot, err := parseSlot(*in.TimeSlot)
			if err != nil {
				return nil, err
			}
			updated.TimeSlot = slot
			updated.BookingAt = slot.StartAt
			updated.Duration = slot.Hours()
			updated.TotalPrice = slot.Hours() * room.PricePerHour
		}
	}
	updated.UpdatedAt = s.now()

	if err := s.Bookings.Replace(ctx, &updated); err != nil {
		return nil, fmt.Errorf("replace booking: %w", err)
	}
	s.Log.LogBooking("UPDATE", bookingID, fmt.Sprintf("status %s -> %s", existing.Status, updated.Status))
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.BookingUpdated, EntityID: bookingID, Data: &updated})

	if updated.Status != existing.Status {
		if existing.Status.Occupying() {
			if err := s.setRoomAvailable(ctx, existing.RoomID, true); err != nil {
				return nil, err
			}
		}
		if updated.Status.Occupying() {
			if err := s.setRoomAvailable(ctx, updated.RoomID, false); err != nil {
				return nil, err
			}
		}
	}
	return &updated, nil
}

// Delete removes the booking and frees its room when it was holding one.
// A missing booking leaves every room untouched.
func (s *Service) Delete(ctx context.Context, bookingID string) error {
	existing, err := s.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.Bookings.Delete(ctx, bookingID); err != nil {
		return err
	}
	s.Log.LogBooking("DELETE", bookingID, "status "+string(existing.Status))
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.BookingDeleted, EntityID: bookingID})

	if existing.Status.Occupying() {
		return s.setRoomAvailable(ctx, existing.RoomID, true)
	}
	return nil
}

func (s *Service) setRoomAvailable(ctx context.Context, roomID string, available bool) error {
	if err := s.Rooms.SetAvailable(ctx, roomID, available); err != nil {
		return fmt.Errorf("set room %s available=%t: %w", roomID, available, err)
	}
	mq.Publish(ctx, s.Events, s.Log, mq.Event{
		Type:     mq.RoomAvailability,
		EntityID: roomID,
		Data:     map[string]bool{"available": available},
	})
	return nil
}

func parseSlot(in TimeSlotInput) (models.TimeSlot, error) {
	start, err := utils.ParseTime(in.StartAt)
	if err != nil {
		return models.TimeSlot{}, utils.Invalid("Invalid timeSlot.startAt %q", in.StartAt)
	}
	end, err := utils.ParseTime(in.EndAt)
	if err != nil {
		return models.TimeSlot{}, utils.Invalid("Invalid timeSlot.endAt %q", in.EndAt)
	}
	if !end.After(start) {
		return models.TimeSlot{}, utils.Invalid("timeSlot.endAt must be after timeSlot.startAt")
	}
	return models.TimeSlot{StartAt: start, EndAt: end}, nil
}
