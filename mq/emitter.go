package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ktvadmin/logger"
)

const (
	BookingCreated     = "booking.created"
	BookingUpdated     = "booking.updated"
	BookingDeleted     = "booking.deleted"
	RoomAvailability   = "room.availability"
	OrderCreated       = "order.created"
	MembershipCreated  = "membership.created"
	ProductImageChange = "product.image"
)

// Event is the envelope published on every backend.
type Event struct {
	Type     string      `json:"type"`
	EntityID string      `json:"entityId"`
	Data     interface{} `json:"data,omitempty"`
	At       time.Time   `json:"at"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
func (Nop) Close() error                      { return nil }

// Fanout sends each event to every emitter and joins their errors.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, e := range f {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish emits ev and only logs failures; callers never fail on events.
func Publish(ctx context.Context, e Emitter, log *logger.Logger, ev Event) {
	if e == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if err := e.Emit(ctx, ev); err != nil && log != nil {
		log.Warn("EVENTS", fmt.Sprintf("emit %s %s: %v", ev.Type, ev.EntityID, err))
	}
}
