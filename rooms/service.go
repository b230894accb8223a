package rooms

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

const idPrefix = "R"

type Store interface {
	LastID(ctx context.Context) (string, error)
	Insert(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, roomID string) (*models.Room, error)
	List(ctx context.Context, f Filter) ([]models.Room, error)
	Update(ctx context.Context, roomID string, set bson.M) (*models.Room, error)
	Delete(ctx context.Context, roomID string) error
}

type Filter struct {
	Available   *bool
	Type        string
	MinCapacity int
}

type CreateInput struct {
	Name         string   `json:"name" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=Standard VIP Family"`
	PricePerHour *float64 `json:"pricePerHour" validate:"required,gte=0"`
	Description  string   `json:"description"`
	Capacity     *int     `json:"capacity" validate:"required,gt=0"`
	Equipment    []string `json:"equipment"`
}

type Patch struct {
	Name         *string   `json:"name" validate:"omitnil,min=1"`
	Type         *string   `json:"type" validate:"omitnil,oneof=Standard VIP Family"`
	PricePerHour *float64  `json:"pricePerHour" validate:"omitnil,gte=0"`
	Description  *string   `json:"description"`
	Available    *bool     `json:"available"`
	Capacity     *int      `json:"capacity" validate:"omitnil,gt=0"`
	Equipment    *[]string `json:"equipment"`
}

// UpdateInput is the PUT /rooms body: the patch plus the target roomId.
type UpdateInput struct {
	RoomID string `json:"roomId"`
	Patch
}

func (p Patch) setDoc() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.PricePerHour != nil {
		set["pricePerHour"] = *p.PricePerHour
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Available != nil {
		set["available"] = *p.Available
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	if p.Equipment != nil {
		set["equipment"] = *p.Equipment
	}
	return set
}

type Service struct {
	Store  Store
	Events mq.Emitter
	Log    *logger.Logger
	Now    func() time.Time
}

func NewService(store Store, events mq.Emitter, log *logger.Logger) *Service {
	return &Service{Store: store, Events: events, Log: log, Now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Room, error) {
	return s.Store.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, roomID string) (*models.Room, error) {
	return s.Store.FindByID(ctx, roomID)
}

// Create stores a new room, always available.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Room, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	last, err := s.Store.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("last room id: %w", err)
	}
	equipment := in.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	now := s.Now()
	room := &models.Room{
		RoomID:       utils.NextSequentialID(idPrefix, last),
		Name:         in.Name,
		Type:         in.Type,
		PricePerHour: *in.PricePerHour,
		Description:  in.Description,
		Available:    true,
		Capacity:     *in.Capacity,
		Equipment:    equipment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Insert(ctx, room); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	s.Log.LogDatabase("INSERT", "rooms", room.RoomID)
	return room, nil
}

// Update applies p to roomID and returns the room after the write.
func (s *Service) Update(ctx context.Context, roomID string, p Patch) (*models.Room, error) {
	if roomID == "" {
		return nil, utils.Invalid("Room ID missing")
	}
	if err := utils.Validate(p); err != nil {
		return nil, err
	}
	set := p.setDoc()
	set["updatedAt"] = s.Now()
	room, err := s.Store.Update(ctx, roomID, set)
	if err != nil {
		return nil, err
	}
	s.Log.LogDatabase("UPDATE", "rooms", roomID)
	if p.Available != nil {
		mq.Publish(ctx, s.Events, s.Log, mq.Event{
			Type:     mq.RoomAvailability,
			EntityID: roomID,
			Data:     map[string]bool{"available": *p.Available},
		})
	}
	return room, nil
}

func (s *Service) Delete(ctx context.Context, roomID string) error {
	if roomID == "" {
		return utils.Invalid("Room ID missing")
	}
	if err := s.Store.Delete(ctx, roomID); err != nil {
		return err
	}
	s.Log.LogDatabase("DELETE", "rooms", roomID)
	return nil
}
