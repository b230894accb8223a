package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"ktvadmin/filemgr"
	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

const defaultStock = 100

type Store interface {
	LastID(ctx context.Context, prefix string) (string, error)
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, f Filter) ([]models.Product, error)
	Update(ctx context.Context, productID string, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
}

// ImageSaver persists an uploaded image and returns where it is served.
type ImageSaver interface {
	Save(src io.Reader) (filemgr.Saved, error)
}

type Filter struct {
	Category  string
	Available *bool
	Search    string
}

type CreateInput struct {
	Name        string   `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description"`
	Stock       *int     `json:"stock" validate:"omitnil,gte=0"`
	Image       string   `json:"image"`
}

// UpdateInput is the PUT /products body; every field is written.
type UpdateInput struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	Available   bool    `json:"available"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Image       string  `json:"image"`
}

// Listing is the list payload: flat data plus the same rows grouped by category.
type Listing struct {
	Products []models.Product
	Grouped  map[string][]models.Product
}

type Service struct {
	Store  Store
	Images ImageSaver
	Events mq.Emitter
	Log    *logger.Logger
	Now    func() time.Time
}

func NewService(store Store, images ImageSaver, events mq.Emitter, log *logger.Logger) *Service {
	return &Service{Store: store, Images: images, Events: events, Log: log, Now: time.Now}
}

// List returns products ordered by category then name.
func (s *Service) List(ctx context.Context, f Filter) (*Listing, error) {
	list, err := s.Store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Listing{Products: list, Grouped: groupByCategory(list)}, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*models.Product, error) {
	return s.Store.FindByID(ctx, productID)
}

// Create picks the id prefix from the category and numbers within it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Product, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	prefix := models.ProductPrefix(in.Category)
	last, err := s.Store.LastID(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("last product id: %w", err)
	}
	stock := defaultStock
	if in.Stock != nil {
		stock = *in.Stock
	}
	now := s.Now()
	p := &models.Product{
		ProductID:   utils.NextSequentialID(prefix, last),
		Name:        in.Name,
		Price:       *in.Price,
		Category:    in.Category,
		Description: in.Description,
		Available:   true,
		Stock:       stock,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	s.Log.LogDatabase("INSERT", "products", p.ProductID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.Product, error) {
	if in.ProductID == "" {
		return nil, utils.Invalid("Product ID is required")
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	set := bson.M{
		"name":        in.Name,
		"price":       in.Price,
		"category":    in.Category,
		"description": in.Description,
		"available":   in.Available,
		"stock":       in.Stock,
		"image":       in.Image,
		"updatedAt":   s.Now(),
	}
	p, err := s.Store.Update(ctx, in.ProductID, set)
	if err != nil {
		return nil, err
	}
	s.Log.LogDatabase("UPDATE", "products", in.ProductID)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	if productID == "" {
		return utils.Invalid("Product ID is required")
	}
	if err := s.Store.Delete(ctx, productID); err != nil {
		return err
	}
	s.Log.LogDatabase("DELETE", "products", productID)
	return nil
}

// SetImage stores src and points the product's image at the saved file.
func (s *Service) SetImage(ctx context.Context, productID string, src io.Reader) (*models.Product, error) {
	if _, err := s.Store.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	saved, err := s.Images.Save(src)
	if errors.Is(err, filemgr.ErrUndecodable) {
		return nil, utils.Invalid("Invalid image: %v", err)
	}
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	p, err := s.Store.Update(ctx, productID, bson.M{"image": saved.URL, "updatedAt": s.Now()})
	if err != nil {
		return nil, err
	}
	s.Log.LogDatabase("UPDATE", "products", productID+" image "+saved.Name)
	mq.Publish(ctx, s.Events, s.Log, mq.Event{Type: mq.ProductImageChange, EntityID: productID, Data: saved})
	return p, nil
}

func groupByCategory(list []models.Product) map[string][]models.Product {
	grouped := map[string][]models.Product{}
	for _, p := range list {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}
