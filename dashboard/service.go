package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"ktvadmin/db"
	"ktvadmin/logger"
	"ktvadmin/models"
)

const (
	popularLimit = 5
	recentLimit  = 5
)

type Service struct {
	Source Source
	Log    *logger.Logger
	Now    func() time.Time
}

func NewService(source Source, log *logger.Logger) *Service {
	return &Service{Source: source, Log: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Build runs every dashboard query concurrently and fails on the first error.
func (s *Service) Build(ctx context.Context) (*models.Dashboard, error) {
	from := now.With(s.now()).BeginningOfDay()
	to := from.AddDate(0, 0, 1)

	var (
		d                   models.Dashboard
		customers, rooms    int64
		available, bookings int64
		active, orders      int64
		revenue             float64
	)
	d.Rooms = []models.Room{}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, coll string, filter bson.M) {
		g.Go(func() error {
			n, err := s.Source.Count(gctx, coll, filter)
			if err != nil {
				return fmt.Errorf("count %s: %w", coll, err)
			}
			*dst = n
			return nil
		})
	}
	count(&customers, db.CustomersCollection, nil)
	count(&rooms, db.RoomsCollection, nil)
	count(&available, db.RoomsCollection, bson.M{"available": true})
	count(&bookings, db.BookingsCollection, bson.M{"bookingAt": bson.M{"$gte": from, "$lt": to}})
	count(&active, db.BookingsCollection, bson.M{"status": models.BookingActive})
	count(&orders, db.OrdersCollection, bson.M{"orderDate": bson.M{"$gte": from, "$lt": to}})

	g.Go(func() (err error) {
		revenue, err = s.Source.Revenue(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		d.PopularProducts, err = s.Source.PopularProducts(gctx, popularLimit)
		return err
	})
	g.Go(func() (err error) {
		d.RoomUtilization, err = s.Source.RoomUtilization(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		d.RecentBookings, err = s.Source.RecentBookings(gctx, recentLimit)
		return err
	})
	g.Go(func() error {
		return s.Source.FindAll(gctx, db.RoomsCollection, &d.Rooms)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Summary = models.DashboardSummary{
		TotalCustomers: customers,
		TotalRooms:     rooms,
		AvailableRooms: available,
		OccupancyRate:  OccupancyRate(rooms, available),
	}
	d.Today = models.TodayStats{
		Bookings:       bookings,
		ActiveBookings: active,
		Orders:         orders,
		Revenue:        revenue,
	}
	return &d, nil
}

// OccupancyRate is the share of rooms not available, as a percent with one
// decimal place.
func OccupancyRate(total, available int64) string {
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(total-available)/float64(total)*100)
}

// AllData fetches every collection concurrently and derives the totals from
// what was fetched.
func (s *Service) AllData(ctx context.Context) (*models.AllData, models.AllDataStats, error) {
	all := &models.AllData{
		Customers:   []models.Customer{},
		Rooms:       []models.Room{},
		Bookings:    []models.Booking{},
		Products:    []models.Product{},
		Orders:      []models.Order{},
		Memberships: []models.Membership{},
	}
	targets := []struct {
		coll string
		out  interface{}
	}{
		{db.CustomersCollection, &all.Customers},
		{db.RoomsCollection, &all.Rooms},
		{db.BookingsCollection, &all.Bookings},
		{db.ProductsCollection, &all.Products},
		{db.OrdersCollection, &all.Orders},
		{db.MembershipsCollection, &all.Memberships},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if err := s.Source.FindAll(gctx, t.coll, t.out); err != nil {
				return fmt.Errorf("fetch %s: %w", t.coll, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, models.AllDataStats{}, err
	}
	return all, Stats(all), nil
}

func Stats(all *models.AllData) models.AllDataStats {
	st := models.AllDataStats{
		TotalCustomers:   len(all.Customers),
		TotalRooms:       len(all.Rooms),
		TotalBookings:    len(all.Bookings),
		TotalProducts:    len(all.Products),
		TotalOrders:      len(all.Orders),
		TotalMemberships: len(all.Memberships),
	}
	for _, r := range all.Rooms {
		if r.Available {
			st.AvailableRooms++
		}
	}
	for _, b := range all.Bookings {
		if b.Status == models.BookingActive {
			st.ActiveBookings++
		}
	}
	return st
}
