package memberships

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/mq"
	"ktvadmin/utils"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

type memStore struct {
	memberships map[string]models.Membership
	lastFilter  Filter
}

func (s *memStore) LastID(context.Context) (string, error) {
	last := ""
	for id := range s.memberships {
		if id > last {
			last = id
		}
	}
	return last, nil
}

func (s *memStore) Insert(_ context.Context, m *models.Membership) error {
	s.memberships[m.MembershipID] = *m
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.Membership, error) {
	m, ok := s.memberships[id]
	if !ok {
		return nil, utils.NotFound("Membership")
	}
	return &m, nil
}

func (s *memStore) List(_ context.Context, f Filter) ([]models.Membership, error) {
	s.lastFilter = f
	out := []models.Membership{}
	for _, m := range s.memberships {
		out = append(out, m)
	}
	return out, nil
}

type linker struct {
	customers map[string]*models.Customer
}

func (l *linker) FindByID(_ context.Context, id string) (*models.Customer, error) {
	c, ok := l.customers[id]
	if !ok {
		return nil, utils.NotFound("Customer")
	}
	return c, nil
}

func (l *linker) SetMembership(_ context.Context, customerID, membershipID string) error {
	c, ok := l.customers[customerID]
	if !ok {
		return utils.NotFound("Customer")
	}
	c.MembershipID = &membershipID
	return nil
}

type recorder struct {
	events []mq.Event
}

func (r *recorder) Emit(_ context.Context, ev mq.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func newTestService() (*Service, *memStore, *linker, *recorder) {
	store := &memStore{memberships: map[string]models.Membership{
		"M007": {MembershipID: "M007", CustomerID: "C002", Type: models.TierBronze},
	}}
	l := &linker{customers: map[string]*models.Customer{
		"C001": {CustomerID: "C001"},
	}}
	events := &recorder{}
	svc := NewService(store, l, events, logger.New(io.Discard))
	svc.Now = func() time.Time { return fixedNow }
	return svc, store, l, events
}

func TestCreateLinksCustomer(t *testing.T) {
	svc, store, l, events := newTestService()

	m, err := svc.Create(context.Background(), CreateInput{
		CustomerID: "C001",
		Type:       models.TierGold,
		ExpiryDate: "2026-03-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "M008", m.MembershipID)
	assert.Equal(t, 20.0, m.Discount)
	assert.Equal(t, fixedNow, m.StartDate)
	assert.Equal(t, 2026, m.ExpiryDate.Year())
	assert.Equal(t, []string{}, m.Benefits)
	assert.Contains(t, store.memberships, "M008")
	require.NotNil(t, l.customers["C001"].MembershipID)
	assert.Equal(t, "M008", *l.customers["C001"].MembershipID)
	require.Len(t, events.events, 1)
	assert.Equal(t, mq.MembershipCreated, events.events[0].Type)
}

func TestCreateRejects(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		check func(error) bool
	}{
		{"missing expiry", CreateInput{CustomerID: "C001", Type: "Gold"}, utils.IsValidation},
		{"unknown tier", CreateInput{CustomerID: "C001", Type: "Diamond", ExpiryDate: "2026-01-01"}, utils.IsValidation},
		{"bad date", CreateInput{CustomerID: "C001", Type: "Gold", ExpiryDate: "next year"}, utils.IsValidation},
		{"expiry before start", CreateInput{CustomerID: "C001", Type: "Gold", StartDate: "2025-06-01", ExpiryDate: "2025-05-01"}, utils.IsValidation},
		{"unknown customer", CreateInput{CustomerID: "C404", Type: "Gold", ExpiryDate: "2026-01-01"}, utils.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, _ := newTestService()
			_, err := svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
			assert.Len(t, store.memberships, 1)
		})
	}
}

func TestListActiveUsesNow(t *testing.T) {
	svc, store, _, _ := newTestService()

	_, err := svc.List(context.Background(), ListQuery{Type: "Gold", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "Gold", store.lastFilter.Type)
	require.NotNil(t, store.lastFilter.ActiveSince)
	assert.Equal(t, fixedNow, *store.lastFilter.ActiveSince)

	_, _ = svc.List(context.Background(), ListQuery{})
	assert.Nil(t, store.lastFilter.ActiveSince)
}

func TestFilterDoc(t *testing.T) {
	assert.Equal(t, bson.M{}, filterDoc(Filter{}))
	assert.Equal(t, bson.M{
		"customerId": "C001",
		"expiryDate": bson.M{"$gte": fixedNow},
	}, filterDoc(Filter{CustomerID: "C001", ActiveSince: &fixedNow}))
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.memberships", mtest.FirstBatch, bson.D{
			{Key: "membershipId", Value: "M001"},
			{Key: "type", Value: "Silver"},
			{Key: "discount", Value: 10.0},
		}))
		m, err := NewMongoStore(mt.Coll).FindByID(context.Background(), "M001")
		require.NoError(mt, err)
		assert.Equal(mt, 10.0, m.Rate())
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.memberships", mtest.FirstBatch))
		_, err := NewMongoStore(mt.Coll).FindByID(context.Background(), "M404")
		assert.True(mt, utils.IsNotFound(err))
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.memberships", mtest.FirstBatch,
			bson.D{{Key: "membershipId", Value: "M002"}},
			bson.D{{Key: "membershipId", Value: "M001"}},
		))
		list, err := NewMongoStore(mt.Coll).List(context.Background(), Filter{})
		require.NoError(mt, err)
		assert.Len(mt, list, 2)
	})
}

func TestMembershipHandlers(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc, logger.New(io.Discard), 5*time.Second)
	router := httprouter.New()
	router.GET("/memberships", h.List)
	router.POST("/memberships", h.Create)
	router.GET("/memberships/:id", h.Get)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memberships",
		strings.NewReader(`{"customerId":"C001","type":"Platinum","expiryDate":"2026-01-01","benefits":["Free drink"]}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var env struct {
		Success bool              `json:"success"`
		Data    models.Membership `json:"data"`
		Message string            `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 30.0, env.Data.Discount)
	assert.Equal(t, "Membership created successfully", env.Message)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memberships?active=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memberships/M404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Membership not found")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memberships", strings.NewReader(`{"type":"Gold"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
