package booking

import (
	"encoding/json"
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

	"ktvadmin/logger"
	"ktvadmin/models"
	"ktvadmin/receipts"
	"ktvadmin/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
}

func newTestRouter(store Store, rooms RoomStore) *httprouter.Router {
	svc, _ := newTestService(store, rooms)
	h := NewHandler(svc, logger.New(io.Discard), receipts.Renderer{}, 5*time.Second)

	router := httprouter.New()
	router.GET("/bookings", h.List)
	router.POST("/bookings", h.Create)
	router.GET("/bookings/:id", h.Get)
	router.PUT("/bookings/:id", h.Update)
	router.DELETE("/bookings/:id", h.Delete)
	router.GET("/bookings/:id/pass", h.Pass)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestCreateBookingHandler(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("FindByID", mock.Anything, "R001").Return(roomR001, nil)
	router := newTestRouter(newMemStore(), rooms)

	rec, env := do(t, router, http.MethodPost, "/bookings",
		`{"customerId":"C001","roomId":"R001","timeSlot":{"startAt":"2025-03-01T18:00","endAt":"2025-03-01T20:00"}}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Booking created successfully", env.Message)

	var b models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "B001", b.BookingID)
	assert.Equal(t, 300.0, b.TotalPrice)
	assert.NotContains(t, string(env.Data), "_id")
}

func TestCreateBookingHandlerErrors(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("FindByID", mock.Anything, "R404").Return(nil, utils.NotFound("Room"))
	router := newTestRouter(newMemStore(), rooms)

	rec, env := do(t, router, http.MethodPost, "/bookings", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", env.Error)

	rec, env = do(t, router, http.MethodPost, "/bookings", `{"roomId":"R001"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "Missing required fields")

	rec, env = do(t, router, http.MethodPost, "/bookings",
		`{"customerId":"C001","roomId":"R404","timeSlot":{"startAt":"2025-03-01T18:00","endAt":"2025-03-01T20:00"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room not found", env.Error)
}

func TestGetAndListBookingHandlers(t *testing.T) {
	store := newMemStore(seeded("B001", models.BookingPending, "R001"), seeded("B002", models.BookingActive, "R001"))
	router := newTestRouter(store, &mockRooms{})

	rec, env := do(t, router, http.MethodGet, "/bookings", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.Count)

	rec, env = do(t, router, http.MethodGet, "/bookings/B002", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"bookingId":"B002"`)

	rec, env = do(t, router, http.MethodGet, "/bookings/B404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found", env.Error)
}

func TestUpdateAndDeleteBookingHandlers(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("SetAvailable", mock.Anything, "R001", false).Return(nil).Once()
	rooms.On("SetAvailable", mock.Anything, "R001", true).Return(nil).Once()
	store := newMemStore(seeded("B003", models.BookingPending, "R001"))
	router := newTestRouter(store, rooms)

	rec, env := do(t, router, http.MethodPut, "/bookings/B003", `{"status":"Active"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Booking B003 updated successfully", env.Message)

	rec, env = do(t, router, http.MethodDelete, "/bookings/B003", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Booking B003 deleted successfully", env.Message)
	rooms.AssertExpectations(t)

	rec, _ = do(t, router, http.MethodDelete, "/bookings/B003", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingPassHandler(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("FindByID", mock.Anything, "R001").Return(roomR001, nil)
	router := newTestRouter(newMemStore(seeded("B001", models.BookingConfirmed, "R001")), rooms)

	rec, _ := do(t, router, http.MethodGet, "/bookings/B001/pass", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
