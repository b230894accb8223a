package booking

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"ktvadmin/logger"
	"ktvadmin/receipts"
	"ktvadmin/utils"
)

type Handler struct {
	svc     *Service
	log     *logger.Logger
	printer receipts.Renderer
	timeout time.Duration
}

func NewHandler(svc *Service, log *logger.Logger, printer receipts.Renderer, timeout time.Duration) *Handler {
	return &Handler{svc: svc, log: log, printer: printer, timeout: timeout}
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// GET /bookings?status=&customerId=&roomId=&date=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	bookings, err := h.svc.List(ctx, ListQuery{
		Status:     q.Get("status"),
		CustomerID: q.Get("customerId"),
		RoomID:     q.Get("roomId"),
		Date:       q.Get("date"),
	})
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to fetch bookings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"data":    bookings,
		"count":   len(bookings),
	})
}

// GET /bookings/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	b, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to fetch booking")
		return
	}
	utils.RespondOK(w, http.StatusOK, b, "")
}

// POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	b, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to create booking")
		return
	}
	utils.RespondOK(w, http.StatusCreated, b, "Booking created successfully")
}

// PUT /bookings/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in UpdateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	id := ps.ByName("id")
	b, err := h.svc.Update(ctx, id, in)
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to update booking")
		return
	}
	utils.RespondOK(w, http.StatusOK, b, fmt.Sprintf("Booking %s updated successfully", id))
}

// DELETE /bookings/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	id := ps.ByName("id")
	if err := h.svc.Delete(ctx, id); err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to delete booking")
		return
	}
	utils.RespondOK(w, http.StatusOK, nil, fmt.Sprintf("Booking %s deleted successfully", id))
}

// GET /bookings/:id/pass renders a printable pass with a QR code.
func (h *Handler) Pass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	b, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to fetch booking")
		return
	}
	room, err := h.svc.Rooms.FindByID(ctx, b.RoomID)
	if err != nil && !utils.IsNotFound(err) {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to fetch room")
		return
	}
	body, err := h.printer.BookingPass(b, room)
	if err != nil {
		utils.HandleError(w, h.log, "BOOKING", err, "Failed to generate booking pass")
		return
	}
	receipts.WritePDF(w, "booking-"+b.BookingID+".pdf", body)
}
