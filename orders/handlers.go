package orders

import (
	"context"
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

// GET /orders?customerId=&status=&bookingId=&date=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	list, revenue, err := h.svc.List(ctx, ListQuery{
		CustomerID: q.Get("customerId"),
		Status:     q.Get("status"),
		BookingID:  q.Get("bookingId"),
		Date:       q.Get("date"),
	})
	if err != nil {
		utils.HandleError(w, h.log, "ORDER", err, "Failed to fetch orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":      true,
		"count":        len(list),
		"totalRevenue": revenue,
		"data":         list,
	})
}

// GET /orders/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	o, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "ORDER", err, "Failed to fetch order")
		return
	}
	utils.RespondOK(w, http.StatusOK, o, "")
}

// POST /orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	o, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "ORDER", err, "Failed to create order")
		return
	}
	utils.RespondOK(w, http.StatusCreated, o, "Order created successfully")
}

// GET /orders/:id/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	o, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "ORDER", err, "Failed to fetch order")
		return
	}
	body, err := h.printer.OrderReceipt(o)
	if err != nil {
		utils.HandleError(w, h.log, "ORDER", err, "Failed to generate receipt")
		return
	}
	receipts.WritePDF(w, "receipt-"+o.OrderID+".pdf", body)
}
