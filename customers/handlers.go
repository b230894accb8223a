package customers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"ktvadmin/logger"
	"ktvadmin/utils"
)

type Handler struct {
	svc     *Service
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(svc *Service, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{svc: svc, log: log, timeout: timeout}
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// GET /customers?search=&sort=&order=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	order, err := strconv.Atoi(q.Get("order"))
	if err != nil {
		order = -1
	}
	list, err := h.svc.List(ctx, ListQuery{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  order,
		Limit:  int64(utils.QueryInt(r, "limit", 0)),
	})
	if err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to fetch customers")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(list),
		"data":    list,
	})
}

// GET /customers/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to fetch customer")
		return
	}
	utils.RespondOK(w, http.StatusOK, c, "")
}

// POST /customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to create customer")
		return
	}
	utils.RespondOK(w, http.StatusCreated, c, "Customer created successfully")
}

// PATCH /customers/:id
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p Patch
	if !utils.DecodeJSON(w, r, &p) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.svc.Patch(ctx, ps.ByName("id"), p)
	if err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to update customer")
		return
	}
	utils.RespondOK(w, http.StatusOK, c, "Customer updated successfully")
}

// PUT /customers/:id
func (h *Handler) Put(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in PutInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	c, err := h.svc.Put(ctx, ps.ByName("id"), in)
	if err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to update customer")
		return
	}
	utils.RespondOK(w, http.StatusOK, c, "Customer updated successfully")
}

// DELETE /customers/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.svc.Delete(ctx, ps.ByName("id")); err != nil {
		utils.HandleError(w, h.log, "CUSTOMER", err, "Failed to delete customer")
		return
	}
	utils.RespondOK(w, http.StatusOK, nil, "Customer deleted successfully")
}
