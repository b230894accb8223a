package memberships

import (
	"context"
	"net/http"
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

// GET /memberships?type=&customerId=&active=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	q := r.URL.Query()
	active := utils.QueryBool(r, "active")
	list, err := h.svc.List(ctx, ListQuery{
		Type:       q.Get("type"),
		CustomerID: q.Get("customerId"),
		Active:     active != nil && *active,
	})
	if err != nil {
		utils.HandleError(w, h.log, "MEMBERSHIP", err, "Failed to fetch memberships")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(list),
		"data":    list,
	})
}

// GET /memberships/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	m, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "MEMBERSHIP", err, "Failed to fetch membership")
		return
	}
	utils.RespondOK(w, http.StatusOK, m, "")
}

// POST /memberships
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	m, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "MEMBERSHIP", err, "Failed to create membership")
		return
	}
	utils.RespondOK(w, http.StatusCreated, m, "Membership created successfully")
}
