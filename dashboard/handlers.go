package dashboard

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

// GET /dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	d, err := h.svc.Build(ctx)
	if err != nil {
		utils.HandleError(w, h.log, "DASHBOARD", err, "Failed to fetch dashboard data")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"data":      d,
		"timestamp": h.svc.now().UTC().Format(time.RFC3339Nano),
	})
}

// GET /all-data
func (h *Handler) AllData(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	all, stats, err := h.svc.AllData(ctx)
	if err != nil {
		utils.HandleError(w, h.log, "DASHBOARD", err, "Failed to fetch data")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"data":      all,
		"stats":     stats,
		"timestamp": h.svc.now().UTC().Format(time.RFC3339Nano),
	})
}
