package rooms

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

// GET /rooms?available=&type=&minCapacity=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	rooms, err := h.svc.List(ctx, Filter{
		Available:   utils.QueryBool(r, "available"),
		Type:        r.URL.Query().Get("type"),
		MinCapacity: utils.QueryInt(r, "minCapacity", 0),
	})
	if err != nil {
		utils.HandleError(w, h.log, "ROOM", err, "Failed to fetch rooms")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(rooms),
		"data":    rooms,
	})
}

// GET /rooms/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	room, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "ROOM", err, "Failed to fetch room")
		return
	}
	utils.RespondOK(w, http.StatusOK, room, "")
}

// POST /rooms
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	room, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "ROOM", err, "Failed to create room")
		return
	}
	utils.RespondOK(w, http.StatusCreated, room, "Room created successfully")
}

// PUT /rooms with roomId in the body.
func (h *Handler) UpdateFromBody(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in UpdateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	h.update(w, r, in.RoomID, in.Patch)
}

// PATCH /rooms/:id
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p Patch
	if !utils.DecodeJSON(w, r, &p) {
		return
	}
	h.update(w, r, ps.ByName("id"), p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, roomID string, p Patch) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	room, err := h.svc.Update(ctx, roomID, p)
	if err != nil {
		utils.HandleError(w, h.log, "ROOM", err, "Failed to update room")
		return
	}
	utils.RespondOK(w, http.StatusOK, room, "Room updated successfully")
}

// DELETE /rooms?roomId= and DELETE /rooms/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")
	if roomID == "" {
		roomID = r.URL.Query().Get("roomId")
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.svc.Delete(ctx, roomID); err != nil {
		utils.HandleError(w, h.log, "ROOM", err, "Failed to delete room")
		return
	}
	utils.RespondOK(w, http.StatusOK, nil, "Room deleted successfully")
}
