// Package handler exposes the action module's HTTP endpoints.
package handler

import (
	"net/http"
	"strconv"

	"compass_backend/internal/action/service"
	"compass_backend/internal/action/transport"
	"compass_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const errInvalidRequest = "invalid request body"

// Handler handles action HTTP requests.
type Handler struct {
	service *service.Service
}

// New creates a new action handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// HandleCreate creates a next-step action.
// POST /api/v1/actions
func (h *Handler) HandleCreate(c *gin.Context) {
	var req transport.CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// HandleList lists a user's actions in list order, running the lazy
// Stage-Changed/Overdue pass first.
// GET /api/v1/actions?email=...
func (h *Handler) HandleList(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), c.Query("email"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleReorder applies a new list order atomically.
// PUT /api/v1/actions/reorder
func (h *Handler) HandleReorder(c *gin.Context) {
	var req transport.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}

	if err := h.service.Reorder(c.Request.Context(), req); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleRemove hard-deletes an action.
// DELETE /api/v1/actions/:id
func (h *Handler) HandleRemove(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleSetStatus updates the status label.
// PATCH /api/v1/actions/:id/status
func (h *Handler) HandleSetStatus(c *gin.Context) {
	var req transport.SetStatusRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetStatus(c.Request.Context(), id, req)
	})
}

// HandleSetOwner assigns the owner.
// PATCH /api/v1/actions/:id/owner
func (h *Handler) HandleSetOwner(c *gin.Context) {
	var req transport.SetOwnerRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetOwner(c.Request.Context(), id, req)
	})
}

// HandleSetAcknowledged records owner acknowledgement.
// PATCH /api/v1/actions/:id/acknowledged
func (h *Handler) HandleSetAcknowledged(c *gin.Context) {
	var req transport.SetAcknowledgedRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetAcknowledged(c.Request.Context(), id, req)
	})
}

// HandleSetNotes replaces the notes.
// PATCH /api/v1/actions/:id/notes
func (h *Handler) HandleSetNotes(c *gin.Context) {
	var req transport.SetNotesRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetNotes(c.Request.Context(), id, req)
	})
}

// HandleSetPostpone postpones the action until a date.
// PATCH /api/v1/actions/:id/postpone
func (h *Handler) HandleSetPostpone(c *gin.Context) {
	var req transport.SetPostponeRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetPostponeDate(c.Request.Context(), id, req)
	})
}

// HandleSetInvites replaces the invites.
// PATCH /api/v1/actions/:id/invites
func (h *Handler) HandleSetInvites(c *gin.Context) {
	var req transport.SetInvitesRequest
	h.mutate(c, &req, func(id int64) error {
		return h.service.SetInvites(c.Request.Context(), id, req)
	})
}

func (h *Handler) mutate(c *gin.Context, req interface{}, apply func(id int64) error) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}

	if err := apply(id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid action id", nil)
		return 0, false
	}
	return id, true
}
