package handlers

import (
	"net/http"
	"time"

	"fieldservice/models"
	"fieldservice/services/scheduling"
	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BlackoutHandler exposes admin management of blackout windows.
type BlackoutHandler struct {
	Service scheduling.BlackoutService
	// Location reads zone-less from/to filters as business wall-clock time.
	Location *time.Location
}

func NewBlackoutHandler(svc scheduling.BlackoutService, loc *time.Location) *BlackoutHandler {
	return &BlackoutHandler{Service: svc, Location: loc}
}

// ListBlackoutsHandler handles GET /api/admin/blackouts[?from=&to=].
func (h *BlackoutHandler) ListBlackoutsHandler(c *gin.Context) {
	var filter models.BlackoutFilter
	var ok bool
	if filter.OverlapsFrom, ok = instantQuery(c, "from", h.Location); !ok {
		return
	}
	if filter.OverlapsTo, ok = instantQuery(c, "to", h.Location); !ok {
		return
	}

	windows, err := h.Service.ListBlackouts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "blackouts.list", err)
		return
	}
	if windows == nil {
		windows = []models.BlackoutWindow{}
	}
	c.JSON(http.StatusOK, gin.H{"blackouts": windows})
}

// CreateBlackoutHandler handles POST /api/admin/blackouts {start, end, reason?}.
func (h *BlackoutHandler) CreateBlackoutHandler(c *gin.Context) {
	var input models.BlackoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	window, err := h.Service.CreateBlackout(c.Request.Context(), input)
	if err != nil {
		respondError(c, "blackouts.create", err, zap.String("start", input.Start), zap.String("end", input.End))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": window.ID, "blackout": window})
}

// DeleteBlackoutHandler handles DELETE /api/admin/blackouts/:id and DELETE /api/admin/blackouts?id=.
func (h *BlackoutHandler) DeleteBlackoutHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}

	if err := h.Service.DeleteBlackout(c.Request.Context(), id); err != nil {
		respondError(c, "blackouts.delete", err, zap.String("id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// instantQuery parses an optional ISO-8601 query parameter, replying 400 when malformed.
func instantQuery(c *gin.Context, param string, loc *time.Location) (time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := scheduling.ParseInstant(raw, loc)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+param+", use an ISO-8601 instant", err.Error())
		return time.Time{}, false
	}
	return t, true
}
