package handlers

import (
	"net/http"

	"fieldservice/models"
	"fieldservice/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler serves the public slot lookup.
type AvailabilityHandler struct {
	Service scheduling.AvailabilityService
}

func NewAvailabilityHandler(svc scheduling.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

// GetAvailabilityHandler handles GET /api/availability?date=YYYY-MM-DD[&policy=name].
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	q := models.AvailabilityQuery{Date: c.Query("date"), Policy: c.Query("policy")}

	result, err := h.Service.QueryAvailability(c.Request.Context(), q)
	if err != nil {
		respondError(c, "availability", err, zap.String("date", q.Date), zap.String("policy", q.Policy))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPoliciesHandler handles GET /api/policies.
func (h *AvailabilityHandler) ListPoliciesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"policies": h.Service.ListPolicies()})
}
