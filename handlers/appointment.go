package handlers

import (
	"net/http"

	"fieldservice/models"
	"fieldservice/services/scheduling"
	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler schedules technician visits on service records.
type AppointmentHandler struct {
	Service scheduling.BookingService
}

func NewAppointmentHandler(svc scheduling.BookingService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// GetAppointmentHandler handles GET /api/services/:id/appointment.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	id := c.Param("id")
	record, err := h.Service.GetServiceAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, "appointment.get", err, zap.String("serviceID", id))
		return
	}
	c.JSON(http.StatusOK, record)
}

// BookAppointmentHandler handles PUT /api/services/:id/appointment {date, slot, policy?}.
func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.ServiceID = c.Param("id")

	confirmation, err := h.Service.BookAppointment(c.Request.Context(), req)
	if err != nil {
		outcome := string(scheduling.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		utils.ObserveBooking(outcome)
		respondError(c, "appointment.book", err,
			zap.String("serviceID", req.ServiceID), zap.String("date", req.Date), zap.String("slot", req.Slot))
		return
	}
	utils.ObserveBooking("booked")
	c.JSON(http.StatusOK, confirmation)
}
