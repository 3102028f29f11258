// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers and the admin guard for route registration.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Blackouts    *BlackoutHandler
	Appointments *AppointmentHandler

	// AdminAuth guards /api/admin.
	AdminAuth gin.HandlerFunc
}
