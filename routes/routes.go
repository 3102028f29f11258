package routes

import (
	"net/http"
	"strings"
	"time"

	"fieldservice/handlers"
	"fieldservice/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAvailabilityRoutes registers the public availability endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/availability", hb.Availability.GetAvailabilityHandler)
		api.GET("/policies", hb.Availability.ListPoliciesHandler)
	}
}

// RegisterAppointmentRoutes registers service appointment scheduling.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("/:id/appointment", hb.Appointments.GetAppointmentHandler)
		api.PUT("/:id/appointment", hb.Appointments.BookAppointmentHandler)
	}
}

// RegisterAdminRoutes sets up blackout management behind the admin guard.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(hb.AdminAuth)
		adminGroup.GET("/blackouts", hb.Blackouts.ListBlackoutsHandler)
		adminGroup.POST("/blackouts", hb.Blackouts.CreateBlackoutHandler)
		adminGroup.DELETE("/blackouts", hb.Blackouts.DeleteBlackoutHandler)
		adminGroup.DELETE("/blackouts/:id", hb.Blackouts.DeleteBlackoutHandler)
	}
}

// RegisterHealthRoute registers health and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins string) {
	r.Use(cors.New(corsConfig(allowedOrigins)))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Admin-Password", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if allowedOrigins == "" || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
