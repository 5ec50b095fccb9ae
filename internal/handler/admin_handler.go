package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareloop/service-sharing/internal/application"
	"github.com/shareloop/service-sharing/pkg/auth"
	"github.com/shareloop/service-sharing/pkg/middleware"
	"github.com/shareloop/service-sharing/pkg/response"
)

// AdminBookingHandler exposes the operator's view of booking activity.
// Unlike the booker and owner listings, it spans every item in the catalog
// regardless of who listed or requested them.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers the operator booking routes; all of them require
// an admin token.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.BookingStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings. It pages through every
// booking in the system, newest first, with no state filter.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := h.service.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/bookings/stats, reporting the total
// booking count and a per-status breakdown.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
