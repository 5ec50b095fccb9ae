package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareloop/service-sharing/internal/application"
	"github.com/shareloop/service-sharing/pkg/auth"
	"github.com/shareloop/service-sharing/pkg/middleware"
	"github.com/shareloop/service-sharing/pkg/response"
)

// RequestHandler handles HTTP requests for item requests.
type RequestHandler struct {
	service *application.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service *application.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// RegisterRoutes registers all item-request routes on the given router group.
func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	requests := r.Group("/api/v1/requests")
	requests.Use(authMW)
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListOwnRequests)
		requests.GET("/all", h.ListOtherRequests)
		requests.GET("/:id", h.GetRequest)
	}
}

// CreateRequest handles POST /api/v1/requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListOwnRequests handles GET /api/v1/requests.
func (h *RequestHandler) ListOwnRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListOwn(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOtherRequests handles GET /api/v1/requests/all?from=&size=.
func (h *RequestHandler) ListOtherRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	from, size, ok := parsePaging(c)
	if !ok {
		return
	}

	result, err := h.service.ListOthers(c.Request.Context(), userID, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetRequest handles GET /api/v1/requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID")
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), userID, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
