package workorders

import (
	"errors"
	"net/http"
	"strconv"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	service *WorkOrderService
}

func NewHandler(service *WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

func (h *WorkOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/workorders", security.Authorize("user"), h.ListActive)
	router.GET("/workorders/history", security.Authorize("user"), h.ListHistory)
	router.POST("/workorders", security.Authorize("moderator"), h.Create)
	router.POST("/workorders/:id/start", security.Authorize("user"), h.Start)
	router.POST("/workorders/:id/complete", security.Authorize("moderator"), h.Complete)
	router.POST("/workorders/:id/cancel", security.Authorize("moderator"), h.Cancel)
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	order, err := h.service.Create(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *WorkOrderHandler) Complete(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Complete(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *WorkOrderHandler) Start(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.service.Start(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Work order started"})
}

func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Work order cancelled"})
}

func (h *WorkOrderHandler) ListActive(c *gin.Context) {
	orders, err := h.service.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch work orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *WorkOrderHandler) ListHistory(c *gin.Context) {
	orders, err := h.service.ListHistory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch work order history"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func orderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid work order ID"})
		return 0, false
	}
	return id, true
}

func respondWithError(c *gin.Context, err error) {
	var notFound *custom_error.NotFoundError
	var insufficient *custom_error.InsufficientStockError

	switch {
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": insufficient.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unexpected failure", "details": err.Error()})
	}
}
