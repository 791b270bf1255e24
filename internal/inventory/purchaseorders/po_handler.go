package purchaseorders

import (
	"errors"
	"net/http"
	"strconv"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type OrderService interface {
	Create(req CreatePurchaseOrderRequest) (*models.PurchaseOrder, error)
	GenerateFromLowStock(req GenerateFromLowStockRequest) (*models.PurchaseOrder, error)
	Get(id int) (*models.PurchaseOrder, error)
	List(conditions repository.QueryBuilder) (*[]models.PurchaseOrder, error)
	Approve(id int) error
	Send(id int) error
	Cancel(id int) error
	Receive(id int) (*models.PurchaseOrder, error)
}

type PurchaseOrderHandler struct {
	service OrderService
}

func NewPurchaseOrderHandler(service OrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/purchase-orders", security.Authorize("user"), h.ListOrders)
	router.GET("/purchase-orders/:id", security.Authorize("user"), h.GetOrder)
	router.POST("/purchase-orders", security.Authorize("moderator"), h.CreateOrder)
	router.POST("/purchase-orders/generate", security.Authorize("moderator"), h.GenerateOrder)
	router.POST("/purchase-orders/:id/approve", security.Authorize("admin"), h.ApproveOrder)
	router.POST("/purchase-orders/:id/send", security.Authorize("moderator"), h.SendOrder)
	router.POST("/purchase-orders/:id/receive", security.Authorize("user"), h.ReceiveOrder)
	router.POST("/purchase-orders/:id/cancel", security.Authorize("moderator"), h.CancelOrder)
}

func (h *PurchaseOrderHandler) ListOrders(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	conditions := repository.NewQueryBuilder()
	if query.Status != "" {
		conditions.AddCondition("status", query.Status)
	}

	orders, err := h.service.List(conditions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchase orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Get(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	var req CreatePurchaseOrderRequest
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

func (h *PurchaseOrderHandler) GenerateOrder(c *gin.Context) {
	var req GenerateFromLowStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	order, err := h.service.GenerateFromLowStock(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *PurchaseOrderHandler) ApproveOrder(c *gin.Context) {
	h.applyTransition(c, h.service.Approve, "Purchase order approved")
}

func (h *PurchaseOrderHandler) SendOrder(c *gin.Context) {
	h.applyTransition(c, h.service.Send, "Purchase order sent to supplier")
}

func (h *PurchaseOrderHandler) CancelOrder(c *gin.Context) {
	h.applyTransition(c, h.service.Cancel, "Purchase order cancelled")
}

func (h *PurchaseOrderHandler) ReceiveOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Receive(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *PurchaseOrderHandler) applyTransition(c *gin.Context, fn func(id int) error, message string) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := fn(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func orderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase order ID"})
		return 0, false
	}
	return id, true
}

func respondWithError(c *gin.Context, err error) {
	var notFound *custom_error.NotFoundError

	switch {
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	default:
		switch err.(type) {
		case *custom_error.UniqueViolationError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Purchase order number already in use"})
		case *custom_error.ForeignKeyViolationError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Purchase order references an unknown supplier or material"})
		default:
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		}
	}
}
