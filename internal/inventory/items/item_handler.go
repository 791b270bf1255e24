package items

import (
	"errors"
	"net/http"
	"strconv"

	"stockroom/internal/repository"
	"stockroom/pkg/auditlog"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type ItemStore interface {
	GetItem(class models.ItemClass, id int) (*models.StockItem, error)
	GetItemsBy(class models.ItemClass, conditions repository.QueryBuilder) (*[]models.StockItem, error)
	PersistItem(class models.ItemClass, req ItemRequest) (*models.StockItem, error)
	UpdateItem(class models.ItemClass, req *PatchItemRequest) (*models.StockItem, error)
	DeleteItem(class models.ItemClass, id int) error
}

type StockLedger interface {
	AdjustQuantity(class models.ItemClass, itemID, delta int) (*models.StockItem, error)
}

type ActivityLog interface {
	Log(action string, data interface{}, item auditlog.Auditable)
}

type ResourceLogStore interface {
	GetResourceLog(id int, resourceType string) (*[]models.AuditLog, error)
}

type ItemHandler struct {
	store        ItemStore
	ledger       StockLedger
	auditLog     ActivityLog
	resourceLogs ResourceLogStore
}

func NewItemHandler(store ItemStore, ledger StockLedger, auditLog ActivityLog, resourceLogs ResourceLogStore) *ItemHandler {
	return &ItemHandler{
		store:        store,
		ledger:       ledger,
		auditLog:     auditLog,
		resourceLogs: resourceLogs,
	}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	for path, class := range map[string]models.ItemClass{
		"/products":  models.ClassProduct,
		"/materials": models.ClassMaterial,
	} {
		group := router.Group(path)
		group.GET("", security.Authorize("user"), h.listItems(class))
		group.GET("/:id", security.Authorize("user"), h.getItem(class))
		group.POST("", security.Authorize("moderator"), h.createItem(class))
		group.PATCH("/:id", security.Authorize("moderator"), h.updateItem(class))
		group.DELETE("/:id", security.Authorize("admin"), h.deleteItem(class))
		group.POST("/:id/adjustments", security.Authorize("user"), h.adjustQuantity(class))
	}
}

func (h *ItemHandler) listItems(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query struct {
			Category string `form:"category"`
			Status   string `form:"status"`
		}

		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}

		conditions := repository.NewQueryBuilder()
		if query.Category != "" {
			conditions.AddCondition("category", query.Category)
		}
		if query.Status != "" {
			conditions.AddCondition("status", query.Status)
		}

		items, err := h.store.GetItemsBy(class, conditions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func (h *ItemHandler) getItem(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		item, err := h.store.GetItem(class, id)
		if err != nil {
			respondWithError(c, err)
			return
		}

		logs, err := h.resourceLogs.GetResourceLog(id, string(class))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"item": item, "history": logs})
	}
}

func (h *ItemHandler) createItem(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		item, err := h.store.PersistItem(class, req)
		if err != nil {
			respondWithError(c, err)
			return
		}

		go h.auditLog.Log(
			"create",
			map[string]interface{}{
				"sku":      item.SKU,
				"quantity": item.Quantity,
				"status":   item.Status,
				"msg":      "Registered item in inventory",
			},
			item,
		)

		c.JSON(http.StatusCreated, item)
	}
}

func (h *ItemHandler) updateItem(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PatchItemRequest
		if err := c.ShouldBindUri(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URI parameters", "details": err.Error()})
			return
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		item, err := h.store.UpdateItem(class, &req)
		if err != nil {
			respondWithError(c, err)
			return
		}

		go h.auditLog.Log(
			"update",
			map[string]interface{}{
				"sku":    item.SKU,
				"status": item.Status,
				"msg":    "Updated item details",
			},
			item,
		)

		c.JSON(http.StatusOK, item)
	}
}

func (h *ItemHandler) deleteItem(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		if err := h.store.DeleteItem(class, id); err != nil {
			respondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
	}
}

func (h *ItemHandler) adjustQuantity(class models.ItemClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}

		var req AdjustQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		item, err := h.ledger.AdjustQuantity(class, id, req.Delta)
		if err != nil {
			respondWithError(c, err)
			return
		}

		go h.auditLog.Log(
			"adjust",
			map[string]interface{}{
				"delta":    req.Delta,
				"quantity": item.Quantity,
				"status":   item.Status,
				"reason":   req.Reason,
				"msg":      "Adjusted stock quantity",
			},
			item,
		)

		c.JSON(http.StatusOK, item)
	}
}

// respondWithError maps domain errors onto HTTP statuses.
func respondWithError(c *gin.Context, err error) {
	var notFound *custom_error.NotFoundError
	var insufficient *custom_error.InsufficientStockError

	switch {
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": insufficient.Error()})
	default:
		switch err.(type) {
		case *custom_error.UniqueViolationError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Identifier already registered"})
		case *custom_error.ForeignKeyViolationError:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Item is referenced by other records"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unexpected failure", "details": err.Error()})
		}
	}
}
