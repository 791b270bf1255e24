package suppliers

import (
	"errors"
	"net/http"
	"strconv"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type UpdateSupplierRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
}

type SupplierHandler struct {
	Repository *SupplierRepository
}

func NewSupplierHandler(r *SupplierRepository) *SupplierHandler {
	return &SupplierHandler{Repository: r}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/suppliers", security.Authorize("user"), h.GetSuppliers)
	router.GET("/suppliers/:id", security.Authorize("user"), h.GetSupplier)
	router.POST("/suppliers", security.Authorize("moderator"), h.CreateSupplier)
	router.PATCH("/suppliers/:id", security.Authorize("moderator"), h.UpdateSupplier)
	router.DELETE("/suppliers/:id", security.Authorize("admin"), h.RemoveSupplier)
}

func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.Repository.GetSuppliers()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list suppliers", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}

	supplier, err := h.Repository.GetSupplier(id)
	if err != nil {
		var notFound *custom_error.NotFoundError
		if errors.As(err, &notFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch supplier"})
		return
	}

	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var supplier models.Supplier
	if err := c.BindJSON(&supplier); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	err := h.Repository.PersistSupplier(&supplier)
	if _, ok := err.(*custom_error.UniqueViolationError); ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Supplier name already registered", "details": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not insert supplier"})
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}

	var req UpdateSupplierRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	supplier, err := h.Repository.UpdateSupplier(id, req)
	if err != nil {
		var notFound *custom_error.NotFoundError
		if errors.As(err, &notFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not update supplier", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) RemoveSupplier(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}

	err := h.Repository.RemoveSupplier(id)
	if _, isFK := err.(*custom_error.ForeignKeyViolationError); isFK {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Supplier has purchase orders", "details": err.Error()})
		return
	} else if err != nil {
		var notFound *custom_error.NotFoundError
		if errors.As(err, &notFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not delete supplier", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}

func supplierID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return 0, false
	}
	return id, true
}
