package workorders

type MaterialRequirement struct {
	MaterialID int `json:"material_id" binding:"required"`
	Quantity   int `json:"quantity" binding:"required,gt=0"`
}

type CreateWorkOrderRequest struct {
	ProductID int                   `json:"product_id" binding:"required"`
	Quantity  int                   `json:"quantity" binding:"required,gt=0"`
	Materials []MaterialRequirement `json:"materials" binding:"required,min=1,dive"`
}
