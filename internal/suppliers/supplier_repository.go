package suppliers

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type SupplierRepository struct {
	Repository *repository.Repository
}

func NewSupplierRepository(r *repository.Repository) *SupplierRepository {
	return &SupplierRepository{Repository: r}
}

func (r *SupplierRepository) GetSuppliers() (*[]models.Supplier, error) {
	var suppliers = []models.Supplier{}
	query := r.Repository.GoquDBWrapper.
		Select("id", "name", "contact", "email").
		From("suppliers").
		Order(goqu.I("name").Asc())
	if err := query.Executor().ScanStructs(&suppliers); err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}

	return &suppliers, nil
}

func (r *SupplierRepository) GetSupplier(id int) (*models.Supplier, error) {
	var supplier models.Supplier
	query := r.Repository.GoquDBWrapper.
		Select("id", "name", "contact", "email").
		From("suppliers").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&supplier)
	if err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "supplier", ID: id}
	}

	return &supplier, nil
}

func (r *SupplierRepository) PersistSupplier(supplier *models.Supplier) error {
	query := r.Repository.GoquDBWrapper.Insert("suppliers").
		Rows(goqu.Record{
			"name":    supplier.Name,
			"contact": supplier.Contact,
			"email":   supplier.Email,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&supplier.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return custom_error.WrapDBError("Duplicate supplier name", string(pqErr.Code))
			}
		}
		return fmt.Errorf("failed to insert supplier record: %w", err)
	}

	return nil
}

func (r *SupplierRepository) UpdateSupplier(id int, req UpdateSupplierRequest) (models.Supplier, error) {
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Contact != nil {
		updates["contact"] = *req.Contact
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) == 0 {
		return models.Supplier{}, fmt.Errorf("no fields to update")
	}

	query := r.Repository.GoquDBWrapper.
		Update("suppliers").
		Set(updates).
		Where(goqu.Ex{"id": id}).
		Returning("id", "name", "contact", "email")

	var supplier models.Supplier
	found, err := query.Executor().ScanStruct(&supplier)
	if err != nil {
		return models.Supplier{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	if !found {
		return models.Supplier{}, &custom_error.NotFoundError{Resource: "supplier", ID: id}
	}

	return supplier, nil
}

func (r *SupplierRepository) RemoveSupplier(id int) error {
	result, err := r.Repository.GoquDBWrapper.
		Delete("suppliers").
		Where(goqu.Ex{"id": id}).
		Executor().Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return custom_error.WrapDBError("Supplier has purchase orders", string(pqErr.Code))
		}
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "supplier", ID: id}
	}

	return nil
}
