package users

import (
	"fmt"

	"stockroom/internal/repository"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type UserRepository interface {
	PersistUser(req CreateUserRequest, hashedPassword []byte) error
	GetUser(id int) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUser(id int, changes *UserChanges) error
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(req CreateUserRequest, hashedPassword []byte) error {
	query := r.repository.GoquDBWrapper.Insert("users").
		Rows(goqu.Record{
			"password_hash": string(hashedPassword),
			"username":      req.Username,
			"fullname":      req.Fullname,
			"role":          req.Role,
		})

	_, err := query.Executor().Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return custom_error.WrapDBError("Username already taken", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepositoryImpl) GetUsers() ([]models.User, error) {
	var users []models.User
	query := r.repository.GoquDBWrapper.
		Select("id", "username", "fullname", "role").
		From("users")

	if err := query.Executor().ScanStructs(&users); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(id int) (*models.User, error) {
	var user models.User
	query := r.repository.GoquDBWrapper.
		Select("id", "username", "fullname", "password_hash", "role").
		From("users").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "user", ID: id}
	}

	return &user, nil
}

func (r *userRepositoryImpl) UpdateUser(id int, changes *UserChanges) error {
	updates := make(map[string]interface{})
	if changes.PasswordHash != nil {
		updates["password_hash"] = *changes.PasswordHash
	}
	if changes.Fullname != nil {
		updates["fullname"] = *changes.Fullname
	}
	if changes.Role != nil {
		updates["role"] = *changes.Role
	}
	if len(updates) == 0 {
		return nil
	}

	result, err := r.repository.GoquDBWrapper.
		Update("users").
		Set(updates).
		Where(goqu.Ex{"id": id}).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "user", ID: id}
	}

	return nil
}
