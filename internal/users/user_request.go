package users

import "stockroom/pkg/roles"

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Fullname string `json:"fullname"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Password *string     `json:"password"`
	Fullname *string     `json:"fullname"`
	Role     *roles.Role `json:"role"`
}

// UserChanges carries only the columns to update.
type UserChanges struct {
	PasswordHash *string
	Fullname     *string
	Role         *string
}

func (c *UserChanges) HasChanges() bool {
	return c.PasswordHash != nil || c.Fullname != nil || c.Role != nil
}
