package models

type Supplier struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Contact *string `json:"contact" db:"contact"`
	Email   *string `json:"email" db:"email"`
}
