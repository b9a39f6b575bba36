package schema

import (
	"time"

	"service-mesh/internal/model"
)

type UserCreate struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=3,max=20"`
	Lastname string `json:"lastname" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

// UserUpdate is a partial update. Absent and null fields are unset.
type UserUpdate struct {
	Email    *string `json:"email" validate:"omitnil,email"`
	Name     *string `json:"name" validate:"omitnil,min=3,max=20"`
	Lastname *string `json:"lastname" validate:"omitnil,min=3,max=20"`
	IsActive *bool   `json:"is_active"`
}

// Changes converts the payload, rejecting it with ErrNoData when no field
// is set.
func (u UserUpdate) Changes() (model.UserChanges, error) {
	c := model.UserChanges{
		Email:    u.Email,
		Name:     u.Name,
		Lastname: u.Lastname,
		IsActive: u.IsActive,
	}
	if c.Empty() {
		return c, ErrNoData
	}
	return c, nil
}

// UserResponse is the public view of a user; it has no password field.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Lastname:  u.Lastname,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
