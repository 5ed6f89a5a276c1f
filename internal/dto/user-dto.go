package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Fio      string `json:"fio" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RoleCode string `json:"roleCode" validate:"required,role_code"`
}

// UpdateUserDTO — частичное обновление: null-поля отличают
// "не прислали" от "прислали пустое".
type UpdateUserDTO struct {
	Fio      null.String `json:"fio"`
	Email    null.String `json:"email"`
	Password null.String `json:"password"`
	RoleCode null.String `json:"roleCode"`
}

type UserDTO struct {
	ID          uint64 `json:"id"`
	InstituteID uint64 `json:"instituteId"`
	Fio         string `json:"fio"`
	Email       string `json:"email"`
	RoleCode    string `json:"roleCode"`
	RoleName    string `json:"roleName"`
	CreatedAt   string `json:"created_at"`
}

type ShortUserDTO struct {
	ID  uint64 `json:"id"`
	Fio string `json:"fio"`
}
