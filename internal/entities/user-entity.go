package entities

import "time"

type User struct {
	ID          uint64
	InstituteID uint64
	Fio         string
	Email       string
	Password    string
	RoleID      uint64
	RoleCode    string
	RoleName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
