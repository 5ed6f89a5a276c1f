package entities

import "time"

type Equipment struct {
	ID          uint64
	InstituteID uint64
	Name        string
	Category    string
	Location    string
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
