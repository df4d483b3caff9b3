package models

import "time"

type ToolItem struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"` // tool, pesticide
	Price       float64   `db:"price" json:"price"`
	Image       string    `db:"image" json:"image"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	ForRent     bool      `db:"for_rent" json:"for_rent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ToolTypeTool      = "tool"
	ToolTypePesticide = "pesticide"
)
