package models

import "time"

type Listing struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Price       float64   `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	Contact     string    `db:"contact" json:"contact"`
	Images      []string  `db:"images" json:"images"`
	Videos      []string  `db:"videos" json:"videos"`
	Status      string    `db:"status" json:"status"` // available, sold
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ListingStatusAvailable = "available"
	ListingStatusSold      = "sold"
)
