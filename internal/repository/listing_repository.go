package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

type ListingRepository interface {
	Create(ctx context.Context, tx *sql.Tx, listing *models.Listing) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Listing, error)
	List(ctx context.Context) ([]*models.Listing, error)
	CheckByOwnerID(ctx context.Context, listingID, ownerID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ListingPatch) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
}

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, tx *sql.Tx, listing *models.Listing) (int64, error) {
	query := `
		INSERT INTO listings (owner_id, name, price, description, location, contact, images, videos, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		listing.OwnerID, listing.Name, listing.Price, listing.Description,
		listing.Location, listing.Contact,
		pq.Array(listing.Images), pq.Array(listing.Videos), listing.Status,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	query := `
		SELECT id, owner_id, name, price, description, location, contact, images, videos, status, created_at, updated_at
		FROM listings
		WHERE id = $1
	`

	var listing models.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID, &listing.OwnerID, &listing.Name, &listing.Price,
		&listing.Description, &listing.Location, &listing.Contact,
		pq.Array(&listing.Images), pq.Array(&listing.Videos),
		&listing.Status, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT id, owner_id, name, price, description, location, contact, images, videos, status, created_at, updated_at
		FROM listings
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var listing models.Listing
		err := rows.Scan(
			&listing.ID, &listing.OwnerID, &listing.Name, &listing.Price,
			&listing.Description, &listing.Location, &listing.Contact,
			pq.Array(&listing.Images), pq.Array(&listing.Videos),
			&listing.Status, &listing.CreatedAt, &listing.UpdatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		listings = append(listings, &listing)
	}
	return listings, rows.Err()
}

func (r *listingRepository) CheckByOwnerID(ctx context.Context, listingID, ownerID int64) (bool, error) {
	query := "SELECT 1 FROM listings WHERE id = $1 AND owner_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, listingID, ownerID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// Update writes only the fields present on the patch. A patch with nothing
// set still bumps updated_at.
func (r *listingRepository) Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ListingPatch) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Contact != nil {
		add("contact", *patch.Contact)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Images != nil {
		add("images", pq.Array(patch.Images))
	}
	if patch.Videos != nil {
		add("videos", pq.Array(patch.Videos))
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE listings SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *listingRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM listings WHERE id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
