package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/agrimart/internal/models"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error)
	ListByOwner(ctx context.Context, ownerType string, ownerID int64) ([]*models.MediaAsset, error)
	ListByOwnerField(ctx context.Context, ownerType string, ownerID int64, field string) ([]*models.MediaAsset, error)
	RemoveByOwner(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64) error
	RemoveByOwnerField(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64, field string) error
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error) {
	query := `
		INSERT INTO media_assets (owner_type, owner_id, field, display_order, object_key, resource_kind, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		asset.OwnerType, asset.OwnerID, asset.Field, asset.DisplayOrder,
		asset.ObjectKey, asset.ResourceKind, asset.FileURL,
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

func (r *mediaAssetRepository) ListByOwner(ctx context.Context, ownerType string, ownerID int64) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, owner_type, owner_id, field, display_order, object_key, resource_kind, file_url, created_at
		FROM media_assets
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY field, display_order
	`
	return r.list(ctx, query, ownerType, ownerID)
}

func (r *mediaAssetRepository) ListByOwnerField(ctx context.Context, ownerType string, ownerID int64, field string) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, owner_type, owner_id, field, display_order, object_key, resource_kind, file_url, created_at
		FROM media_assets
		WHERE owner_type = $1 AND owner_id = $2 AND field = $3
		ORDER BY display_order
	`
	return r.list(ctx, query, ownerType, ownerID, field)
}

func (r *mediaAssetRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.MediaAsset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		err := rows.Scan(
			&asset.ID, &asset.OwnerType, &asset.OwnerID, &asset.Field,
			&asset.DisplayOrder, &asset.ObjectKey, &asset.ResourceKind,
			&asset.FileURL, &asset.CreatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

func (r *mediaAssetRepository) RemoveByOwner(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64) error {
	query := `DELETE FROM media_assets WHERE owner_type = $1 AND owner_id = $2`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, ownerType, ownerID)
	} else {
		_, err = r.db.ExecContext(ctx, query, ownerType, ownerID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *mediaAssetRepository) RemoveByOwnerField(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64, field string) error {
	query := `DELETE FROM media_assets WHERE owner_type = $1 AND owner_id = $2 AND field = $3`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, ownerType, ownerID, field)
	} else {
		_, err = r.db.ExecContext(ctx, query, ownerType, ownerID, field)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
