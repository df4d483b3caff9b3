package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

type ToolRepository interface {
	Create(ctx context.Context, tx *sql.Tx, item *models.ToolItem) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ToolItem, error)
	List(ctx context.Context, filter *transfer.ToolFilter) ([]*models.ToolItem, error)
	CheckByOwnerID(ctx context.Context, itemID, ownerID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ToolPatch) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
}

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, tx *sql.Tx, item *models.ToolItem) (int64, error) {
	query := `
		INSERT INTO tool_items (owner_id, name, type, price, image, description, location, for_rent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		item.OwnerID, item.Name, item.Type, item.Price,
		item.Image, item.Description, item.Location, item.ForRent,
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

func (r *toolRepository) GetByID(ctx context.Context, id int64) (*models.ToolItem, error) {
	query := `
		SELECT id, owner_id, name, type, price, image, description, location, for_rent, created_at, updated_at
		FROM tool_items
		WHERE id = $1
	`

	var item models.ToolItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Type, &item.Price,
		&item.Image, &item.Description, &item.Location, &item.ForRent,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &item, nil
}

func (r *toolRepository) List(ctx context.Context, filter *transfer.ToolFilter) ([]*models.ToolItem, error) {
	conds := []string{}
	args := []interface{}{}

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter != nil {
		if filter.Type != "" {
			add("type = $%d", filter.Type)
		}
		if filter.Location != "" {
			add("location ILIKE '%%' || $%d || '%%'", filter.Location)
		}
		if filter.ForRent != nil {
			add("for_rent = $%d", *filter.ForRent)
		}
		if filter.MinPrice != nil {
			add("price >= $%d", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			add("price <= $%d", *filter.MaxPrice)
		}
		if filter.Search != "" {
			args = append(args, filter.Search)
			conds = append(conds, fmt.Sprintf("(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", len(args), len(args)))
		}
	}

	query := `
		SELECT id, owner_id, name, type, price, image, description, location, for_rent, created_at, updated_at
		FROM tool_items
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ToolItem
	for rows.Next() {
		var item models.ToolItem
		err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Name, &item.Type, &item.Price,
			&item.Image, &item.Description, &item.Location, &item.ForRent,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *toolRepository) CheckByOwnerID(ctx context.Context, itemID, ownerID int64) (bool, error) {
	query := "SELECT 1 FROM tool_items WHERE id = $1 AND owner_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, itemID, ownerID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *toolRepository) Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ToolPatch) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
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
	if patch.ForRent != nil {
		add("for_rent", *patch.ForRent)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tool_items SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

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

func (r *toolRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM tool_items WHERE id = $1`

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
