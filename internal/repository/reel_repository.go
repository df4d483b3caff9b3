package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

type ReelRepository interface {
	Create(ctx context.Context, tx *sql.Tx, reel *models.Reel) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Reel, error)
	List(ctx context.Context) ([]*models.Reel, error)
	CheckByOwnerID(ctx context.Context, reelID, ownerID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ReelPatch) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
	IncrementViews(ctx context.Context, id int64) error

	HasLike(ctx context.Context, reelID, userID int64) (bool, error)
	AddLike(ctx context.Context, reelID, userID int64) error
	RemoveLike(ctx context.Context, reelID, userID int64) error
	CountLikes(ctx context.Context, reelID int64) (int64, error)

	AddComment(ctx context.Context, comment *models.ReelComment) (int64, error)
	ListComments(ctx context.Context, reelID int64) ([]*models.ReelComment, error)
}

type reelRepository struct {
	db *sql.DB
}

func NewReelRepository(db *sql.DB) ReelRepository {
	return &reelRepository{db: db}
}

func (r *reelRepository) Create(ctx context.Context, tx *sql.Tx, reel *models.Reel) (int64, error) {
	query := `
		INSERT INTO reels (owner_id, video_url, description, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, reel.OwnerID, reel.VideoURL, reel.Description, pq.Array(reel.Tags)).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, reel.OwnerID, reel.VideoURL, reel.Description, pq.Array(reel.Tags)).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *reelRepository) GetByID(ctx context.Context, id int64) (*models.Reel, error) {
	query := `
		SELECT id, owner_id, video_url, description, tags, views, created_at
		FROM reels
		WHERE id = $1
	`

	var reel models.Reel
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reel.ID, &reel.OwnerID, &reel.VideoURL, &reel.Description,
		pq.Array(&reel.Tags), &reel.Views, &reel.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &reel, nil
}

func (r *reelRepository) List(ctx context.Context) ([]*models.Reel, error) {
	query := `
		SELECT id, owner_id, video_url, description, tags, views, created_at
		FROM reels
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var reels []*models.Reel
	for rows.Next() {
		var reel models.Reel
		err := rows.Scan(
			&reel.ID, &reel.OwnerID, &reel.VideoURL, &reel.Description,
			pq.Array(&reel.Tags), &reel.Views, &reel.CreatedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		reels = append(reels, &reel)
	}
	return reels, rows.Err()
}

func (r *reelRepository) CheckByOwnerID(ctx context.Context, reelID, ownerID int64) (bool, error) {
	query := "SELECT 1 FROM reels WHERE id = $1 AND owner_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, reelID, ownerID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *reelRepository) Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ReelPatch) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Tags != nil {
		add("tags", pq.Array(patch.Tags))
	}
	if patch.VideoURL != nil {
		add("video_url", *patch.VideoURL)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE reels SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

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

func (r *reelRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM reels WHERE id = $1`

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

func (r *reelRepository) IncrementViews(ctx context.Context, id int64) error {
	query := `UPDATE reels SET views = views + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *reelRepository) HasLike(ctx context.Context, reelID, userID int64) (bool, error) {
	query := "SELECT 1 FROM reel_likes WHERE reel_id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, reelID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *reelRepository) AddLike(ctx context.Context, reelID, userID int64) error {
	query := `
		INSERT INTO reel_likes (reel_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (reel_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, reelID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *reelRepository) RemoveLike(ctx context.Context, reelID, userID int64) error {
	query := `DELETE FROM reel_likes WHERE reel_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, reelID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *reelRepository) CountLikes(ctx context.Context, reelID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM reel_likes WHERE reel_id = $1`

	var count int64
	err := r.db.QueryRowContext(ctx, query, reelID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *reelRepository) AddComment(ctx context.Context, comment *models.ReelComment) (int64, error) {
	query := `
		INSERT INTO reel_comments (reel_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, comment.ReelID, comment.UserID, comment.Text).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *reelRepository) ListComments(ctx context.Context, reelID int64) ([]*models.ReelComment, error) {
	query := `
		SELECT id, reel_id, user_id, text, created_at
		FROM reel_comments
		WHERE reel_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, reelID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var comments []*models.ReelComment
	for rows.Next() {
		var comment models.ReelComment
		if err := rows.Scan(&comment.ID, &comment.ReelID, &comment.UserID, &comment.Text, &comment.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}
