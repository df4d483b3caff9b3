package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/repository"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

const MaxReelDescriptionLen = 300

type ReelService interface {
	Create(ctx context.Context, ownerID int64, rc *transfer.ReelCreation, video *multipart.FileHeader) (int64, error)
	List(ctx context.Context) ([]*models.Reel, error)
	Info(ctx context.Context, id int64) (*models.Reel, []*models.ReelComment, error)
	Update(ctx context.Context, ownerID, reelID int64, rc *transfer.ReelCreation, video *multipart.FileHeader) (*models.Reel, error)
	Remove(ctx context.Context, ownerID, reelID int64) error
	ToggleLike(ctx context.Context, userID, reelID int64) (liked bool, err error)
	AddComment(ctx context.Context, userID, reelID int64, text string) (*models.ReelComment, error)
}

type reelService struct {
	db    *sql.DB
	rr    repository.ReelRepository
	ma    repository.MediaAssetRepository
	media MediaService
}

func NewReelService(db *sql.DB, rr repository.ReelRepository, ma repository.MediaAssetRepository, media MediaService) ReelService {
	return &reelService{db: db, rr: rr, ma: ma, media: media}
}

func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (s *reelService) Create(ctx context.Context, ownerID int64, rc *transfer.ReelCreation, video *multipart.FileHeader) (int64, error) {
	if rc == nil {
		err := errors.New("reel creation data is nil")
		slog.Error(err.Error())
		return 0, err
	}
	if len(rc.Description) > MaxReelDescriptionLen {
		return 0, fmt.Errorf("description exceeds %d characters", MaxReelDescriptionLen)
	}

	var published []*models.MediaAsset
	videoURL := ""
	if video != nil {
		asset, err := s.media.Publish(ctx, video, FolderReelVideos, models.ResourceKindVideo)
		if err != nil {
			return 0, err
		}
		videoURL = asset.FileURL
		published = append(published, asset)
	}

	reel := models.Reel{
		OwnerID:     ownerID,
		VideoURL:    videoURL,
		Description: rc.Description,
		Tags:        parseTags(rc.Tags),
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		s.media.Reclaim(ctx, published)
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			s.media.Reclaim(ctx, published)
		}
	}()

	reelID, err := s.rr.Create(ctx, tx, &reel)
	if err != nil {
		return 0, fmt.Errorf("error creating reel: %w", err)
	}

	for _, asset := range published {
		asset.OwnerType = models.OwnerTypeReel
		asset.OwnerID = reelID
		asset.Field = models.FieldVideo
		if _, err = s.ma.Create(ctx, tx, asset); err != nil {
			return 0, fmt.Errorf("error saving media asset: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return reelID, nil
}

func (s *reelService) List(ctx context.Context) ([]*models.Reel, error) {
	reels, err := s.rr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing reels: %w", err)
	}
	for _, reel := range reels {
		if count, err := s.rr.CountLikes(ctx, reel.ID); err == nil {
			reel.LikeCount = count
		}
	}
	return reels, nil
}

func (s *reelService) Info(ctx context.Context, id int64) (*models.Reel, []*models.ReelComment, error) {
	reel, err := s.rr.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if reel == nil {
		return nil, nil, ErrNotFound
	}

	if err := s.rr.IncrementViews(ctx, id); err != nil {
		slog.Warn("failed to increment views", "reel_id", id)
	}

	if count, err := s.rr.CountLikes(ctx, id); err == nil {
		reel.LikeCount = count
	}

	comments, err := s.rr.ListComments(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return reel, comments, nil
}

func (s *reelService) Update(ctx context.Context, ownerID, reelID int64, rc *transfer.ReelCreation, video *multipart.FileHeader) (*models.Reel, error) {
	existing, err := s.rr.GetByID(ctx, reelID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	isOwner, err := s.rr.CheckByOwnerID(ctx, reelID, ownerID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		err = errors.New("reel does not belong to user")
		slog.Info(err.Error())
		return nil, err
	}

	patch := &transfer.ReelPatch{}
	if rc != nil {
		if len(rc.Description) > MaxReelDescriptionLen {
			return nil, fmt.Errorf("description exceeds %d characters", MaxReelDescriptionLen)
		}
		if rc.Description != "" {
			patch.Description = &rc.Description
		}
		if rc.Tags != "" {
			patch.Tags = parseTags(rc.Tags)
		}
	}

	var published []*models.MediaAsset
	var replaced []*models.MediaAsset
	if video != nil {
		asset, err := s.media.Publish(ctx, video, FolderReelVideos, models.ResourceKindVideo)
		if err != nil {
			return nil, err
		}
		patch.VideoURL = &asset.FileURL
		published = append(published, asset)

		old, err := s.ma.ListByOwnerField(ctx, models.OwnerTypeReel, reelID, models.FieldVideo)
		if err == nil {
			replaced = append(replaced, old...)
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		s.media.Reclaim(ctx, published)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			s.media.Reclaim(ctx, published)
		}
	}()

	if err = s.rr.Update(ctx, tx, reelID, patch); err != nil {
		return nil, fmt.Errorf("error updating reel: %w", err)
	}

	if len(published) > 0 {
		if err = s.ma.RemoveByOwnerField(ctx, tx, models.OwnerTypeReel, reelID, models.FieldVideo); err != nil {
			return nil, err
		}
		for _, asset := range published {
			asset.OwnerType = models.OwnerTypeReel
			asset.OwnerID = reelID
			asset.Field = models.FieldVideo
			if _, err = s.ma.Create(ctx, tx, asset); err != nil {
				return nil, fmt.Errorf("error saving media asset: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.media.Reclaim(ctx, replaced)

	return s.rr.GetByID(ctx, reelID)
}

func (s *reelService) Remove(ctx context.Context, ownerID, reelID int64) error {
	reel, err := s.rr.GetByID(ctx, reelID)
	if err != nil {
		return err
	}
	if reel == nil {
		return ErrNotFound
	}

	isOwner, err := s.rr.CheckByOwnerID(ctx, reelID, ownerID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("reel does not belong to user")
		slog.Info(err.Error())
		return err
	}

	assets, err := s.ma.ListByOwner(ctx, models.OwnerTypeReel, reelID)
	if err != nil {
		slog.Warn("failed to load asset records, falling back to URL parsing", "reel_id", reelID)
	}
	if len(assets) > 0 {
		s.media.Reclaim(ctx, assets)
	} else if reel.VideoURL != "" {
		s.media.ReclaimURLs(ctx, []string{reel.VideoURL}, FolderReelVideos)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.ma.RemoveByOwner(ctx, tx, models.OwnerTypeReel, reelID); err != nil {
		return fmt.Errorf("error removing asset records: %w", err)
	}
	if err = s.rr.Remove(ctx, tx, reelID); err != nil {
		return fmt.Errorf("error removing reel: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *reelService) ToggleLike(ctx context.Context, userID, reelID int64) (bool, error) {
	reel, err := s.rr.GetByID(ctx, reelID)
	if err != nil {
		return false, err
	}
	if reel == nil {
		return false, ErrNotFound
	}

	liked, err := s.rr.HasLike(ctx, reelID, userID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.rr.RemoveLike(ctx, reelID, userID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.rr.AddLike(ctx, reelID, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *reelService) AddComment(ctx context.Context, userID, reelID int64, text string) (*models.ReelComment, error) {
	if text == "" {
		err := errors.New("comment text cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	reel, err := s.rr.GetByID(ctx, reelID)
	if err != nil {
		return nil, err
	}
	if reel == nil {
		return nil, ErrNotFound
	}

	comment := models.ReelComment{
		ReelID: reelID,
		UserID: userID,
		Text:   text,
	}

	id, err := s.rr.AddComment(ctx, &comment)
	if err != nil {
		return nil, fmt.Errorf("error saving comment: %w", err)
	}
	comment.ID = id

	return &comment, nil
}
