package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/repository"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

type ToolService interface {
	Create(ctx context.Context, ownerID int64, tc *transfer.ToolCreation, image *multipart.FileHeader) (int64, error)
	List(ctx context.Context, filter *transfer.ToolFilter) ([]*models.ToolItem, error)
	Info(ctx context.Context, id int64) (*models.ToolItem, error)
	Update(ctx context.Context, ownerID, itemID int64, tc *transfer.ToolCreation, image *multipart.FileHeader) (*models.ToolItem, error)
	Remove(ctx context.Context, ownerID, itemID int64) error
}

type toolService struct {
	db    *sql.DB
	tr    repository.ToolRepository
	ma    repository.MediaAssetRepository
	media MediaService
}

func NewToolService(db *sql.DB, tr repository.ToolRepository, ma repository.MediaAssetRepository, media MediaService) ToolService {
	return &toolService{db: db, tr: tr, ma: ma, media: media}
}

func validToolType(t string) bool {
	return t == models.ToolTypeTool || t == models.ToolTypePesticide
}

func (s *toolService) Create(ctx context.Context, ownerID int64, tc *transfer.ToolCreation, image *multipart.FileHeader) (int64, error) {
	if tc == nil {
		err := errors.New("tool creation data is nil")
		slog.Error(err.Error())
		return 0, err
	}
	if tc.Name == "" {
		err := errors.New("name cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if !validToolType(tc.Type) {
		return 0, fmt.Errorf("invalid type %q", tc.Type)
	}

	price, err := strconv.ParseFloat(tc.Price, 64)
	if err != nil {
		err = fmt.Errorf("invalid price: %w", err)
		slog.Info(err.Error())
		return 0, err
	}

	forRent := false
	if tc.ForRent != "" {
		forRent, err = strconv.ParseBool(tc.ForRent)
		if err != nil {
			return 0, fmt.Errorf("invalid for_rent value: %w", err)
		}
	}

	var published []*models.MediaAsset
	imageURL := ""
	if image != nil {
		asset, err := s.media.Publish(ctx, image, FolderTools, models.ResourceKindAuto)
		if err != nil {
			return 0, err
		}
		imageURL = asset.FileURL
		published = append(published, asset)
	}

	item := models.ToolItem{
		OwnerID:     ownerID,
		Name:        tc.Name,
		Type:        tc.Type,
		Price:       price,
		Image:       imageURL,
		Description: tc.Description,
		Location:    tc.Location,
		ForRent:     forRent,
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

	itemID, err := s.tr.Create(ctx, tx, &item)
	if err != nil {
		return 0, fmt.Errorf("error creating item: %w", err)
	}

	for _, asset := range published {
		asset.OwnerType = models.OwnerTypeTool
		asset.OwnerID = itemID
		asset.Field = models.FieldImage
		if _, err = s.ma.Create(ctx, tx, asset); err != nil {
			return 0, fmt.Errorf("error saving media asset: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return itemID, nil
}

func (s *toolService) List(ctx context.Context, filter *transfer.ToolFilter) ([]*models.ToolItem, error) {
	items, err := s.tr.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return items, nil
}

func (s *toolService) Info(ctx context.Context, id int64) (*models.ToolItem, error) {
	item, err := s.tr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *toolService) Update(ctx context.Context, ownerID, itemID int64, tc *transfer.ToolCreation, image *multipart.FileHeader) (*models.ToolItem, error) {
	existing, err := s.tr.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	isOwner, err := s.tr.CheckByOwnerID(ctx, itemID, ownerID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		err = errors.New("item does not belong to user")
		slog.Info(err.Error())
		return nil, err
	}

	patch := &transfer.ToolPatch{}
	if tc != nil {
		if tc.Name != "" {
			patch.Name = &tc.Name
		}
		if tc.Type != "" {
			if !validToolType(tc.Type) {
				return nil, fmt.Errorf("invalid type %q", tc.Type)
			}
			patch.Type = &tc.Type
		}
		if tc.Price != "" {
			price, err := strconv.ParseFloat(tc.Price, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price: %w", err)
			}
			patch.Price = &price
		}
		if tc.Description != "" {
			patch.Description = &tc.Description
		}
		if tc.Location != "" {
			patch.Location = &tc.Location
		}
		if tc.ForRent != "" {
			forRent, err := strconv.ParseBool(tc.ForRent)
			if err != nil {
				return nil, fmt.Errorf("invalid for_rent value: %w", err)
			}
			patch.ForRent = &forRent
		}
	}

	var published []*models.MediaAsset
	var replaced []*models.MediaAsset
	if image != nil {
		asset, err := s.media.Publish(ctx, image, FolderTools, models.ResourceKindAuto)
		if err != nil {
			return nil, err
		}
		patch.Image = &asset.FileURL
		published = append(published, asset)

		old, err := s.ma.ListByOwnerField(ctx, models.OwnerTypeTool, itemID, models.FieldImage)
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

	if err = s.tr.Update(ctx, tx, itemID, patch); err != nil {
		return nil, fmt.Errorf("error updating item: %w", err)
	}

	if len(published) > 0 {
		if err = s.ma.RemoveByOwnerField(ctx, tx, models.OwnerTypeTool, itemID, models.FieldImage); err != nil {
			return nil, err
		}
		for _, asset := range published {
			asset.OwnerType = models.OwnerTypeTool
			asset.OwnerID = itemID
			asset.Field = models.FieldImage
			if _, err = s.ma.Create(ctx, tx, asset); err != nil {
				return nil, fmt.Errorf("error saving media asset: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.media.Reclaim(ctx, replaced)

	return s.tr.GetByID(ctx, itemID)
}

func (s *toolService) Remove(ctx context.Context, ownerID, itemID int64) error {
	item, err := s.tr.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	isOwner, err := s.tr.CheckByOwnerID(ctx, itemID, ownerID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("item does not belong to user")
		slog.Info(err.Error())
		return err
	}

	assets, err := s.ma.ListByOwner(ctx, models.OwnerTypeTool, itemID)
	if err != nil {
		slog.Warn("failed to load asset records, falling back to URL parsing", "item_id", itemID)
	}
	if len(assets) > 0 {
		s.media.Reclaim(ctx, assets)
	} else if item.Image != "" {
		s.media.ReclaimURLs(ctx, []string{item.Image}, FolderTools)
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

	if err = s.ma.RemoveByOwner(ctx, tx, models.OwnerTypeTool, itemID); err != nil {
		return fmt.Errorf("error removing asset records: %w", err)
	}
	if err = s.tr.Remove(ctx, tx, itemID); err != nil {
		return fmt.Errorf("error removing item: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
