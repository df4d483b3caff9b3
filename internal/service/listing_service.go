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

var ErrNotFound = errors.New("record not found")

const (
	MaxListingImages = 10
	MaxListingVideos = 5
)

type ListingService interface {
	Create(ctx context.Context, ownerID int64, lc *transfer.ListingCreation, images, videos []*multipart.FileHeader) (int64, error)
	List(ctx context.Context) ([]*models.Listing, error)
	Info(ctx context.Context, id int64) (*models.Listing, error)
	Update(ctx context.Context, ownerID, listingID int64, lc *transfer.ListingCreation, images, videos []*multipart.FileHeader) (*models.Listing, error)
	Remove(ctx context.Context, ownerID, listingID int64) error
}

type listingService struct {
	db    *sql.DB
	lr    repository.ListingRepository
	ma    repository.MediaAssetRepository
	media MediaService
}

func NewListingService(db *sql.DB, lr repository.ListingRepository, ma repository.MediaAssetRepository, media MediaService) ListingService {
	return &listingService{db: db, lr: lr, ma: ma, media: media}
}

func (s *listingService) Create(ctx context.Context, ownerID int64, lc *transfer.ListingCreation, images, videos []*multipart.FileHeader) (int64, error) {
	if lc == nil {
		err := errors.New("listing creation data is nil")
		slog.Error(err.Error())
		return 0, err
	}
	if lc.Name == "" {
		err := errors.New("name cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	price, err := strconv.ParseFloat(lc.Price, 64)
	if err != nil {
		err = fmt.Errorf("invalid price: %w", err)
		slog.Info(err.Error())
		return 0, err
	}

	if len(images) > MaxListingImages {
		return 0, fmt.Errorf("too many images: max %d", MaxListingImages)
	}
	if len(videos) > MaxListingVideos {
		return 0, fmt.Errorf("too many videos: max %d", MaxListingVideos)
	}

	// Publish everything before touching the database: no record ever
	// references a partially published batch.
	imageAssets, err := s.media.PublishBatch(ctx, images, FolderListingImages, models.ResourceKindImage)
	if err != nil {
		return 0, err
	}
	videoAssets, err := s.media.PublishBatch(ctx, videos, FolderListingVideos, models.ResourceKindVideo)
	if err != nil {
		s.media.Reclaim(ctx, imageAssets)
		return 0, err
	}
	published := append(append([]*models.MediaAsset{}, imageAssets...), videoAssets...)

	listing := models.Listing{
		OwnerID:     ownerID,
		Name:        lc.Name,
		Price:       price,
		Description: lc.Description,
		Location:    lc.Location,
		Contact:     lc.Contact,
		Images:      assetURLs(imageAssets),
		Videos:      assetURLs(videoAssets),
		Status:      models.ListingStatusAvailable,
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

	listingID, err := s.lr.Create(ctx, tx, &listing)
	if err != nil {
		return 0, fmt.Errorf("error creating listing: %w", err)
	}

	if err = s.saveAssets(ctx, tx, models.OwnerTypeListing, listingID, models.FieldImages, imageAssets); err != nil {
		return 0, err
	}
	if err = s.saveAssets(ctx, tx, models.OwnerTypeListing, listingID, models.FieldVideos, videoAssets); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return listingID, nil
}

func (s *listingService) saveAssets(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64, field string, assets []*models.MediaAsset) error {
	for _, asset := range assets {
		asset.OwnerType = ownerType
		asset.OwnerID = ownerID
		asset.Field = field
		if _, err := s.ma.Create(ctx, tx, asset); err != nil {
			return fmt.Errorf("error saving media asset: %w", err)
		}
	}
	return nil
}

func (s *listingService) List(ctx context.Context) ([]*models.Listing, error) {
	listings, err := s.lr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing animals: %w", err)
	}
	return listings, nil
}

func (s *listingService) Info(ctx context.Context, id int64) (*models.Listing, error) {
	listing, err := s.lr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotFound
	}
	return listing, nil
}

// Update replaces the image and video arrays wholesale, but only for fields
// that received new uploads in this request; a field with no new files keeps
// its previous value untouched.
func (s *listingService) Update(ctx context.Context, ownerID, listingID int64, lc *transfer.ListingCreation, images, videos []*multipart.FileHeader) (*models.Listing, error) {
	existing, err := s.lr.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	isOwner, err := s.lr.CheckByOwnerID(ctx, listingID, ownerID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		err = errors.New("listing does not belong to user")
		slog.Info(err.Error())
		return nil, err
	}

	if len(images) > MaxListingImages {
		return nil, fmt.Errorf("too many images: max %d", MaxListingImages)
	}
	if len(videos) > MaxListingVideos {
		return nil, fmt.Errorf("too many videos: max %d", MaxListingVideos)
	}

	patch := &transfer.ListingPatch{}
	if lc != nil {
		if lc.Name != "" {
			patch.Name = &lc.Name
		}
		if lc.Price != "" {
			price, err := strconv.ParseFloat(lc.Price, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price: %w", err)
			}
			patch.Price = &price
		}
		if lc.Description != "" {
			patch.Description = &lc.Description
		}
		if lc.Location != "" {
			patch.Location = &lc.Location
		}
		if lc.Contact != "" {
			patch.Contact = &lc.Contact
		}
		if lc.Status != "" {
			if lc.Status != models.ListingStatusAvailable && lc.Status != models.ListingStatusSold {
				return nil, fmt.Errorf("invalid status %q", lc.Status)
			}
			patch.Status = &lc.Status
		}
	}

	imageAssets, err := s.media.PublishBatch(ctx, images, FolderListingImages, models.ResourceKindImage)
	if err != nil {
		return nil, err
	}
	videoAssets, err := s.media.PublishBatch(ctx, videos, FolderListingVideos, models.ResourceKindVideo)
	if err != nil {
		s.media.Reclaim(ctx, imageAssets)
		return nil, err
	}
	published := append(append([]*models.MediaAsset{}, imageAssets...), videoAssets...)

	var replaced []*models.MediaAsset
	if len(imageAssets) > 0 {
		patch.Images = assetURLs(imageAssets)
		old, err := s.ma.ListByOwnerField(ctx, models.OwnerTypeListing, listingID, models.FieldImages)
		if err == nil {
			replaced = append(replaced, old...)
		}
	}
	if len(videoAssets) > 0 {
		patch.Videos = assetURLs(videoAssets)
		old, err := s.ma.ListByOwnerField(ctx, models.OwnerTypeListing, listingID, models.FieldVideos)
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

	if err = s.lr.Update(ctx, tx, listingID, patch); err != nil {
		return nil, fmt.Errorf("error updating listing: %w", err)
	}

	if len(imageAssets) > 0 {
		if err = s.ma.RemoveByOwnerField(ctx, tx, models.OwnerTypeListing, listingID, models.FieldImages); err != nil {
			return nil, err
		}
		if err = s.saveAssets(ctx, tx, models.OwnerTypeListing, listingID, models.FieldImages, imageAssets); err != nil {
			return nil, err
		}
	}
	if len(videoAssets) > 0 {
		if err = s.ma.RemoveByOwnerField(ctx, tx, models.OwnerTypeListing, listingID, models.FieldVideos); err != nil {
			return nil, err
		}
		if err = s.saveAssets(ctx, tx, models.OwnerTypeListing, listingID, models.FieldVideos, videoAssets); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// The replaced remote assets are unreferenced now; reclaim them after
	// the new state is durable.
	s.media.Reclaim(ctx, replaced)

	return s.lr.GetByID(ctx, listingID)
}

// Remove reclaims every remote asset the listing references, then deletes
// the record. The record is deleted even when reclaim attempts fail.
func (s *listingService) Remove(ctx context.Context, ownerID, listingID int64) error {
	listing, err := s.lr.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrNotFound
	}

	isOwner, err := s.lr.CheckByOwnerID(ctx, listingID, ownerID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("listing does not belong to user")
		slog.Info(err.Error())
		return err
	}

	assets, err := s.ma.ListByOwner(ctx, models.OwnerTypeListing, listingID)
	if err != nil {
		slog.Warn("failed to load asset records, falling back to URL parsing", "listing_id", listingID)
	}
	if len(assets) > 0 {
		s.media.Reclaim(ctx, assets)
	} else {
		s.media.ReclaimURLs(ctx, listing.Images, FolderListingImages)
		s.media.ReclaimURLs(ctx, listing.Videos, FolderListingVideos)
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

	if err = s.ma.RemoveByOwner(ctx, tx, models.OwnerTypeListing, listingID); err != nil {
		return fmt.Errorf("error removing asset records: %w", err)
	}
	if err = s.lr.Remove(ctx, tx, listingID); err != nil {
		return fmt.Errorf("error removing listing: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func assetURLs(assets []*models.MediaAsset) []string {
	urls := make([]string, 0, len(assets))
	for _, asset := range assets {
		urls = append(urls, asset.FileURL)
	}
	return urls
}
