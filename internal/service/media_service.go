package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/agrimart/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrPublish marks a failed transfer to the remote object store. The staged
// file has already been cleaned up when it is returned.
var ErrPublish = errors.New("failed to publish upload")

// Remote folders, one per owning field.
const (
	FolderListingImages = "animals/images"
	FolderListingVideos = "animals/videos"
	FolderReelVideos    = "reels/videos"
	FolderTools         = "tools_pesticides"
)

// ReclaimEnqueuer schedules a delayed retry for a remote delete that failed.
type ReclaimEnqueuer interface {
	EnqueueReclaim(objectKey, resourceKind string) error
}

type MediaService interface {
	Publish(ctx context.Context, fh *multipart.FileHeader, folder, kind string) (*models.MediaAsset, error)
	PublishBatch(ctx context.Context, fhs []*multipart.FileHeader, folder, kind string) ([]*models.MediaAsset, error)
	Reclaim(ctx context.Context, assets []*models.MediaAsset)
	ReclaimURLs(ctx context.Context, urls []string, folder string)
}

type mediaService struct {
	store  ObjectStorage
	stager *Stager
	rq     ReclaimEnqueuer // optional
}

func NewMediaService(store ObjectStorage, stager *Stager, rq ReclaimEnqueuer) MediaService {
	return &mediaService{store: store, stager: stager, rq: rq}
}

// Publish moves one uploaded file through the full pipeline: stage to local
// scratch, sniff its type, push to the remote store, and always discard the
// staged copy, whether or not the push succeeded.
func (s *mediaService) Publish(ctx context.Context, fh *multipart.FileHeader, folder, kind string) (*models.MediaAsset, error) {
	staged, err := s.stager.Stage(fh)
	if err != nil {
		return nil, err
	}
	defer staged.Discard()

	content, err := os.ReadFile(staged.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaging, err)
	}

	ft, err := filetype.Match(content)
	if err != nil || ft == types.Unknown {
		return nil, fmt.Errorf("unsupported file type for %s", fh.Filename)
	}

	resolvedKind, err := resolveKind(kind, ft.MIME.Value)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	key := folder + "/" + id

	if err := s.store.Put(ctx, key, bytes.NewReader(content), ft.MIME.Value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return &models.MediaAsset{
		ObjectKey:    key,
		ResourceKind: resolvedKind,
		FileURL:      s.store.PublicURL(key),
	}, nil
}

// PublishBatch publishes files sequentially in submission order. When any
// file fails, compensating deletes are issued for the files of this batch
// that already made it to the remote store, then the error is returned.
func (s *mediaService) PublishBatch(ctx context.Context, fhs []*multipart.FileHeader, folder, kind string) ([]*models.MediaAsset, error) {
	var published []*models.MediaAsset

	for _, fh := range fhs {
		asset, err := s.Publish(ctx, fh, folder, kind)
		if err != nil {
			s.compensate(ctx, published)
			return nil, err
		}
		asset.DisplayOrder = len(published)
		published = append(published, asset)
	}

	return published, nil
}

func (s *mediaService) compensate(ctx context.Context, published []*models.MediaAsset) {
	for _, asset := range published {
		if err := s.store.Delete(ctx, asset.ObjectKey); err != nil {
			slog.Warn("compensating delete failed, asset orphaned",
				"key", asset.ObjectKey, "error", err.Error())
			s.retryLater(asset.ObjectKey, asset.ResourceKind)
		}
	}
}

// Reclaim issues one remote delete per asset, best effort. Failures are
// logged and handed to the retry queue; they never surface to the caller.
func (s *mediaService) Reclaim(ctx context.Context, assets []*models.MediaAsset) {
	for _, asset := range assets {
		if err := s.store.Delete(ctx, asset.ObjectKey); err != nil {
			slog.Warn("failed to reclaim remote asset",
				"key", asset.ObjectKey, "kind", asset.ResourceKind, "error", err.Error())
			s.retryLater(asset.ObjectKey, asset.ResourceKind)
		}
	}
}

// ReclaimURLs handles records that predate stored object keys: the key is
// re-derived from each URL's trailing path segment under the given folder.
// A URL that doesn't fit that shape is skipped with a warning; the remote
// store already treats deletes of unknown keys as a no-op.
func (s *mediaService) ReclaimURLs(ctx context.Context, urls []string, folder string) {
	for _, rawURL := range urls {
		id, ok := RemoteIDFromURL(rawURL)
		if !ok {
			slog.Warn("cannot derive remote id from URL", "url", rawURL)
			continue
		}
		key := folder + "/" + id
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("failed to reclaim remote asset", "key", key, "error", err.Error())
			s.retryLater(key, models.ResourceKindAuto)
		}
	}
}

func (s *mediaService) retryLater(objectKey, resourceKind string) {
	if s.rq == nil {
		return
	}
	if err := s.rq.EnqueueReclaim(objectKey, resourceKind); err != nil {
		slog.Warn("failed to enqueue reclaim retry", "key", objectKey, "error", err.Error())
	}
}

// RemoteIDFromURL extracts the final path segment of a URL and strips its
// file extension. This is the identifier the remote store knows the asset
// by when no object key was persisted.
func RemoteIDFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	segment := path.Base(u.Path)
	if segment == "" || segment == "." || segment == "/" {
		return "", false
	}
	if ext := path.Ext(segment); ext != "" {
		segment = strings.TrimSuffix(segment, ext)
	}
	if segment == "" {
		return "", false
	}
	return segment, true
}

func resolveKind(kind, mime string) (string, error) {
	isImage := strings.HasPrefix(mime, "image/")
	isVideo := strings.HasPrefix(mime, "video/")

	switch kind {
	case models.ResourceKindImage:
		if !isImage {
			return "", fmt.Errorf("expected an image, got %s", mime)
		}
		return models.ResourceKindImage, nil
	case models.ResourceKindVideo:
		if !isVideo {
			return "", fmt.Errorf("expected a video, got %s", mime)
		}
		return models.ResourceKindVideo, nil
	case models.ResourceKindAuto:
		if isImage {
			return models.ResourceKindImage, nil
		}
		if isVideo {
			return models.ResourceKindVideo, nil
		}
		return "", fmt.Errorf("unsupported media type %s", mime)
	default:
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
}
