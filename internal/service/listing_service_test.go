package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("remote unavailable")

func fileHeaders(t *testing.T, field string, contents ...[]byte) []*multipart.FileHeader {
	t.Helper()
	var fhs []*multipart.FileHeader
	for i, content := range contents {
		name := fmt.Sprintf("upload-%d.bin", i)
		fhs = append(fhs, makeFileHeader(t, field, name, content))
	}
	return fhs
}

func keyFromTestURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/")
}

type fakeListingRepo struct {
	listings map[int64]*models.Listing
	nextID   int64
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[int64]*models.Listing{}}
}

func (r *fakeListingRepo) Create(ctx context.Context, tx *sql.Tx, listing *models.Listing) (int64, error) {
	r.nextID++
	stored := *listing
	stored.ID = r.nextID
	r.listings[r.nextID] = &stored
	return r.nextID, nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeListingRepo) List(ctx context.Context) ([]*models.Listing, error) {
	var out []*models.Listing
	for _, listing := range r.listings {
		out = append(out, listing)
	}
	return out, nil
}

func (r *fakeListingRepo) CheckByOwnerID(ctx context.Context, listingID, ownerID int64) (bool, error) {
	listing, ok := r.listings[listingID]
	return ok && listing.OwnerID == ownerID, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ListingPatch) error {
	listing := r.listings[id]
	if patch.Name != nil {
		listing.Name = *patch.Name
	}
	if patch.Price != nil {
		listing.Price = *patch.Price
	}
	if patch.Description != nil {
		listing.Description = *patch.Description
	}
	if patch.Location != nil {
		listing.Location = *patch.Location
	}
	if patch.Contact != nil {
		listing.Contact = *patch.Contact
	}
	if patch.Status != nil {
		listing.Status = *patch.Status
	}
	if patch.Images != nil {
		listing.Images = patch.Images
	}
	if patch.Videos != nil {
		listing.Videos = patch.Videos
	}
	return nil
}

func (r *fakeListingRepo) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	delete(r.listings, id)
	return nil
}

type fakeAssetRepo struct {
	assets []*models.MediaAsset
	nextID int64
}

func (r *fakeAssetRepo) Create(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error) {
	r.nextID++
	stored := *asset
	stored.ID = r.nextID
	r.assets = append(r.assets, &stored)
	return r.nextID, nil
}

func (r *fakeAssetRepo) ListByOwner(ctx context.Context, ownerType string, ownerID int64) ([]*models.MediaAsset, error) {
	var out []*models.MediaAsset
	for _, asset := range r.assets {
		if asset.OwnerType == ownerType && asset.OwnerID == ownerID {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListByOwnerField(ctx context.Context, ownerType string, ownerID int64, field string) ([]*models.MediaAsset, error) {
	var out []*models.MediaAsset
	for _, asset := range r.assets {
		if asset.OwnerType == ownerType && asset.OwnerID == ownerID && asset.Field == field {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) RemoveByOwner(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64) error {
	kept := r.assets[:0]
	for _, asset := range r.assets {
		if !(asset.OwnerType == ownerType && asset.OwnerID == ownerID) {
			kept = append(kept, asset)
		}
	}
	r.assets = kept
	return nil
}

func (r *fakeAssetRepo) RemoveByOwnerField(ctx context.Context, tx *sql.Tx, ownerType string, ownerID int64, field string) error {
	kept := r.assets[:0]
	for _, asset := range r.assets {
		if !(asset.OwnerType == ownerType && asset.OwnerID == ownerID && asset.Field == field) {
			kept = append(kept, asset)
		}
	}
	r.assets = kept
	return nil
}

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newListingFixture(t *testing.T, store ObjectStorage) (ListingService, *fakeListingRepo, *fakeAssetRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTxDB(t)
	media, _ := newTestMedia(t, store, nil)
	lr := newFakeListingRepo()
	ma := &fakeAssetRepo{}
	return NewListingService(db, lr, ma, media), lr, ma, mock
}

func TestListingCreateWithTwoImages(t *testing.T) {
	store := newFakeStore()
	svc, lr, ma, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()

	lc := &transfer.ListingCreation{Name: "Jersey cow", Price: "550.00", Location: "Kandy", Contact: "0771234567"}

	id, err := svc.Create(context.Background(), 7, lc,
		fileHeaders(t, "images[]", pngBytes, pngBytes), nil)
	require.NoError(t, err)

	listing, err := lr.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, listing.Images, 2)
	require.Empty(t, listing.Videos)
	require.Equal(t, int64(7), listing.OwnerID)
	require.Equal(t, 550.0, listing.Price)

	// Asset records carry the object keys in submission order.
	assets, err := ma.ListByOwnerField(context.Background(), models.OwnerTypeListing, id, models.FieldImages)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, store.puts[0], assets[0].ObjectKey)
	require.Equal(t, store.puts[1], assets[1].ObjectKey)
	require.Equal(t, listing.Images[0], assets[0].FileURL)
}

func TestListingUpdateKeepsUntouchedFields(t *testing.T) {
	store := newFakeStore()
	svc, lr, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", pngBytes, pngBytes), nil)
	require.NoError(t, err)

	before, _ := lr.GetByID(context.Background(), id)

	// One new video, zero new images.
	updated, err := svc.Update(context.Background(), 7, id,
		&transfer.ListingCreation{}, nil,
		fileHeaders(t, "videos[]", mp4Bytes))
	require.NoError(t, err)

	require.Equal(t, before.Images, updated.Images, "images must be untouched")
	require.Len(t, updated.Videos, 1)
	require.Equal(t, before.Name, updated.Name)
}

func TestListingUpdateReplacesArrayWholesale(t *testing.T) {
	store := newFakeStore()
	svc, lr, ma, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", pngBytes, pngBytes), nil)
	require.NoError(t, err)

	before, _ := lr.GetByID(context.Background(), id)

	updated, err := svc.Update(context.Background(), 7, id,
		&transfer.ListingCreation{},
		fileHeaders(t, "images[]", pngBytes), nil)
	require.NoError(t, err)

	require.Len(t, updated.Images, 1, "new uploads replace, not append")
	require.NotContains(t, updated.Images, before.Images[0])

	// The replaced remote objects were reclaimed.
	for _, url := range before.Images {
		require.NotContains(t, store.objects, keyFromTestURL(url))
	}
	assets, _ := ma.ListByOwnerField(context.Background(), models.OwnerTypeListing, id, models.FieldImages)
	require.Len(t, assets, 1)
}

func TestListingCreateAbortsOnMidBatchFailure(t *testing.T) {
	store := newFakeStore()
	store.failPutAfter = 1
	svc, lr, ma, _ := newListingFixture(t, store)

	_, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", pngBytes, pngBytes, pngBytes), nil)
	require.ErrorIs(t, err, ErrPublish)

	require.Empty(t, lr.listings, "no record for a failed batch")
	require.Empty(t, ma.assets)
	require.Equal(t, store.puts, store.deletes, "published files of the failed batch are compensated")
}

func TestListingDeleteReclaimsEveryAsset(t *testing.T) {
	store := newFakeStore()
	svc, lr, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", pngBytes, pngBytes),
		fileHeaders(t, "videos[]", mp4Bytes))
	require.NoError(t, err)

	published := append([]string{}, store.puts...)

	require.NoError(t, svc.Remove(context.Background(), 7, id))

	require.ElementsMatch(t, published, store.deletes, "one delete attempt per referenced asset")
	listing, _ := lr.GetByID(context.Background(), id)
	require.Nil(t, listing)
}

func TestListingDeleteSucceedsWhenReclaimFails(t *testing.T) {
	store := newFakeStore()
	svc, lr, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", pngBytes), nil)
	require.NoError(t, err)

	store.deleteErr = errRemoteDown

	require.NoError(t, svc.Remove(context.Background(), 7, id),
		"record deletion must not depend on reclaim outcome")
	listing, _ := lr.GetByID(context.Background(), id)
	require.Nil(t, listing)
}

func TestListingDeleteLegacyURLFallback(t *testing.T) {
	store := newFakeStore()
	svc, lr, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// A record written before object keys were persisted: URLs only, one of
	// them not matching the expected shape.
	lr.listings[42] = &models.Listing{
		ID: 42, OwnerID: 7, Name: "Old bull",
		Images: []string{"https://cdn.test/animals/images/legacy1.jpg", "https://cdn.test/"},
	}
	lr.nextID = 42

	require.NoError(t, svc.Remove(context.Background(), 7, 42))

	require.Equal(t, []string{"animals/images/legacy1"}, store.deletes)
	listing, _ := lr.GetByID(context.Background(), 42)
	require.Nil(t, listing)
}

func TestListingUpdateMarksSold(t *testing.T) {
	store := newFakeStore()
	svc, _, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"}, nil, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 7, id,
		&transfer.ListingCreation{Status: models.ListingStatusSold}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, models.ListingStatusSold, updated.Status)

	_, err = svc.Update(context.Background(), 7, id,
		&transfer.ListingCreation{Status: "archived"}, nil, nil)
	require.Error(t, err)
}

func TestListingUpdateRejectsForeignOwner(t *testing.T) {
	store := newFakeStore()
	svc, _, _, mock := newListingFixture(t, store)
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 8, id, &transfer.ListingCreation{Name: "hijack"}, nil, nil)
	require.Error(t, err)

	err = svc.Remove(context.Background(), 8, id)
	require.Error(t, err)
}

func TestListingCreateTooManyImages(t *testing.T) {
	store := newFakeStore()
	svc, _, _, _ := newListingFixture(t, store)

	contents := make([][]byte, MaxListingImages+1)
	for i := range contents {
		contents[i] = pngBytes
	}

	_, err := svc.Create(context.Background(), 7,
		&transfer.ListingCreation{Name: "Jersey cow", Price: "550"},
		fileHeaders(t, "images[]", contents...), nil)
	require.Error(t, err)
	require.Empty(t, store.puts, "limit is enforced before any publish")
}
