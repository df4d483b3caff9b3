package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
	"github.com/stretchr/testify/require"
)

type fakeToolRepo struct {
	items  map[int64]*models.ToolItem
	nextID int64
}

func newFakeToolRepo() *fakeToolRepo {
	return &fakeToolRepo{items: map[int64]*models.ToolItem{}}
}

func (r *fakeToolRepo) Create(ctx context.Context, tx *sql.Tx, item *models.ToolItem) (int64, error) {
	r.nextID++
	stored := *item
	stored.ID = r.nextID
	r.items[r.nextID] = &stored
	return r.nextID, nil
}

func (r *fakeToolRepo) GetByID(ctx context.Context, id int64) (*models.ToolItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeToolRepo) List(ctx context.Context, filter *transfer.ToolFilter) ([]*models.ToolItem, error) {
	var out []*models.ToolItem
	for _, item := range r.items {
		if filter != nil && filter.Type != "" && item.Type != filter.Type {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeToolRepo) CheckByOwnerID(ctx context.Context, itemID, ownerID int64) (bool, error) {
	item, ok := r.items[itemID]
	return ok && item.OwnerID == ownerID, nil
}

func (r *fakeToolRepo) Update(ctx context.Context, tx *sql.Tx, id int64, patch *transfer.ToolPatch) error {
	item := r.items[id]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Type != nil {
		item.Type = *patch.Type
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Image != nil {
		item.Image = *patch.Image
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.ForRent != nil {
		item.ForRent = *patch.ForRent
	}
	return nil
}

func (r *fakeToolRepo) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	delete(r.items, id)
	return nil
}

func newToolFixture(t *testing.T, store ObjectStorage) (ToolService, *fakeToolRepo, *fakeAssetRepo) {
	t.Helper()
	db, mock := newTxDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 4; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	media, _ := newTestMedia(t, store, nil)
	tr := newFakeToolRepo()
	ma := &fakeAssetRepo{}
	return NewToolService(db, tr, ma, media), tr, ma
}

func TestToolCreateWithImage(t *testing.T) {
	store := newFakeStore()
	svc, tr, ma := newToolFixture(t, store)

	id, err := svc.Create(context.Background(), 5,
		&transfer.ToolCreation{Name: "Sprayer", Type: models.ToolTypeTool, Price: "1200", ForRent: "true"},
		makeFileHeader(t, "image", "sprayer.png", pngBytes))
	require.NoError(t, err)

	item := tr.items[id]
	require.True(t, item.ForRent)
	require.Equal(t, "https://cdn.test/"+store.puts[0], item.Image)

	// The auto kind resolves to image for a PNG upload.
	assets, _ := ma.ListByOwnerField(context.Background(), models.OwnerTypeTool, id, models.FieldImage)
	require.Len(t, assets, 1)
	require.Equal(t, models.ResourceKindImage, assets[0].ResourceKind)
}

func TestToolCreateRejectsUnknownType(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newToolFixture(t, store)

	_, err := svc.Create(context.Background(), 5,
		&transfer.ToolCreation{Name: "Sprayer", Type: "machine", Price: "1200"}, nil)
	require.Error(t, err)
	require.Empty(t, store.puts)
}

func TestToolUpdateReplacesImage(t *testing.T) {
	store := newFakeStore()
	svc, tr, _ := newToolFixture(t, store)

	id, err := svc.Create(context.Background(), 5,
		&transfer.ToolCreation{Name: "Sprayer", Type: models.ToolTypeTool, Price: "1200"},
		makeFileHeader(t, "image", "old.png", pngBytes))
	require.NoError(t, err)
	oldKey := store.puts[0]

	updated, err := svc.Update(context.Background(), 5, id,
		&transfer.ToolCreation{Price: "999.50"},
		makeFileHeader(t, "image", "new.png", pngBytes))
	require.NoError(t, err)

	require.Equal(t, 999.5, updated.Price)
	require.NotEqual(t, "https://cdn.test/"+oldKey, updated.Image)
	require.Contains(t, store.deletes, oldKey)
	require.Equal(t, "Sprayer", tr.items[id].Name, "untouched fields keep their value")
}

func TestToolRemoveFallsBackToURLParsing(t *testing.T) {
	store := newFakeStore()
	svc, tr, _ := newToolFixture(t, store)

	// Legacy record: a URL on the item but no asset rows.
	tr.items[11] = &models.ToolItem{
		ID: 11, OwnerID: 5, Name: "Old sprayer",
		Image: "https://cdn.test/tools_pesticides/abc123.png",
	}
	tr.nextID = 11

	require.NoError(t, svc.Remove(context.Background(), 5, 11))
	require.Equal(t, []string{FolderTools + "/abc123"}, store.deletes)
	require.NotContains(t, tr.items, int64(11))
}

func TestToolRemovePrefersAssetRecords(t *testing.T) {
	store := newFakeStore()
	svc, tr, _ := newToolFixture(t, store)

	id, err := svc.Create(context.Background(), 5,
		&transfer.ToolCreation{Name: "Sprayer", Type: models.ToolTypePesticide, Price: "300"},
		makeFileHeader(t, "image", "bottle.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), 5, id))
	require.Equal(t, store.puts, store.deletes)
	require.NotContains(t, tr.items, id)
}
