package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/transfer"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*listingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &listingRepository{db: db}, mock
}

var listingColumns = []string{
	"id", "owner_id", "name", "price", "description", "location", "contact",
	"images", "videos", "status", "created_at", "updated_at",
}

func TestListingCreateReturnsID(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO listings").
		WithArgs(int64(7), "Jersey cow", 550.0, "", "Kandy", "0771234567",
			sqlmock.AnyArg(), sqlmock.AnyArg(), models.ListingStatusAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	id, err := repo.Create(context.Background(), nil, &models.Listing{
		OwnerID:  7,
		Name:     "Jersey cow",
		Price:    550,
		Location: "Kandy",
		Contact:  "0771234567",
		Images:   []string{"https://cdn.test/animals/images/a"},
		Status:   models.ListingStatusAvailable,
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingGetByIDScansArrays(t *testing.T) {
	repo, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(listingColumns).AddRow(
			int64(12), int64(7), "Jersey cow", 550.0, "", "Kandy", "0771234567",
			"{https://cdn.test/animals/images/a,https://cdn.test/animals/images/b}",
			"{}", models.ListingStatusAvailable, now, now,
		))

	listing, err := repo.GetByID(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://cdn.test/animals/images/a",
		"https://cdn.test/animals/images/b",
	}, listing.Images)
	require.Empty(t, listing.Videos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingGetByIDMissing(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(listingColumns))

	listing, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, listing)
}

func TestListingCheckByOwnerID(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT 1 FROM listings").
		WithArgs(int64(12), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM listings").
		WithArgs(int64(12), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	owned, err := repo.CheckByOwnerID(context.Background(), 12, 7)
	require.NoError(t, err)
	require.True(t, owned)

	owned, err = repo.CheckByOwnerID(context.Background(), 12, 8)
	require.NoError(t, err)
	require.False(t, owned)
}

func TestListingUpdateWritesOnlyPatchedColumns(t *testing.T) {
	repo, mock := newMockDB(t)

	name := "Updated cow"
	mock.ExpectExec(`UPDATE listings SET name = \$1, images = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(name, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), nil, 12, &transfer.ListingPatch{
		Name:   &name,
		Images: []string{"https://cdn.test/animals/images/c"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingUpdateEmptyPatchBumpsTimestamp(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE listings SET updated_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), nil, 12, &transfer.ListingPatch{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRemoveInsideTx(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM listings").
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Remove(context.Background(), tx, 12))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
