package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"katalog-mediow/internal/media"
	"katalog-mediow/internal/models"

	"github.com/stretchr/testify/require"
)

// Funkcja pomocnicza do tworzenia użytkownika na potrzeby testów zasobów
func createTestUserForAssets(t *testing.T, username string) int64 {
	var userID int64
	query := `INSERT INTO users (username, password_hash, role) VALUES ($1, 'hash', 'USER') RETURNING id`
	err := testStore.pool.QueryRow(context.Background(), query, username).Scan(&userID)
	require.NoError(t, err)
	require.NotZero(t, userID)
	return userID
}

// Funkcja pomocnicza do tworzenia zasobu danego rodzaju
func createTestAsset(t *testing.T, kind models.Kind, ownerID int64, title, filename string) *models.Asset {
	asset, err := testStore.CreateAsset(context.Background(), kind, media.CreateAssetParams{
		Fields:         media.AssetFields{Title: title},
		StoredFilename: filename,
		OwnerID:        ownerID,
	})
	require.NoError(t, err)
	require.NotNil(t, asset)
	return asset
}

func TestCreateAsset(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_create_asset")

	desc := "Opis zdjęcia"
	asset, err := testStore.CreateAsset(context.Background(), models.KindPhoto, media.CreateAssetParams{
		Fields: media.AssetFields{
			Title:       "Zamek w Malborku",
			Description: &desc,
		},
		StoredFilename: "1700000000000-abc123.jpg",
		OwnerID:        ownerID,
	})

	require.NoError(t, err)
	require.NotNil(t, asset)
	require.NotZero(t, asset.ID)
	require.Equal(t, models.KindPhoto, asset.Kind)
	require.Equal(t, "Zamek w Malborku", asset.Title)
	require.NotNil(t, asset.Description)
	require.Equal(t, desc, *asset.Description)
	require.Nil(t, asset.FullDescription)
	require.Equal(t, ownerID, asset.OwnerID)
	require.NotZero(t, asset.CreatedAt)

	// Odczyt dołącza dane właściciela
	found, err := testStore.GetByID(context.Background(), models.KindPhoto, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Owner)
	require.Equal(t, "user_create_asset", found.Owner.Username)
}

func TestCreateAssetValidation(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_create_asset_validation")

	// Pusty tytuł
	_, err := testStore.CreateAsset(context.Background(), models.KindPhoto, media.CreateAssetParams{
		Fields:         media.AssetFields{Title: "   "},
		StoredFilename: "1700000000001-abc123.jpg",
		OwnerID:        ownerID,
	})
	var validationErr *media.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "title", validationErr.Field)

	// Za długi tytuł
	_, err = testStore.CreateAsset(context.Background(), models.KindPhoto, media.CreateAssetParams{
		Fields:         media.AssetFields{Title: strings.Repeat("x", 300)},
		StoredFilename: "1700000000002-abc123.jpg",
		OwnerID:        ownerID,
	})
	require.ErrorAs(t, err, &validationErr)

	// Nieistniejący właściciel
	_, err = testStore.CreateAsset(context.Background(), models.KindPhoto, media.CreateAssetParams{
		Fields:         media.AssetFields{Title: "Tytuł"},
		StoredFilename: "1700000000003-abc123.jpg",
		OwnerID:        999999,
	})
	require.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestGetByIDKindScoped(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_get_by_id")
	photo := createTestAsset(t, models.KindPhoto, ownerID, "Zdjęcie", "get_by_id.jpg")

	// Zły rodzaj nie znajduje wiersza
	found, err := testStore.GetByID(context.Background(), models.KindVideo, photo.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	found, err = testStore.GetByID(context.Background(), models.KindPhoto, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, photo.ID, found.ID)
}

func TestListPage(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_list_page")

	var ids []int64
	for i := 0; i < 5; i++ {
		asset := createTestAsset(t, models.KindVideo, ownerID,
			fmt.Sprintf("Film %d", i), fmt.Sprintf("list_page_%d.mp4", i))
		ids = append(ids, asset.ID)
	}

	page, total, err := testStore.ListPage(context.Background(), models.KindVideo, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.GreaterOrEqual(t, total, int64(5))
	// Stabilna kolejność po rosnącym id
	require.Less(t, page[0].ID, page[1].ID)

	// Offset poza końcem zwraca pustą stronę, ale total bez zmian
	emptyPage, emptyTotal, err := testStore.ListPage(context.Background(), models.KindVideo, 10, int(total))
	require.NoError(t, err)
	require.Len(t, emptyPage, 0)
	require.Equal(t, total, emptyTotal)

	byOwner, err := testStore.ListByOwner(context.Background(), models.KindVideo, ownerID)
	require.NoError(t, err)
	require.Len(t, byOwner, 5)
	require.Equal(t, ids[0], byOwner[0].ID)
}

func TestGetManyByIDs(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_get_many")
	a1 := createTestAsset(t, models.KindPhoto, ownerID, "Pierwsze", "get_many_1.jpg")
	a2 := createTestAsset(t, models.KindPhoto, ownerID, "Drugie", "get_many_2.jpg")

	// Nieistniejące id jest po prostu pomijane
	assets, err := testStore.GetManyByIDs(context.Background(), models.KindPhoto, []int64{a1.ID, a2.ID, 999999})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, a1.ID, assets[0].ID)
	require.Equal(t, a2.ID, assets[1].ID)
}

func TestUpdateAsset(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_update_asset")
	asset := createTestAsset(t, models.KindPhoto, ownerID, "Stary tytuł", "update_asset.jpg")

	newTitle := "Nowy tytuł"
	newDesc := "Nowy opis"
	updated, err := testStore.UpdateAsset(context.Background(), models.KindPhoto, asset.ID, media.AssetUpdate{
		Title:       &newTitle,
		Description: &newDesc,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, newTitle, updated.Title)
	require.NotNil(t, updated.Description)
	require.Equal(t, newDesc, *updated.Description)
	// Nazwa pliku nigdy się nie zmienia przy aktualizacji metadanych
	require.Equal(t, asset.StoredFilename, updated.StoredFilename)

	// Pominięte pola zostają nietknięte
	updated, err = testStore.UpdateAsset(context.Background(), models.KindPhoto, asset.ID, media.AssetUpdate{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, newTitle, updated.Title)
	require.Equal(t, newDesc, *updated.Description)

	// Nieistniejący wiersz
	updated, err = testStore.UpdateAsset(context.Background(), models.KindPhoto, 999999, media.AssetUpdate{Title: &newTitle})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestDeleteAssets(t *testing.T) {
	ownerID := createTestUserForAssets(t, "user_delete_assets")
	otherID := createTestUserForAssets(t, "user_delete_assets_other")
	principal := models.Principal{ID: ownerID, Role: models.RoleUser}

	a1 := createTestAsset(t, models.KindPhoto, ownerID, "Do usunięcia 1", "delete_1.jpg")
	a2 := createTestAsset(t, models.KindPhoto, ownerID, "Do usunięcia 2", "delete_2.jpg")
	foreign := createTestAsset(t, models.KindPhoto, otherID, "Cudze", "delete_foreign.jpg")

	// Batch z cudzym zasobem jest odrzucany w całości
	deleted, err := testStore.DeleteAssets(context.Background(), models.KindPhoto, []int64{a1.ID, foreign.ID}, principal)
	var forbiddenErr *media.ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)
	require.Equal(t, foreign.ID, forbiddenErr.AssetID)
	require.Nil(t, deleted)

	// Żaden wiersz nie zniknął
	found, err := testStore.GetByID(context.Background(), models.KindPhoto, a1.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	// Własne zasoby znikają, zwracane są nazwy plików
	deleted, err = testStore.DeleteAssets(context.Background(), models.KindPhoto, []int64{a1.ID, a2.ID, 999999}, principal)
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	require.Equal(t, "delete_1.jpg", deleted[0].StoredFilename)
	require.Equal(t, "delete_2.jpg", deleted[1].StoredFilename)

	found, err = testStore.GetByID(context.Background(), models.KindPhoto, a1.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	// Administrator może usuwać cudze zasoby
	admin := models.Principal{ID: ownerID, Role: models.RoleAdmin}
	deleted, err = testStore.DeleteAssets(context.Background(), models.KindPhoto, []int64{foreign.ID}, admin)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.Equal(t, foreign.ID, deleted[0].ID)

	// Puste wejście to pusty wynik
	deleted, err = testStore.DeleteAssets(context.Background(), models.KindPhoto, []int64{999999}, principal)
	require.NoError(t, err)
	require.Empty(t, deleted)
}

func TestDeleteAssetsWithError(t *testing.T) {
	// Błąd w transakcji nie może zostawić częściowego stanu, więc
	// ForbiddenError z środka batcha wycofuje też wcześniejsze wiersze.
	ownerID := createTestUserForAssets(t, "user_delete_assets_tx")
	otherID := createTestUserForAssets(t, "user_delete_assets_tx_other")
	principal := models.Principal{ID: ownerID, Role: models.RoleUser}

	mine := createTestAsset(t, models.KindVideo, ownerID, "Mój film", "tx_mine.mp4")
	foreign := createTestAsset(t, models.KindVideo, otherID, "Cudzy film", "tx_foreign.mp4")

	_, err := testStore.DeleteAssets(context.Background(), models.KindVideo, []int64{mine.ID, foreign.ID}, principal)
	require.Error(t, err)
	require.True(t, errors.Is(err, media.ErrForbidden))

	for _, id := range []int64{mine.ID, foreign.ID} {
		found, err := testStore.GetByID(context.Background(), models.KindVideo, id)
		require.NoError(t, err)
		require.NotNil(t, found)
	}
}
