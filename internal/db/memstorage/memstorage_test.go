package memstorage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/models"
)

func newTestItem(name string) models.NewItem {
	return models.NewItem{
		Name:        name,
		Description: "some description",
		CategoryID:  "some-category-id",
		Location:    "Sala 3",
		DateFound:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:      models.StatusAvailable,
		CreatedBy:   "admin",
	}
}

func TestSeededCategories(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	categories, err := theStorage.GetAllCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 6)

	names := []string{}
	ids := map[string]bool{}
	for _, cat := range categories {
		names = append(names, cat.Name)
		ids[cat.ID] = true
	}
	assert.Equal(
		t,
		[]string{"Eletrônicos", "Documentos", "Acessórios Pessoais", "Vestuário", "Chaves", "Outros"},
		names,
		"The seed categories should keep their insertion order",
	)
	assert.Len(t, ids, 6, "Every seeded category should get a distinct id")
}

func TestCategories(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	description := "Itens achados no estacionamento"
	cat, err := theStorage.CreateCategory(context.Background(), "Estacionamento", &description)
	require.NoError(t, err)
	require.NotEmpty(t, cat.ID)

	fetched, found, err := theStorage.GetCategory(context.Background(), cat.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cat, fetched)

	_, found, err = theStorage.GetCategory(context.Background(), "unknown-id")
	require.NoError(t, err)
	assert.False(t, found)

	categories, err := theStorage.GetAllCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 7)
	assert.Equal(t, "Estacionamento", categories[6].Name)
}

func TestUsers(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	userID, err := theStorage.CreateUser(context.Background(), &models.User{
		Username: "maria",
		Password: "segredo",
	})
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	usr, found, err := theStorage.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "maria", usr.Username)
	assert.Equal(t, "user", usr.Role, "The role should default to `user`")

	usr, found, err = theStorage.GetUserByUsername(context.Background(), "maria")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, userID, usr.ID)

	_, found, err = theStorage.GetUserByUsername(context.Background(), "joao")
	require.NoError(t, err)
	assert.False(t, found)

	count, err := theStorage.GetNumberOfUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateAndGetItem(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	before := time.Now()
	item, err := theStorage.CreateItem(context.Background(), newTestItem("Carteira"))
	require.NoError(t, err)

	require.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.Before(before), "createdAt should be assigned from the server clock")
	assert.Equal(t, "Carteira", item.Name)
	assert.Equal(t, models.StatusAvailable, item.Status)

	fetched, found, err := theStorage.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item, fetched, "A created item should be readable right away")
}

func TestCreateItemDefaultsStatus(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	newItem := newTestItem("Guarda-chuva")
	newItem.Status = ""
	item, err := theStorage.CreateItem(context.Background(), newItem)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, item.Status)
}

func TestGetAllItemsOrder(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	for _, name := range []string{"Celular", "Óculos", "Mochila", "Chaveiro"} {
		_, err := theStorage.CreateItem(context.Background(), newTestItem(name))
		require.NoError(t, err)
	}

	items, err := theStorage.GetAllItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i := 1; i < len(items); i++ {
		assert.False(
			t,
			items[i-1].CreatedAt.Before(items[i].CreatedAt),
			"The items should be ordered by createdAt descending",
		)
	}
}

func TestUpdateItem(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	item, err := theStorage.CreateItem(context.Background(), newTestItem("Relógio"))
	require.NoError(t, err)

	t.Run("merges provided fields only", func(t *testing.T) {
		status := models.StatusClaimed
		claimedBy := "Jane Doe"
		claimedDate := time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)
		updated, found, err := theStorage.UpdateItem(context.Background(), item.ID, models.ItemPatch{
			Status:       &status,
			ClaimedBy:    &claimedBy,
			ClaimedBySet: true,
			ClaimedDate:  &claimedDate,
		})
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, models.StatusClaimed, updated.Status)
		require.NotNil(t, updated.ClaimedBy)
		assert.Equal(t, "Jane Doe", *updated.ClaimedBy)
		require.NotNil(t, updated.ClaimedDate)
		assert.Equal(t, claimedDate, *updated.ClaimedDate)

		assert.Equal(t, item.Name, updated.Name, "Untouched fields should keep their values")
		assert.Equal(t, item.Location, updated.Location)
		assert.Equal(t, item.CreatedAt, updated.CreatedAt)
		assert.Equal(t, item.ID, updated.ID)
	})

	t.Run("clears clearable fields", func(t *testing.T) {
		imageURL := "https://example.com/foto.jpg"
		updated, found, err := theStorage.UpdateItem(context.Background(), item.ID, models.ItemPatch{
			ImageURL:    &imageURL,
			ImageURLSet: true,
		})
		require.NoError(t, err)
		require.True(t, found)
		require.NotNil(t, updated.ImageURL)

		updated, found, err = theStorage.UpdateItem(context.Background(), item.ID, models.ItemPatch{
			ImageURLSet:  true,
			ClaimedBySet: true,
		})
		require.NoError(t, err)
		require.True(t, found)
		assert.Nil(t, updated.ImageURL, "An explicitly cleared imageUrl should be stored as absent")
		assert.Nil(t, updated.ClaimedBy)
	})

	t.Run("unknown id", func(t *testing.T) {
		itemsBefore, err := theStorage.GetAllItems(context.Background())
		require.NoError(t, err)

		_, found, err := theStorage.UpdateItem(context.Background(), "unknown-id", models.ItemPatch{})
		require.NoError(t, err)
		assert.False(t, found)

		itemsAfter, err := theStorage.GetAllItems(context.Background())
		require.NoError(t, err)
		assert.Len(t, itemsAfter, len(itemsBefore), "A failed update should not alter the collection")
	})
}

func TestDeleteItem(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	item, err := theStorage.CreateItem(context.Background(), newTestItem("Notebook"))
	require.NoError(t, err)

	found, err := theStorage.DeleteItem(context.Background(), "unknown-id")
	require.NoError(t, err)
	assert.False(t, found, "Deleting an unknown id should report no removal")

	count, err := theStorage.GetNumberOfItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err = theStorage.DeleteItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = theStorage.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, found, "A deleted item should not be readable anymore")

	found, err = theStorage.DeleteItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, found, "Deleting twice should report no removal the second time")

	count, err = theStorage.GetNumberOfItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPingAndClose(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	assert.NoError(t, theStorage.Ping(context.Background()))
	assert.NoError(t, theStorage.Close())
}
