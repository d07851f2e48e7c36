// Package mockstorage provides a testify-based mock of the storage contract
// consumed by the router and auth packages. Use it in handler tests to
// simulate storage behavior, including failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lostfound/internal/models"
)

// StorageMock implements every storage method used by the HTTP layer.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by id.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByUsername mocks the linear username scan.
func (m *StorageMock) GetUserByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateCategory mocks storing a new category.
func (m *StorageMock) CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error) {
	args := m.Called(ctx, name, description)
	cat, _ := args.Get(0).(*models.Category)
	return cat, args.Error(1)
}

// GetAllCategories mocks listing categories.
func (m *StorageMock) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

// GetCategory mocks fetching a category by id.
func (m *StorageMock) GetCategory(ctx context.Context, categoryID string) (*models.Category, bool, error) {
	args := m.Called(ctx, categoryID)
	cat, _ := args.Get(0).(*models.Category)
	return cat, args.Bool(1), args.Error(2)
}

// CreateItem mocks storing a new item.
func (m *StorageMock) CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error) {
	args := m.Called(ctx, newItem)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

// GetAllItems mocks listing items.
func (m *StorageMock) GetAllItems(ctx context.Context) ([]models.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]models.Item)
	return items, args.Error(1)
}

// GetItem mocks fetching an item by id.
func (m *StorageMock) GetItem(ctx context.Context, itemID string) (*models.Item, bool, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Bool(1), args.Error(2)
}

// UpdateItem mocks the partial update.
func (m *StorageMock) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, bool, error) {
	args := m.Called(ctx, itemID, patch)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Bool(1), args.Error(2)
}

// DeleteItem mocks the removal.
func (m *StorageMock) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

// GetNumberOfItems mocks the item count.
func (m *StorageMock) GetNumberOfItems(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfUsers mocks the user count.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
