// Package memstorage provides the default, in-memory implementation of the
// inventory storage. All entities live in process memory and are lost on
// restart; construction seeds the fixed set of categories.
package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lostfound/internal/models"
)

// MemStorage keeps users, categories and items in maps keyed by their
// generated ids. A single RWMutex guards all three collections against
// concurrent request handlers.
type MemStorage struct {
	mu            sync.RWMutex
	users         map[string]models.User
	categories    map[string]models.Category
	categoryOrder []string
	items         map[string]models.Item
}

func strPtr(s string) *string {
	return &s
}

var seedCategories = []models.Category{
	{Name: "Eletrônicos", Description: strPtr("Celulares, tablets, notebooks, acessórios")},
	{Name: "Documentos", Description: strPtr("RG, CPF, CNH, carteiras")},
	{Name: "Acessórios Pessoais", Description: strPtr("Óculos, relógios, joias")},
	{Name: "Vestuário", Description: strPtr("Roupas, calçados, bolsas")},
	{Name: "Chaves", Description: strPtr("Chaves de casa, carro, etc")},
	{Name: "Outros", Description: strPtr("Demais itens")},
}

// New returns a MemStorage pre-populated with the six fixed categories.
func New() (*MemStorage, error) {
	theStorage := &MemStorage{
		users:      map[string]models.User{},
		categories: map[string]models.Category{},
		items:      map[string]models.Item{},
	}

	for _, cat := range seedCategories {
		cat.ID = uuid.New().String()
		theStorage.categories[cat.ID] = cat
		theStorage.categoryOrder = append(theStorage.categoryOrder, cat.ID)
	}

	return theStorage, nil
}

// CreateUser assigns a fresh id, stores the user and returns the id.
// Username uniqueness is declared by the schema but not checked here.
func (theStorage *MemStorage) CreateUser(ctx context.Context, usr *models.User) (string, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	stored := *usr
	stored.ID = uuid.New().String()
	if stored.Role == "" {
		stored.Role = "user"
	}
	theStorage.users[stored.ID] = stored

	return stored.ID, nil
}

// GetUserByID returns the stored user, or found=false when the id is unknown.
func (theStorage *MemStorage) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	usr, found := theStorage.users[userID]
	if !found {
		return nil, false, nil
	}

	return &usr, true, nil
}

// GetUserByUsername scans the stored users and returns the first match.
func (theStorage *MemStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	for _, usr := range theStorage.users {
		if usr.Username == username {
			found := usr
			return &found, true, nil
		}
	}

	return nil, false, nil
}

// CreateCategory stores a new category. Name uniqueness against existing
// categories is not verified.
func (theStorage *MemStorage) CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	cat := models.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	theStorage.categories[cat.ID] = cat
	theStorage.categoryOrder = append(theStorage.categoryOrder, cat.ID)

	return &cat, nil
}

// GetAllCategories returns every category in insertion order.
func (theStorage *MemStorage) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	result := make([]models.Category, 0, len(theStorage.categoryOrder))
	for _, id := range theStorage.categoryOrder {
		result = append(result, theStorage.categories[id])
	}

	return result, nil
}

// GetCategory returns the category with the given id, or found=false.
func (theStorage *MemStorage) GetCategory(ctx context.Context, categoryID string) (*models.Category, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	cat, found := theStorage.categories[categoryID]
	if !found {
		return nil, false, nil
	}

	return &cat, true, nil
}

// CreateItem assigns a fresh id and the creation timestamp, stores the item
// and returns the full record.
func (theStorage *MemStorage) CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	item := models.Item{
		ID:          uuid.New().String(),
		Name:        newItem.Name,
		Description: newItem.Description,
		CategoryID:  newItem.CategoryID,
		Location:    newItem.Location,
		DateFound:   newItem.DateFound,
		Status:      newItem.Status,
		ImageURL:    newItem.ImageURL,
		ClaimedBy:   newItem.ClaimedBy,
		ClaimedDate: newItem.ClaimedDate,
		CreatedBy:   newItem.CreatedBy,
		CreatedAt:   time.Now(),
	}
	if item.Status == "" {
		item.Status = models.StatusAvailable
	}
	theStorage.items[item.ID] = item

	return &item, nil
}

// GetAllItems returns every item ordered by creation time, most recent
// first. The ordering is recomputed on every call.
func (theStorage *MemStorage) GetAllItems(ctx context.Context) ([]models.Item, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	result := make([]models.Item, 0, len(theStorage.items))
	for _, item := range theStorage.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// GetItem returns the item with the given id, or found=false.
func (theStorage *MemStorage) GetItem(ctx context.Context, itemID string) (*models.Item, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	item, found := theStorage.items[itemID]
	if !found {
		return nil, false, nil
	}

	return &item, true, nil
}

// UpdateItem merges the patch into the stored record, field by field.
// Absent fields stay untouched; id and createdAt are never overwritten.
func (theStorage *MemStorage) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, bool, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	item, found := theStorage.items[itemID]
	if !found {
		return nil, false, nil
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		item.CategoryID = *patch.CategoryID
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.ImageURLSet {
		item.ImageURL = patch.ImageURL
	}
	if patch.ClaimedBySet {
		item.ClaimedBy = patch.ClaimedBy
	}
	if patch.DateFound != nil {
		item.DateFound = *patch.DateFound
	}
	if patch.ClaimedDate != nil {
		claimedDate := *patch.ClaimedDate
		item.ClaimedDate = &claimedDate
	}

	theStorage.items[itemID] = item

	return &item, true, nil
}

// DeleteItem removes the record and reports whether it existed.
func (theStorage *MemStorage) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	_, found := theStorage.items[itemID]
	if found {
		delete(theStorage.items, itemID)
	}

	return found, nil
}

// GetNumberOfItems returns the current item count.
func (theStorage *MemStorage) GetNumberOfItems(ctx context.Context) (int64, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return int64(len(theStorage.items)), nil
}

// GetNumberOfUsers returns the current user count.
func (theStorage *MemStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return int64(len(theStorage.users)), nil
}

// Ping always succeeds for the in-memory store.
func (theStorage *MemStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (theStorage *MemStorage) Close() error {
	return nil
}
