// Package postgresdb provides a PostgreSQL-backed implementation of the
// inventory storage, for deployments that outlive a single process. It
// exposes the same contract as the in-memory store and runs goose schema
// migrations on startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lostfound/internal/models"
)

// PostgresDB persists users, categories and items in a PostgreSQL database.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New connects to the database, applies migrations from migrationsDir and
// returns a ready PostgresDB.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose.SetDialect: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("goose.Up: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.connectionTimeout)
}

// CreateUser stores the user under a fresh id and returns the id.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *models.User) (string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	role := usr.Role
	if role == "" {
		role = "user"
	}
	userID := uuid.New().String()
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password, role) VALUES ($1, $2, $3, $4)`,
		userID,
		usr.Username,
		usr.Password,
		role,
	)
	if err != nil {
		return "", err
	}

	return userID, nil
}

func (db *PostgresDB) getUserByField(ctx context.Context, field, value string) (*models.User, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, username, password, role FROM users WHERE `+field+` = $1`,
		value,
	)
	usr := &models.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.Password, &usr.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return usr, true, nil
}

// GetUserByID returns the stored user, or found=false when the id is unknown.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	return db.getUserByField(ctx, "id", userID)
}

// GetUserByUsername returns the first user with the given username.
func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	return db.getUserByField(ctx, "username", username)
}

// CreateCategory stores a new category and returns the full record.
func (db *PostgresDB) CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	cat := models.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)`,
		cat.ID,
		cat.Name,
		cat.Description,
	)
	if err != nil {
		return nil, err
	}

	return &cat, nil
}

// GetAllCategories returns every category in insertion order.
func (db *PostgresDB) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, name, description FROM categories ORDER BY inserted_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}

	return result, rows.Err()
}

// GetCategory returns the category with the given id, or found=false.
func (db *PostgresDB) GetCategory(ctx context.Context, categoryID string) (*models.Category, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, name, description FROM categories WHERE id = $1`,
		categoryID,
	)
	cat := &models.Category{}
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return cat, true, nil
}

// CreateItem stores a new item with a fresh id and server-assigned creation
// timestamp and returns the full record.
func (db *PostgresDB) CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

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
	}
	if item.Status == "" {
		item.Status = models.StatusAvailable
	}

	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO items
			(id, name, description, category_id, location, date_found, status,
			 image_url, claimed_by, claimed_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		item.ID,
		item.Name,
		item.Description,
		item.CategoryID,
		item.Location,
		item.DateFound,
		item.Status,
		item.ImageURL,
		item.ClaimedBy,
		item.ClaimedDate,
		item.CreatedBy,
	)
	if err := row.Scan(&item.CreatedAt); err != nil {
		return nil, err
	}

	return &item, nil
}

const itemColumns = `id, name, description, category_id, location, date_found,
	status, image_url, claimed_by, claimed_date, created_by, created_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.CategoryID,
		&item.Location,
		&item.DateFound,
		&item.Status,
		&item.ImageURL,
		&item.ClaimedBy,
		&item.ClaimedDate,
		&item.CreatedBy,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetAllItems returns every item ordered by creation time, most recent first.
func (db *PostgresDB) GetAllItems(ctx context.Context) ([]models.Item, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.database.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}

	return result, rows.Err()
}

// GetItem returns the item with the given id, or found=false.
func (db *PostgresDB) GetItem(ctx context.Context, itemID string) (*models.Item, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	item, err := scanItem(db.database.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		itemID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return item, true, nil
}

// UpdateItem merges the patch into the stored record and returns the
// updated row, or found=false when the id is unknown.
func (db *PostgresDB) UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	setClauses := []string{}
	args := []any{}
	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.CategoryID != nil {
		addSet("category_id", *patch.CategoryID)
	}
	if patch.Location != nil {
		addSet("location", *patch.Location)
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.ImageURLSet {
		addSet("image_url", patch.ImageURL)
	}
	if patch.ClaimedBySet {
		addSet("claimed_by", patch.ClaimedBy)
	}
	if patch.DateFound != nil {
		addSet("date_found", *patch.DateFound)
	}
	if patch.ClaimedDate != nil {
		addSet("claimed_date", *patch.ClaimedDate)
	}

	if len(setClauses) == 0 {
		return db.GetItem(ctx, itemID)
	}

	args = append(args, itemID)
	query := fmt.Sprintf(
		`UPDATE items SET %s WHERE id = $%d RETURNING `+itemColumns,
		strings.Join(setClauses, ", "),
		len(args),
	)

	item, err := scanItem(db.database.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return item, true, nil
}

// DeleteItem removes the row and reports whether it existed.
func (db *PostgresDB) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	result, err := db.database.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (db *PostgresDB) countRows(ctx context.Context, table string) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetNumberOfItems returns the current item count.
func (db *PostgresDB) GetNumberOfItems(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "items")
}

// GetNumberOfUsers returns the current user count.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "users")
}

// Ping verifies the database connection.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
