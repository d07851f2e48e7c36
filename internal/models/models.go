// Package models defines the entities stored by the repository and the
// request/response shapes exchanged over the HTTP API.
package models

import "time"

// Item statuses.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusClaimed   = "claimed"
)

// DefaultCreatedBy is recorded on items registered without an identified visitor.
const DefaultCreatedBy = "admin"

// User is a registered account. The role field is stored but not acted upon.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Category is a fixed classification label assigned to items.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Item is a found physical object tracked by the system.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CategoryID  string     `json:"categoryId"`
	Location    string     `json:"location"`
	DateFound   time.Time  `json:"dateFound"`
	Status      string     `json:"status"`
	ImageURL    *string    `json:"imageUrl"`
	ClaimedBy   *string    `json:"claimedBy"`
	ClaimedDate *time.Time `json:"claimedDate"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewItem carries the normalized fields of an item about to be stored.
// The repository assigns the id and the creation timestamp.
type NewItem struct {
	Name        string
	Description string
	CategoryID  string
	Location    string
	DateFound   time.Time
	Status      string
	ImageURL    *string
	ClaimedBy   *string
	ClaimedDate *time.Time
	CreatedBy   string
}

// ItemPatch describes a partial update. Nil pointers mean "leave untouched".
// ImageURL and ClaimedBy are clearable, so they carry an explicit presence
// flag: when the flag is set and the pointer is nil the stored value is
// cleared to null.
type ItemPatch struct {
	Name         *string
	Description  *string
	CategoryID   *string
	Location     *string
	Status       *string
	ImageURL     *string
	ImageURLSet  bool
	ClaimedBy    *string
	ClaimedBySet bool
	DateFound    *time.Time
	ClaimedDate  *time.Time
}

// CreateCategoryRequest is the payload of POST /api/categories.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// CreateItemRequest is the payload of POST /api/items. Date-bearing fields
// arrive as strings and are parsed by the handler before reaching the
// repository.
type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	CategoryID  string  `json:"categoryId" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	DateFound   string  `json:"dateFound" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=available pending claimed"`
	ImageURL    *string `json:"imageUrl"`
	ClaimedBy   *string `json:"claimedBy"`
	ClaimedDate *string `json:"claimedDate"`
	CreatedBy   string  `json:"createdBy"`
}

// UpdateItemRequest is the payload of PATCH /api/items/{id}. Every field is
// optional; absent fields leave the stored record untouched.
type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	CategoryID  *string `json:"categoryId"`
	Location    *string `json:"location" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=available pending claimed"`
	ImageURL    *string `json:"imageUrl"`
	ClaimedBy   *string `json:"claimedBy"`
	DateFound   *string `json:"dateFound"`
	ClaimedDate *string `json:"claimedDate"`
}

// FieldError describes a single payload validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body returned for every non-2xx outcome.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// StatsResponse is the body of GET /api/internal/stats.
type StatsResponse struct {
	Items int64 `json:"items"`
	Users int64 `json:"users"`
}
