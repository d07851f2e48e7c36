// Package router wires the HTTP API: it validates payloads, calls the
// storage and translates outcomes into status codes. It is the only layer
// producing user-facing error messages.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"lostfound/internal/auth"
	"lostfound/internal/gzippedhttp"
	"lostfound/internal/ipchecker"
	"lostfound/internal/logger"
	"lostfound/internal/models"
)

type categoryKeeper interface {
	CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*models.Category, bool, error)
}

type itemKeeper interface {
	CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error)
	GetAllItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, bool, error)
	UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, bool, error)
	DeleteItem(ctx context.Context, itemID string) (bool, error)
}

type statsKeeper interface {
	GetNumberOfItems(ctx context.Context) (int64, error)
	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	categoryKeeper
	itemKeeper
	statsKeeper
	pinger
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
	RegisterNewUser(h http.Handler) http.Handler
}

// Router holds the dependencies shared by all HTTP handlers.
type Router struct {
	db        storage
	validate  *validator.Validate
	ipChecker *ipchecker.IPChecker
}

// New assembles the chi mux with logging, gzip and visitor identification
// middlewares and every API route.
func New(db storage, authenticator authenticator, ipChecker *ipchecker.IPChecker) *chi.Mux {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	theRouter := &Router{
		db:        db,
		validate:  validate,
		ipChecker: ipChecker,
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)
	mux.Use(gzippedhttp.UngzipRequest)
	mux.Use(gzippedhttp.GzipResponse)
	mux.Use(authenticator.AuthenticateUser)

	mux.Route("/api", func(api chi.Router) {
		api.Get("/ping", theRouter.getPing)

		api.Get("/categories", theRouter.getCategories)
		api.Post("/categories", theRouter.postCategory)
		api.Get("/categories/{id}", theRouter.getCategory)

		api.Get("/items", theRouter.getItems)
		api.With(authenticator.RegisterNewUser).Post("/items", theRouter.postItem)
		api.Get("/items/{id}", theRouter.getItem)
		api.Patch("/items/{id}", theRouter.patchItem)
		api.Delete("/items/{id}", theRouter.deleteItem)

		api.Get("/internal/stats", theRouter.getStats)
	})

	return mux
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

func writeJSON(response http.ResponseWriter, status int, body any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, status int, message string, details []models.FieldError) {
	writeJSON(response, status, models.ErrorResponse{
		Message: message,
		Errors:  details,
	})
}

func validationDetails(err error) []models.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]models.FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, models.FieldError{
			Field:   fieldError.Field(),
			Message: fieldError.Tag(),
		})
	}

	return details
}

func (theRouter *Router) getPing(response http.ResponseWriter, request *http.Request) {
	if err := theRouter.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (theRouter *Router) getCategories(response http.ResponseWriter, request *http.Request) {
	categories, err := theRouter.db.GetAllCategories(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetAllCategories()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao buscar categorias", nil)
		return
	}

	writeJSON(response, http.StatusOK, categories)
}

func (theRouter *Router) postCategory(response http.ResponseWriter, request *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}
	if err := theRouter.validate.Struct(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", validationDetails(err))
		return
	}

	category, err := theRouter.db.CreateCategory(request.Context(), req.Name, req.Description)
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.CreateCategory()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao criar categoria", nil)
		return
	}

	writeJSON(response, http.StatusCreated, category)
}

func (theRouter *Router) getCategory(response http.ResponseWriter, request *http.Request) {
	category, found, err := theRouter.db.GetCategory(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetCategory()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao buscar categoria", nil)
		return
	}
	if !found {
		writeError(response, http.StatusNotFound, "Categoria não encontrada", nil)
		return
	}

	writeJSON(response, http.StatusOK, category)
}

func matchesItemFilters(item models.Item, status, categoryID, search string) bool {
	if status != "" && item.Status != status {
		return false
	}
	if categoryID != "" && item.CategoryID != categoryID {
		return false
	}
	if search != "" {
		needle := strings.ToLower(search)
		haystacks := []string{item.Name, item.Description, item.Location}
		if !funk.Contains(haystacks, func(haystack string) bool {
			return strings.Contains(strings.ToLower(haystack), needle)
		}) {
			return false
		}
	}

	return true
}

func (theRouter *Router) getItems(response http.ResponseWriter, request *http.Request) {
	items, err := theRouter.db.GetAllItems(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetAllItems()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao buscar itens", nil)
		return
	}

	query := request.URL.Query()
	status := query.Get("status")
	categoryID := query.Get("categoryId")
	search := query.Get("q")
	if status != "" || categoryID != "" || search != "" {
		items = funk.Filter(items, func(item models.Item) bool {
			return matchesItemFilters(item, status, categoryID, search)
		}).([]models.Item)
	}

	writeJSON(response, http.StatusOK, items)
}

func (theRouter *Router) getItem(response http.ResponseWriter, request *http.Request) {
	item, found, err := theRouter.db.GetItem(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetItem()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao buscar item", nil)
		return
	}
	if !found {
		writeError(response, http.StatusNotFound, "Item não encontrado", nil)
		return
	}

	writeJSON(response, http.StatusOK, item)
}

func (theRouter *Router) postItem(response http.ResponseWriter, request *http.Request) {
	var req models.CreateItemRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}
	if err := theRouter.validate.Struct(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", validationDetails(err))
		return
	}

	dateFound, ok := parseDate(req.DateFound)
	if !ok {
		writeError(response, http.StatusBadRequest, "Dados inválidos", []models.FieldError{
			{Field: "dateFound", Message: "Data inválida"},
		})
		return
	}

	var claimedDate *time.Time
	if req.ClaimedDate != nil {
		parsed, ok := parseDate(*req.ClaimedDate)
		if !ok {
			writeError(response, http.StatusBadRequest, "Dados inválidos", []models.FieldError{
				{Field: "claimedDate", Message: "Data inválida"},
			})
			return
		}
		claimedDate = &parsed
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		if userID, ok := request.Context().Value(auth.UserIDKey).(string); ok && userID != "" {
			createdBy = userID
		} else {
			createdBy = models.DefaultCreatedBy
		}
	}

	item, err := theRouter.db.CreateItem(request.Context(), models.NewItem{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		DateFound:   dateFound,
		Status:      req.Status,
		ImageURL:    req.ImageURL,
		ClaimedBy:   req.ClaimedBy,
		ClaimedDate: claimedDate,
		CreatedBy:   createdBy,
	})
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.CreateItem()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao criar item", nil)
		return
	}

	writeJSON(response, http.StatusCreated, item)
}

func (theRouter *Router) patchItem(response http.ResponseWriter, request *http.Request) {
	var req models.UpdateItemRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}
	if err := theRouter.validate.Struct(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Dados inválidos", validationDetails(err))
		return
	}

	patch := models.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		Status:      req.Status,
	}

	// Empty strings clear the stored value instead of being kept literally.
	if req.ImageURL != nil {
		patch.ImageURLSet = true
		if *req.ImageURL != "" {
			patch.ImageURL = req.ImageURL
		}
	}
	if req.ClaimedBy != nil {
		patch.ClaimedBySet = true
		if *req.ClaimedBy != "" {
			patch.ClaimedBy = req.ClaimedBy
		}
	}

	if req.DateFound != nil {
		parsed, ok := parseDate(*req.DateFound)
		if !ok {
			writeError(response, http.StatusBadRequest, "Data encontrada inválida", nil)
			return
		}
		patch.DateFound = &parsed
	}
	if req.ClaimedDate != nil {
		parsed, ok := parseDate(*req.ClaimedDate)
		if !ok {
			writeError(response, http.StatusBadRequest, "Data de recuperação inválida", nil)
			return
		}
		patch.ClaimedDate = &parsed
	}

	item, found, err := theRouter.db.UpdateItem(request.Context(), chi.URLParam(request, "id"), patch)
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.UpdateItem()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao atualizar item", nil)
		return
	}
	if !found {
		writeError(response, http.StatusNotFound, "Item não encontrado", nil)
		return
	}

	writeJSON(response, http.StatusOK, item)
}

func (theRouter *Router) deleteItem(response http.ResponseWriter, request *http.Request) {
	found, err := theRouter.db.DeleteItem(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.DeleteItem()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Erro ao deletar item", nil)
		return
	}
	if !found {
		writeError(response, http.StatusNotFound, "Item não encontrado", nil)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

func (theRouter *Router) getStats(response http.ResponseWriter, request *http.Request) {
	clientIP, err := theRouter.ipChecker.GetClientIP(request)
	if err != nil || !theRouter.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	items, err := theRouter.db.GetNumberOfItems(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetNumberOfItems()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	users, err := theRouter.db.GetNumberOfUsers(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.db.GetNumberOfUsers()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.StatsResponse{
		Items: items,
		Users: users,
	})
}
