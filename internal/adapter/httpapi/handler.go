package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	catalogdomain "github.com/bazarly/listing-service/internal/catalog/domain"
	catalogusecase "github.com/bazarly/listing-service/internal/catalog/usecase"
	"github.com/bazarly/listing-service/internal/listing/domain"
	"github.com/bazarly/listing-service/internal/listing/usecase"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/bazarly/listing-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const timeLayout = time.RFC3339

// userIDHeader carries the authenticated user id, set by the gateway after
// token verification. This service trusts it as-is.
const userIDHeader = "X-User-ID"

// Handler exposes the catalog and listing usecases over HTTP.
type Handler struct {
	catalog   *catalogusecase.CatalogUsecase
	listings  *usecase.ListingUsecase
	search    *usecase.SearchUsecase
	favorites *usecase.FavoriteUsecase
	metrics   *metrics.Manager
	logger    *logger.Logger
}

func NewHandler(
	catalog *catalogusecase.CatalogUsecase,
	listings *usecase.ListingUsecase,
	search *usecase.SearchUsecase,
	favorites *usecase.FavoriteUsecase,
	m *metrics.Manager,
	log *logger.Logger,
) *Handler {
	return &Handler{
		catalog:   catalog,
		listings:  listings,
		search:    search,
		favorites: favorites,
		metrics:   m,
		logger:    log.Named("HTTPHandler"),
	}
}

func (h *Handler) GetCatalogTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.GetCatalogTree(r.Context())
	if err != nil {
		h.respondError(w, "GetCatalogTree", err)
		return
	}
	h.respondJSON(w, http.StatusOK, tree)
}

func (h *Handler) GetAllFieldSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.catalog.GetAllFieldSchemas(r.Context())
	if err != nil {
		h.respondError(w, "GetAllFieldSchemas", err)
		return
	}
	h.respondJSON(w, http.StatusOK, schemas)
}

func (h *Handler) GetFieldSchema(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	schema, err := h.catalog.GetFieldSchema(r.Context(), categoryID)
	if err != nil {
		h.respondError(w, "GetFieldSchema", err)
		return
	}
	h.respondJSON(w, http.StatusOK, schema)
}

// ValidateFields is the advisory pre-check. A clean submission answers 200
// with the empty result; findings answer 400 with the result body verbatim.
func (h *Handler) ValidateFields(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "ValidateFields", "invalid request body")
		return
	}

	result, err := h.listings.CheckFields(r.Context(), categoryID, req.Fields)
	if err != nil {
		h.respondError(w, "ValidateFields", err)
		return
	}
	if result.OK() {
		h.respondJSON(w, http.StatusOK, result)
		return
	}
	h.respondJSON(w, http.StatusBadRequest, result)
}

func (h *Handler) SearchListings(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "SearchListings", "invalid request body")
		return
	}

	viewerID := r.Header.Get(userIDHeader)
	variant := req.resolveVariant(viewerID)
	if variant == domain.VariantCard && viewerID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	result, err := h.search.Search(r.Context(), variant, viewerID, req.toDomain())
	if err != nil {
		h.respondError(w, "SearchListings", err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) PublishListing(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "PublishListing", "invalid request body")
		return
	}

	listing, err := h.listings.Publish(r.Context(), userID, req.toInput())
	if err != nil {
		h.respondError(w, "PublishListing", err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toListingResponse(listing, nil))
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, attributes, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "GetListing", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toListingResponse(listing, attributes))
}

func (h *Handler) EditListing(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "EditListing", "invalid request body")
		return
	}

	listing, err := h.listings.Edit(r.Context(), chi.URLParam(r, "id"), userID, req.toInput())
	if err != nil {
		h.respondError(w, "EditListing", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toListingResponse(listing, nil))
}

func (h *Handler) ChangeListingStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "ChangeListingStatus", "invalid request body")
		return
	}

	listing, err := h.listings.ChangeStatus(r.Context(), chi.URLParam(r, "id"), userID, domain.ListingStatus(req.Status))
	if err != nil {
		h.respondError(w, "ChangeListingStatus", err)
		return
	}
	h.respondJSON(w, http.StatusOK, toListingResponse(listing, nil))
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	if err := h.favorites.Add(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "AddFavorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "RemoveFavorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, handler, msg string) {
	h.countError(handler, "bad_request")
	h.respondJSON(w, http.StatusBadRequest, errorBody(msg))
}

// respondError maps domain errors to HTTP statuses. A ValidationError is
// serialized as-is, so the client sees the same body shape the pre-check
// endpoint produces.
func (h *Handler) respondError(w http.ResponseWriter, handler string, err error) {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		h.countError(handler, "validation")
		h.respondJSON(w, http.StatusBadRequest, verr)
		return
	}

	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNoSchema),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound):
		h.countError(handler, "not_found")
		h.respondJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, domain.ErrForbidden):
		h.countError(handler, "forbidden")
		h.respondJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, domain.ErrDuplicateFavorite),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidListingData):
		h.countError(handler, "bad_request")
		h.respondJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.Error("Unhandled error", zap.String("handler", handler), zap.Error(err))
		h.countError(handler, "internal")
		h.respondJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}

func (h *Handler) countError(handler, errorType string) {
	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(handler, errorType).Inc()
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
