package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"storefront-merchandising-service/internal/countdown"
	"storefront-merchandising-service/internal/domain"
	"storefront-merchandising-service/internal/service"
	"storefront-merchandising-service/internal/store"
)

// ViewerHeader carries the anonymous viewer id between the storefront and this service.
const ViewerHeader = "X-Viewer-ID"

// Merchandiser is the service surface exposed over HTTP and gRPC.
type Merchandiser interface {
	Homepage(ctx context.Context, viewerID string) (*service.Homepage, error)
	Section(ctx context.Context, name, viewerID string) (*service.SectionResult, error)
	RecentlyViewed(ctx context.Context, viewerID string) ([]domain.Product, error)
	RecordView(ctx context.Context, viewerID string, productID int64) ([]domain.Product, error)
	ActiveCountdown(ctx context.Context) (countdown.Snapshot, error)
	WatchCountdown(ctx context.Context, emit func(countdown.Snapshot)) error
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	svc      Merchandiser
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(svc Merchandiser) *HTTPHandler {
	return &HTTPHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// respondWithServiceError maps service and store errors onto HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidViewer):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownSection):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrProductNotFound):
		respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
	case errors.Is(err, store.ErrNoActiveCampaign):
		respondWithError(w, http.StatusNotFound, store.ErrNoActiveCampaign.Error())
	default:
		log.Printf("ERROR: %s failed: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// viewerFromRequest reads the viewer id from the header, falling back to the viewer_id query parameter.
func viewerFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(ViewerHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("viewer_id"))
}

// --- Homepage Handlers ---

// GetHomepage renders every section. Anonymous callers are issued a fresh viewer id in the response header.
func (h *HTTPHandler) GetHomepage(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerFromRequest(r)
	page, err := h.svc.Homepage(r.Context(), viewerID)
	if err != nil {
		respondWithServiceError(w, "build homepage", err)
		return
	}
	if viewerID == "" {
		viewerID = uuid.NewString()
	}
	w.Header().Set(ViewerHeader, viewerID)
	respondWithJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Section(r.Context(), chi.URLParam(r, "section"), viewerFromRequest(r))
	if err != nil {
		respondWithServiceError(w, "curate section", err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) GetActiveCountdown(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ActiveCountdown(r.Context())
	if err != nil {
		respondWithServiceError(w, "compute countdown", err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// --- Recently Viewed Handlers ---

// RecentlyViewedResponse is the body of both recently-viewed endpoints.
type RecentlyViewedResponse struct {
	ViewerID string           `json:"viewer_id"`
	Products []domain.Product `json:"products"`
}

// pathViewer returns the canonical form of the {viewerId} path parameter.
func pathViewer(r *http.Request) (string, error) {
	return service.NormalizeViewerID(chi.URLParam(r, "viewerId"))
}

func (h *HTTPHandler) GetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	viewerID, err := pathViewer(r)
	if err != nil {
		respondWithServiceError(w, "load recently viewed products", err)
		return
	}
	products, err := h.svc.RecentlyViewed(r.Context(), viewerID)
	if err != nil {
		respondWithServiceError(w, "load recently viewed products", err)
		return
	}
	respondWithJSON(w, http.StatusOK, RecentlyViewedResponse{ViewerID: viewerID, Products: products})
}

// RecordViewInput defines the expected input for recording a product view.
type RecordViewInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func (h *HTTPHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	viewerID, err := pathViewer(r)
	if err != nil {
		respondWithServiceError(w, "record product view", err)
		return
	}

	var input RecordViewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	products, err := h.svc.RecordView(r.Context(), viewerID, input.ProductID)
	if err != nil {
		respondWithServiceError(w, "record product view", err)
		return
	}
	respondWithJSON(w, http.StatusOK, RecentlyViewedResponse{ViewerID: viewerID, Products: products})
}

// CORS lets the storefront front-end call the API from the given origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", ViewerHeader},
		ExposedHeaders:   []string{ViewerHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/homepage", func(r chi.Router) {
		r.Get("/", h.GetHomepage)                   // GET /api/v1/homepage
		r.Get("/sections/{section}", h.GetSection) // GET /api/v1/homepage/sections/{section}
	})

	r.Get("/api/v1/campaigns/active/countdown", h.GetActiveCountdown)

	r.Route("/api/v1/viewers/{viewerId}/recently-viewed", func(r chi.Router) {
		r.Get("/", h.GetRecentlyViewed) // GET /api/v1/viewers/{viewerId}/recently-viewed
		r.Post("/", h.RecordView)       // POST /api/v1/viewers/{viewerId}/recently-viewed
	})
}
