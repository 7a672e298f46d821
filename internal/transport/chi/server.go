// Package chi exposes the listing search engine over HTTP: search,
// listing lookup, availability toggles, health and metrics.
package chi

import (
	"context"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/request"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/result"
	healthuc "github.com/llkotidis/AutoAgora-sub000/internal/usecase/health"
)

// Engine runs search queries.
type Engine interface {
	Run(ctx context.Context, req *request.Request) (result.QueryResult, error)
}

// Listings exposes single-listing reads and availability toggles.
type Listings interface {
	Get(ctx context.Context, id listing.ID) (*listing.Record, error)
	MarkSold(ctx context.Context, id listing.ID) error
	MarkAvailable(ctx context.Context, id listing.ID) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// Server is the HTTP API server.
type Server struct {
	engine        Engine
	listings      Listings
	health        *healthuc.Service
	logger        *zap.Logger
	limits        request.Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(engine Engine, listings Listings, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		engine:   engine,
		listings: listings,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrListingNotFound, http.StatusNotFound, "listing_not_found"),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
	}
	return s
}

// WithPageLimits overrides the default and maximum search page sizes.
// Zero values keep the request package defaults.
func (s *Server) WithPageLimits(defaultSize, maxSize int) *Server {
	s.limits = request.Limits{DefaultPageSize: defaultSize, MaxPageSize: maxSize}
	return s
}

// Routes mounts the API onto a router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/search", s.Search)
		r.Route("/listings/{id}", func(r chirouter.Router) {
			r.Get("/", s.GetListing)
			r.Post("/sold", s.MarkSold)
			r.Post("/available", s.MarkAvailable)
		})
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var payload searchPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	req, err := payload.toRequest(s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.engine.Run(r.Context(), req)
	if err != nil {
		// A facet failure degrades the response instead of failing it:
		// the primary result is still complete.
		if !errors.Is(err, domain.ErrFacetCounts) {
			s.handleDomainError(w, r, err)
			return
		}
		s.logger.Warn("facet counting failed, returning result without facets", zap.Error(err))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, searchResponse{
		Total:       res.Total(),
		Page:        req.Page(),
		PageSize:    req.PageSize(),
		IDs:         res.IDs(),
		FacetCounts: facetsToDTO(res.Facets()),
	})
}

// GetListing handles GET /v1/listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id := listing.ID(chirouter.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "validation_failed", "listing id is required")
		return
	}

	rec, err := s.listings.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, listingToDTO(rec))
}

// MarkSold handles POST /v1/listings/{id}/sold.
func (s *Server) MarkSold(w http.ResponseWriter, r *http.Request) {
	s.toggleAvailability(w, r, s.listings.MarkSold)
}

// MarkAvailable handles POST /v1/listings/{id}/available.
func (s *Server) MarkAvailable(w http.ResponseWriter, r *http.Request) {
	s.toggleAvailability(w, r, s.listings.MarkAvailable)
}

func (s *Server) toggleAvailability(
	w http.ResponseWriter, r *http.Request,
	toggle func(context.Context, listing.ID) error,
) {
	id := listing.ID(chirouter.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "validation_failed", "listing id is required")
		return
	}

	if err := toggle(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	render.Status(r, httpStatus)
	render.JSON(w, r, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		// Validation context is written for the client; pass it through.
		return err.Error()
	}
	sentinels := []error{
		domain.ErrListingNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, r, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, r, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
}
