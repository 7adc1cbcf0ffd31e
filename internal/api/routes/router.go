package routes

import (
	"net/http"

	"github.com/kiezvet/vetdirectory/internal/api/handlers"
	"github.com/kiezvet/vetdirectory/internal/api/middleware"
	"github.com/kiezvet/vetdirectory/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	listingHandler *handlers.ListingHandler
	statsHandler   *handlers.StatsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	listingHandler *handlers.ListingHandler,
	statsHandler *handlers.StatsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		listingHandler: listingHandler,
		statsHandler:   statsHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing endpoints
	r.mux.HandleFunc("GET /api/listings", r.listingHandler.SearchListings)
	r.mux.HandleFunc("GET /api/listings/{id}", r.listingHandler.GetListing)

	// Directory vocabulary and stats endpoints
	r.mux.HandleFunc("GET /api/categories", r.statsHandler.GetCategories)
	r.mux.HandleFunc("GET /api/neighborhoods", r.statsHandler.GetNeighborhoods)
	r.mux.HandleFunc("GET /api/stats", r.statsHandler.GetStats)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
