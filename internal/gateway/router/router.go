// Package router wires up all API gateway routes and applies the middleware
// chain (RequestID → CORS → Auth → RateLimit).
package router

import (
	"net/http"

	"github.com/scisearch/engine/internal/auth/apikey"
	"github.com/scisearch/engine/internal/auth/ratelimit"
	gwhandler "github.com/scisearch/engine/internal/gateway/handler"
	gwmw "github.com/scisearch/engine/internal/gateway/middleware"
	pkgmw "github.com/scisearch/engine/pkg/middleware"
)

// New builds the full gateway HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /api/v1/upload              → ingestion service (proxy)
//	GET    /api/v1/documents/{id}      → get document       (direct DB)
//	GET    /api/v1/search              → searcher service   (proxy)
//	GET    /api/v1/autocomplete        → searcher service   (proxy)
//	GET    /api/v1/similar             → searcher service   (proxy)
//	GET    /api/v1/cache/stats         → searcher service   (proxy)
//	POST   /api/v1/cache/invalidate    → searcher service   (proxy)
//	POST   /api/v1/admin/keys          → create API key     (direct DB)
//	GET    /api/v1/admin/keys          → list API keys      (direct DB)
//	POST   /api/v1/admin/keys/revoke   → revoke API key      (direct DB)
//	GET    /health                     → gateway health
//
// Middleware chain (outermost first):
//
//	RequestID → CORS → Auth → RateLimit → handler
func New(h *gwhandler.Handler, validator *apikey.Validator, limiter *ratelimit.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/v1/upload", h.ProxyUpload)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.GetDocument)

	mux.HandleFunc("GET /api/v1/search", h.ProxySearch)
	mux.HandleFunc("GET /api/v1/autocomplete", h.ProxyAutocomplete)
	mux.HandleFunc("GET /api/v1/similar", h.ProxySimilar)

	mux.HandleFunc("GET /api/v1/cache/stats", h.ProxyCacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.ProxyCacheInvalidate)

	mux.HandleFunc("POST /api/v1/admin/keys", h.CreateAPIKey)
	mux.HandleFunc("GET /api/v1/admin/keys", h.ListAPIKeys)
	mux.HandleFunc("POST /api/v1/admin/keys/revoke", h.RevokeAPIKey)

	var chain http.Handler = mux
	chain = gwmw.RateLimit(limiter)(chain)
	chain = gwmw.Auth(validator)(chain)
	chain = gwmw.CORS(gwmw.DefaultCORSConfig())(chain)
	chain = pkgmw.RequestID(chain)

	return chain
}
