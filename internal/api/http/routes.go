package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ReqCrypto/sol-meme-scanner/internal/api/http/handlers"
	"github.com/ReqCrypto/sol-meme-scanner/internal/api/http/mw"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
)

func BuildRouter(
	h *handlers.Handler,
	logMW *mw.LoggingMiddleware,
	corsMW *mw.CORSMiddleware,
	rateLimitMW *mw.RateLimitMiddleware,
	jwtMW *mw.JWTMiddleware,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	if logMW != nil {
		r.Use(logMW.Handler)
	}
	if corsMW != nil {
		r.Use(corsMW.Handler())
	}

	// tech endpoints, no auth
	r.Get("/healthz", h.Healthz)
	r.Get("/readiness", h.Readiness)
	r.Mount("/metrics", metrics.Handler())

	// read API behind rate limit and optional jwt
	r.Route("/api", func(apiR chi.Router) {
		if jwtMW != nil {
			apiR.Use(jwtMW.Handler)
		}
		if rateLimitMW != nil {
			apiR.Use(rateLimitMW.Handler)
		}
		apiR.Get("/top", h.Top)
	})

	return r
}
