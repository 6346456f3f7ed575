package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ocrasesorias/facturas/internal/http/auth"
	"github.com/ocrasesorias/facturas/internal/http/billingapi"
	"github.com/ocrasesorias/facturas/internal/http/invoices"
)

func New(
	invoicesV1 *invoices.Handler,
	billingV1 *billingapi.Handler,
	jwtSecret string,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		// The manifest endpoint takes multipart uploads, so no content-type
		// restriction on this subtree.
		r.Route("/uploads", invoicesV1.UploadRoutes)

		r.Route("/billing", billingV1.Routes)
	})

	return router
}
