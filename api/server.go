/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (logger.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the front end

ROUTE GROUPS:
  /api/status, /api/policy, /api/employees   Read-only views
  /api/eligibility                           Form evaluation
  /api/chat/*                                Chat sessions
  /api/admin/*                               Reload
  /api/scenarios/*                           Demo datasets
  /                                          Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/loanbot/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/loan-assistant/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/policy", h.GetPolicy)
		r.Get("/employees", h.ListEmployees)
		r.Post("/eligibility", h.CheckEligibility)

		// Chat routes
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", h.Chat)
			r.Get("/{id}", h.GetChatSession)
			r.Delete("/{id}", h.DeleteChatSession)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reload", h.Reload)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Loan Policy Assistant</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Loan Policy Assistant API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/status">/api/status</a> - Load status</li>
<li><a href="/api/policy">/api/policy</a> - Extracted policy</li>
<li><a href="/api/employees">/api/employees</a> - Employee sheet</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo datasets</li>
</ul>
</body>
</html>`))
	})

	return r
}
