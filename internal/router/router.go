package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	handler "crm-backend/internal/handler/http"
	wshandler "crm-backend/internal/handler/ws"
	"crm-backend/internal/middleware"
	"crm-backend/pkg/response"
)

type Deps struct {
	Auth          *handler.AuthHandler
	Contacts      *handler.ContactHandler
	Estimates     *handler.EstimateHandler
	Jobs          *handler.JobHandler
	Calendar      *handler.CalendarHandler
	Notifications *handler.NotificationHandler
	AI            *handler.AIHandler
	Socket        *wshandler.SocketHandler

	Tokens         *middleware.TokenManager
	Redis          *redis.Client
	AllowedOrigins []string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.Redis != nil {
		r.Use(middleware.RateLimiter(d.Redis, 300, time.Minute, 5*time.Minute, "rl:api"))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSONMessage(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(d.Tokens))
				r.Get("/me", d.Auth.Me)
				r.Put("/me", d.Auth.UpdateMe)
				r.Delete("/me", d.Auth.DeleteMe)
				r.Put("/password", d.Auth.ChangePassword)
				r.Put("/company", d.Auth.UpdateCompany)
			})
		})

		// The automation workflow authenticates out of band; its endpoint
		// must stay reachable without a user token.
		r.Post("/ai/webhook/message", d.AI.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Tokens))

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Auth.ListUsers)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", d.Contacts.List)
				r.Post("/", d.Contacts.Create)
				r.Get("/{id}", d.Contacts.Get)
				r.Put("/{id}", d.Contacts.Update)
				r.Delete("/{id}", d.Contacts.Delete)
				r.Post("/{id}/tags", d.Contacts.AddTags)
				r.Delete("/{id}/tags", d.Contacts.RemoveTags)
				r.Put("/{id}/pipeline", d.Contacts.UpdatePipelineStage)
			})

			r.Route("/estimates", func(r chi.Router) {
				r.Get("/", d.Estimates.List)
				r.Post("/", d.Estimates.Create)
				r.Get("/metrics", d.Estimates.Metrics)
				r.Get("/{id}", d.Estimates.Get)
				r.Put("/{id}", d.Estimates.Update)
				r.Delete("/{id}", d.Estimates.Delete)
				r.Post("/{id}/convert", d.Estimates.ConvertToJob)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", d.Jobs.List)
				r.Post("/", d.Jobs.Create)
				r.Get("/metrics", d.Jobs.Metrics)
				r.Get("/{id}", d.Jobs.Get)
				r.Put("/{id}", d.Jobs.Update)
				r.Delete("/{id}", d.Jobs.Delete)
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/", d.Calendar.List)
				r.Post("/", d.Calendar.Create)
				r.Get("/related", d.Calendar.Related)
				r.Put("/{id}", d.Calendar.Update)
				r.Delete("/{id}", d.Calendar.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", d.Notifications.List)
				r.Put("/read-all", d.Notifications.MarkAllAsRead)
				r.Get("/settings", d.Notifications.GetSettings)
				r.Put("/settings", d.Notifications.UpdateSettings)
				r.Get("/ws", d.Socket.Serve)
				r.Put("/{id}/read", d.Notifications.MarkAsRead)
				r.Delete("/{id}", d.Notifications.Delete)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/reply", d.AI.Reply)
				r.Get("/conversations", d.AI.ListThreads)
				r.Get("/conversation/contact/{contactId}", d.AI.ContactHistory)
				r.Get("/conversation/estimate/{estimateId}", d.AI.EstimateHistory)
				r.Delete("/history", d.AI.ClearHistory)
			})
		})
	})

	return r
}
