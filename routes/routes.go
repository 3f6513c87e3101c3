package routes

import (
	"net/http"

	_ "github.com/Dosada05/tournament-draws/docs"
	"github.com/Dosada05/tournament-draws/handlers"
	"github.com/Dosada05/tournament-draws/middleware"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// RateLimitRPS limits write requests per client IP; 0 disables it.
	RateLimitRPS   float64
}

func SetupRoutes(
	router chi.Router,
	drawHandler *handlers.DrawHandler,
	authHandler *handlers.AuthHandler,
	wsHandler *handlers.WebSocketHandler,
	opts Options,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	writes := func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitRPS))
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(services.RoleOrganizer))
	}

	router.With(middleware.RateLimit(opts.RateLimitRPS)).Post("/auth/token", authHandler.TokenHandler)

	router.Route("/events/{eventID}/draws", func(r chi.Router) {
		r.Get("/", drawHandler.ListEventHandler)
		r.Group(func(r chi.Router) {
			writes(r)
			r.Post("/", drawHandler.GenerateHandler)
		})
	})

	router.Route("/draws/{drawID}", func(r chi.Router) {
		r.Get("/", drawHandler.GetHandler)
		r.Get("/structures/{structureID}/matchups", drawHandler.MatchUpsHandler)
		r.Get("/structures/{structureID}/hierarchy", drawHandler.HierarchyHandler)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			writes(r)
			r.Put("/matchups/{matchUpID}/outcome", drawHandler.SetOutcomeHandler)
			r.Delete("/matchups/{matchUpID}/outcome", drawHandler.RemoveOutcomeHandler)
			r.Post("/playoffs", drawHandler.AddPlayoffsHandler)
			r.Delete("/structures/{structureID}", drawHandler.RemoveStructureHandler)
			r.Post("/export", drawHandler.ExportHandler)
		})
	})

	router.Get("/ws/draws/{drawID}", wsHandler.ServeWs)
}
