package routes

import (
	"log/slog"
	"time"

	_ "github.com/Dosada05/nations-cup/docs"
	"github.com/Dosada05/nations-cup/handlers"
	"github.com/Dosada05/nations-cup/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const requestTimeout = 30 * time.Second

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", handlers.HealthCheck)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// websocket живет дольше таймаута запроса
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Get("/bracket", tournamentHandler.GetBracketHandler)
				r.Post("/advance", tournamentHandler.AdvanceHandler)
				r.Get("/standings", teamHandler.StandingsHandler)

				r.Get("/teams", teamHandler.ListHandler)
				r.Post("/teams", teamHandler.RegisterHandler)
				r.Get("/teams/{country}", teamHandler.GetHandler)
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", matchHandler.GetHandler)
			r.Post("/resolve", matchHandler.ResolveHandler)
		})
	})
}
