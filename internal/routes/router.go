package routes

import (
	"log/slog"
	"net/http"
	"time"

	"willplay/internal/config"
	"willplay/internal/controllers"
	"willplay/internal/events"
	authmw "willplay/internal/middleware"
	"willplay/internal/models"
	"willplay/internal/services"
	"willplay/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRouter(
	log *slog.Logger,
	store storage.Store,
	steam services.SteamClient,
	broker events.Broker,
	auth *authmw.AuthMiddleware,
	cfg *config.Config,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Cors,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	statuses := make([]models.GameStatus, 0, len(cfg.List.Statuses))
	for _, s := range cfg.List.Statuses {
		statuses = append(statuses, models.GameStatus(s))
	}

	catalogService := services.NewCatalogService(store, steam, log)
	listService := services.NewGameListService(store, broker, statuses, log)

	gameController := controllers.NewGameController(catalogService, log)
	listController := controllers.NewGameListController(listService, log)
	liveController := controllers.NewLiveController(listService, broker, cfg.Cors, log)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Identify)

		r.Route("/games", func(r chi.Router) {
			r.Get("/search", gameController.Search)
			r.Get("/resolve", gameController.Resolve)
			r.Get("/suggest", gameController.Suggest)
			r.Get("/steam/{steamID}", gameController.GetBySteamID)
		})

		r.Route("/list", func(r chi.Router) {
			r.Get("/", listController.Get)
			r.Post("/", listController.Add)
			r.Get("/ws", liveController.Stream)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", listController.Remove)
				r.Patch("/status", listController.ChangeStatus)
				r.Patch("/priority", listController.ChangePriority)
			})
		})
	})

	return r
}
