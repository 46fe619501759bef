package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"willplay/internal/models"

	"github.com/go-chi/chi/v5"
)

type CatalogServicer interface {
	ResolveByExternalID(ctx context.Context, steamID int64) models.LookupResult[*models.GameDetails]
	ResolveByLink(ctx context.Context, link string) models.LookupResult[*models.GameDetails]
	SearchByName(ctx context.Context, name string) models.LookupResult[[]models.GameDetails]
	SuggestRemote(ctx context.Context, term string) models.LookupResult[[]models.Suggestion]
}

type GameController struct {
	service CatalogServicer
	log     *slog.Logger
}

func NewGameController(s CatalogServicer, log *slog.Logger) *GameController {
	return &GameController{
		service: s,
		log:     log,
	}
}

func (c *GameController) Search(w http.ResponseWriter, r *http.Request) {
	res := c.service.SearchByName(r.Context(), r.URL.Query().Get("name"))
	writeLookup(w, c.log, "controllers.games.Search", res)
}

func (c *GameController) GetBySteamID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetBySteamID"

	raw := chi.URLParam(r, "steamID")
	steamID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.log.Debug(ErrBadRequest.Error(),
			slog.String("operation", op),
			slog.String("steam_id", raw),
			slog.String("error", err.Error()))
		writeJSON(w, c.log, http.StatusBadRequest,
			models.LookupResult[*models.GameDetails]{Error: "invalid steam id"})
		return
	}

	writeLookup(w, c.log, op, c.service.ResolveByExternalID(r.Context(), steamID))
}

func (c *GameController) Resolve(w http.ResponseWriter, r *http.Request) {
	res := c.service.ResolveByLink(r.Context(), r.URL.Query().Get("link"))
	writeLookup(w, c.log, "controllers.games.Resolve", res)
}

func (c *GameController) Suggest(w http.ResponseWriter, r *http.Request) {
	res := c.service.SuggestRemote(r.Context(), r.URL.Query().Get("term"))
	writeLookup(w, c.log, "controllers.games.Suggest", res)
}

func writeLookup[T any](w http.ResponseWriter, log *slog.Logger, op string, res models.LookupResult[T]) {
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.Err)
		if res.Err != nil && status >= http.StatusInternalServerError {
			log.Error("catalog lookup failed",
				slog.String("operation", op),
				slog.String("error", res.Err.Error()))
		}
	}

	writeJSON(w, log, status, res)
}
