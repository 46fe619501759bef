package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"willplay/internal/middleware"
	"willplay/internal/models"
	"willplay/internal/services"

	"github.com/go-chi/chi/v5"
)

type GameListServicer interface {
	AddToList(ctx context.Context, actor string, req services.AddToListRequest) (string, error)
	RemoveFromList(ctx context.Context, actor, entryID string) error
	ChangeStatus(ctx context.Context, actor, entryID string, status models.GameStatus) error
	ChangePriority(ctx context.Context, actor, entryID string, priority models.Priority) error
	GetUserGameList(ctx context.Context, actor string) (*models.UserGameList, error)
}

type GameRef struct {
	ID          string `json:"id"`
	SteamID     int64  `json:"steam_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Genre       string `json:"genre"`
}

type AddToListRequest struct {
	Game     GameRef           `json:"game"`
	Status   models.GameStatus `json:"status"`
	Priority models.Priority   `json:"priority"`
}

type AddToListResponse struct {
	ID string `json:"id"`
}

type ChangeStatusRequest struct {
	Status models.GameStatus `json:"status"`
}

type ChangePriorityRequest struct {
	Priority models.Priority `json:"priority"`
}

type GameListController struct {
	service GameListServicer
	log     *slog.Logger
}

func NewGameListController(s GameListServicer, log *slog.Logger) *GameListController {
	return &GameListController{
		service: s,
		log:     log,
	}
}

func (c *GameListController) Get(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.GetUserGameList(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}

	writeJSON(w, c.log, http.StatusOK, list)
}

func (c *GameListController) Add(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.gamelist.Add"

	var request AddToListRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		c.log.Debug(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	id, err := c.service.AddToList(r.Context(), middleware.ActorFromContext(r.Context()), services.AddToListRequest{
		GameID:      request.Game.ID,
		SteamID:     request.Game.SteamID,
		Name:        request.Game.Name,
		Description: request.Game.Description,
		Image:       request.Game.Image,
		Genre:       request.Game.Genre,
		Status:      request.Status,
		Priority:    request.Priority,
	})
	if err != nil {
		httpError(w, err)
		return
	}

	writeJSON(w, c.log, http.StatusCreated, AddToListResponse{ID: id})
}

func (c *GameListController) Remove(w http.ResponseWriter, r *http.Request) {
	err := c.service.RemoveFromList(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *GameListController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.gamelist.ChangeStatus"

	var request ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		c.log.Debug(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	err := c.service.ChangeStatus(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), request.Status)
	if err != nil {
		httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *GameListController) ChangePriority(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.gamelist.ChangePriority"

	var request ChangePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		c.log.Debug(ErrBadRequest.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrBadRequest.Error(), http.StatusBadRequest)
		return
	}

	err := c.service.ChangePriority(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), request.Priority)
	if err != nil {
		httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
