package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"willplay/internal/models"
	"willplay/internal/storage"
)

// ListNotifier is told about every committed change to a user's list.
type ListNotifier interface {
	Publish(userID string) error
}

type AddToListRequest struct {
	GameID      string
	SteamID     int64
	Name        string
	Description string
	Image       string
	Genre       string
	Status      models.GameStatus
	Priority    models.Priority
}

type GameListService struct {
	store    storage.Store
	notifier ListNotifier
	statuses []models.GameStatus
	log      *slog.Logger
}

func NewGameListService(store storage.Store, notifier ListNotifier, statuses []models.GameStatus, log *slog.Logger) *GameListService {
	if len(statuses) == 0 {
		statuses = models.DefaultStatuses
	}

	return &GameListService{
		store:    store,
		notifier: notifier,
		statuses: statuses,
		log:      log,
	}
}

func (s *GameListService) Statuses() []models.GameStatus {
	return slices.Clone(s.statuses)
}

// AddToList puts a game on the actor's list. Adding a game that is already
// listed updates its status and priority instead, so the call is idempotent.
func (s *GameListService) AddToList(ctx context.Context, actor string, req AddToListRequest) (string, error) {
	const op = "services.gamelist.AddToList"

	if actor == "" {
		return "", fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	req.GameID = strings.TrimSpace(req.GameID)
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateStatus(req.Status); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := validatePriority(req.Priority); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if req.SteamID < 0 {
		return "", fmt.Errorf("%s: %w: steam id must be positive", op, ErrValidation)
	}
	if req.GameID == "" && (req.SteamID == 0 || req.Name == "") {
		return "", fmt.Errorf("%s: %w: game id or steam id with name is required", op, ErrValidation)
	}

	patch := storage.ListEntryPatch{Status: &req.Status, Priority: &req.Priority}

	var entryID string
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		if req.GameID != "" {
			e, err := tx.ListEntryByUserAndGame(ctx, actor, req.GameID)
			if err == nil {
				entryID = e.ID
				return tx.UpdateListEntry(ctx, e.ID, patch)
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}

		game, err := s.resolveGame(ctx, tx, req)
		if err != nil {
			return err
		}

		if game.ID != req.GameID {
			e, err := tx.ListEntryByUserAndGame(ctx, actor, game.ID)
			if err == nil {
				entryID = e.ID
				return tx.UpdateListEntry(ctx, e.ID, patch)
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}

		entry := &models.ListEntry{
			UserID:   actor,
			GameID:   game.ID,
			Status:   req.Status,
			Priority: req.Priority,
		}
		err = tx.CreateListEntry(ctx, entry)
		if errors.Is(err, storage.ErrExists) {
			entryID = entry.ID
			return tx.UpdateListEntry(ctx, entry.ID, patch)
		}
		if err != nil {
			return err
		}

		entryID = entry.ID
		return nil
	})
	if err != nil {
		s.log.Error("add to list failed",
			slog.String("operation", op),
			slog.String("user", actor),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("game added to list",
		slog.String("user", actor),
		slog.String("entry", entryID),
		slog.String("status", string(req.Status)))

	s.notify(actor)
	return entryID, nil
}

// resolveGame finds the catalog row by steam id, then by local id, and
// creates it from the request fields when neither exists.
func (s *GameListService) resolveGame(ctx context.Context, tx storage.Store, req AddToListRequest) (*models.Game, error) {
	if req.SteamID > 0 {
		g, err := tx.GameBySteamID(ctx, req.SteamID)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if req.GameID != "" {
		g, err := tx.GameByID(ctx, req.GameID)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if req.SteamID == 0 || req.Name == "" {
			return nil, fmt.Errorf("%w: game %s", ErrNotFound, req.GameID)
		}
	}

	g := &models.Game{
		SteamID:     req.SteamID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Genre:       req.Genre,
	}
	err := tx.CreateGame(ctx, g)
	if errors.Is(err, storage.ErrExists) {
		// another add committed the same steam id first, g now holds that row
		return g, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug("catalog game created",
		slog.String("game", g.ID),
		slog.Int64("steam_id", g.SteamID))

	return g, nil
}

func (s *GameListService) RemoveFromList(ctx context.Context, actor, entryID string) error {
	const op = "services.gamelist.RemoveFromList"

	if actor == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if strings.TrimSpace(entryID) == "" {
		return fmt.Errorf("%s: %w: entry id is required", op, ErrValidation)
	}

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		e, err := s.ownedEntry(ctx, tx, actor, entryID)
		if err != nil {
			return err
		}
		return tx.DeleteListEntry(ctx, e.ID)
	})
	if err != nil {
		s.logMutationError(op, actor, entryID, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify(actor)
	return nil
}

func (s *GameListService) ChangeStatus(ctx context.Context, actor, entryID string, status models.GameStatus) error {
	const op = "services.gamelist.ChangeStatus"

	if actor == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if err := s.validateStatus(status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.patchEntry(ctx, op, actor, entryID, storage.ListEntryPatch{Status: &status})
}

func (s *GameListService) ChangePriority(ctx context.Context, actor, entryID string, priority models.Priority) error {
	const op = "services.gamelist.ChangePriority"

	if actor == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if err := validatePriority(priority); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.patchEntry(ctx, op, actor, entryID, storage.ListEntryPatch{Priority: &priority})
}

// GetUserGameList groups the actor's entries by status. Every configured
// status is present, entries are ordered by priority and then name.
func (s *GameListService) GetUserGameList(ctx context.Context, actor string) (*models.UserGameList, error) {
	const op = "services.gamelist.GetUserGameList"

	if actor == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	items, err := s.store.ListItems(ctx, actor)
	if err != nil {
		s.log.Error("list fetch failed",
			slog.String("operation", op),
			slog.String("user", actor),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lists := make(map[models.GameStatus][]models.ListItem, len(s.statuses))
	for _, st := range s.statuses {
		lists[st] = []models.ListItem{}
	}
	for _, it := range items {
		lists[it.Status] = append(lists[it.Status], it)
	}

	for _, l := range lists {
		sort.SliceStable(l, func(i, j int) bool {
			if ri, rj := l[i].Priority.Rank(), l[j].Priority.Rank(); ri != rj {
				return ri < rj
			}
			return strings.ToLower(l[i].Game.Name) < strings.ToLower(l[j].Game.Name)
		})
	}

	return &models.UserGameList{UserID: actor, Lists: lists}, nil
}

func (s *GameListService) patchEntry(ctx context.Context, op, actor, entryID string, patch storage.ListEntryPatch) error {
	if strings.TrimSpace(entryID) == "" {
		return fmt.Errorf("%s: %w: entry id is required", op, ErrValidation)
	}

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		e, err := s.ownedEntry(ctx, tx, actor, entryID)
		if err != nil {
			return err
		}
		return tx.UpdateListEntry(ctx, e.ID, patch)
	})
	if err != nil {
		s.logMutationError(op, actor, entryID, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify(actor)
	return nil
}

func (s *GameListService) ownedEntry(ctx context.Context, tx storage.Store, actor, entryID string) (*models.ListEntry, error) {
	e, err := tx.ListEntryByID(ctx, entryID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: list entry %s", ErrNotFound, entryID)
	}
	if err != nil {
		return nil, err
	}

	if e.UserID != actor {
		return nil, fmt.Errorf("%w: list entry %s belongs to another user", ErrForbidden, entryID)
	}

	return e, nil
}

func (s *GameListService) validateStatus(status models.GameStatus) error {
	if !slices.Contains(s.statuses, status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return nil
}

func validatePriority(p models.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
	}
	return nil
}

func (s *GameListService) logMutationError(op, actor, entryID string, err error) {
	level := slog.LevelError
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		level = slog.LevelWarn
	}

	s.log.Log(context.Background(), level, "list mutation rejected",
		slog.String("operation", op),
		slog.String("user", actor),
		slog.String("entry", entryID),
		slog.String("error", err.Error()))
}

func (s *GameListService) notify(userID string) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Publish(userID); err != nil {
		s.log.Warn("list change notification failed",
			slog.String("user", userID),
			slog.String("error", err.Error()))
	}
}
