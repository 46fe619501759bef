package storage

import (
	"context"
	"errors"

	"willplay/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store is the data collaborator behind the catalog and the lists.
// Methods called on the Store handed to Atomic run inside one
// serializable transaction.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Store) error) error

	GameByID(ctx context.Context, id string) (*models.Game, error)
	GameBySteamID(ctx context.Context, steamID int64) (*models.Game, error)
	// SearchGames returns at most limit games ranked by relevance to query.
	SearchGames(ctx context.Context, query string, limit int) ([]models.Game, error)
	// CreateGame inserts g. When the steam id is already taken it loads the
	// committed row into g and returns ErrExists.
	CreateGame(ctx context.Context, g *models.Game) error

	ListEntryByID(ctx context.Context, id string) (*models.ListEntry, error)
	ListEntryByUserAndGame(ctx context.Context, userID, gameID string) (*models.ListEntry, error)
	// CreateListEntry inserts e. When the (user, game) pair is already taken
	// it loads the committed row into e and returns ErrExists.
	CreateListEntry(ctx context.Context, e *models.ListEntry) error
	UpdateListEntry(ctx context.Context, id string, patch ListEntryPatch) error
	DeleteListEntry(ctx context.Context, id string) error
	// ListItems returns every entry of the user joined with its game.
	ListItems(ctx context.Context, userID string) ([]models.ListItem, error)
}

// ListEntryPatch holds the mutable fields of a list entry; nil means keep.
type ListEntryPatch struct {
	Status   *models.GameStatus
	Priority *models.Priority
}

func (p ListEntryPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil
}
