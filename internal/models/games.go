package models

import "time"

// Game is a shared catalog row, one per Steam app id.
type Game struct {
	ID          string    `json:"id" gorm:"primaryKey;type:char(36)"`
	SteamID     int64     `json:"steam_id" gorm:"uniqueIndex:idx_games_steam_id;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;index:idx_games_name,class:FULLTEXT"`
	Description string    `json:"description" gorm:"type:text"`
	Image       string    `json:"image" gorm:"type:varchar(500)"`
	Genre       string    `json:"genre,omitempty" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameDetails is what catalog lookups hand back to callers. ID is empty
// when the game came from Steam and has no local row yet.
type GameDetails struct {
	ID          string `json:"id,omitempty"`
	SteamID     int64  `json:"steam_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Genre       string `json:"genre,omitempty"`
}

func (g *Game) Details() GameDetails {
	return GameDetails{
		ID:          g.ID,
		SteamID:     g.SteamID,
		Name:        g.Name,
		Description: g.Description,
		Image:       g.Image,
		Genre:       g.Genre,
	}
}

// Suggestion is a Steam store search hit, resolved to details on demand.
type Suggestion struct {
	SteamID int64  `json:"steam_id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// LookupResult is the {success, data, error} envelope used by every
// catalog lookup. Err keeps the typed cause for callers that map it.
type LookupResult[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func LookupOK[T any](data T) LookupResult[T] {
	return LookupResult[T]{Success: true, Data: data}
}

func LookupFailed[T any](err error, message string) LookupResult[T] {
	return LookupResult[T]{Error: message, Err: err}
}
