package models

import "time"

type GameStatus string

const (
	StatusWishlist  GameStatus = "wishlist"
	StatusBacklog   GameStatus = "backlog"
	StatusPlaying   GameStatus = "playing"
	StatusCompleted GameStatus = "completed"
)

var DefaultStatuses = []GameStatus{StatusWishlist, StatusBacklog, StatusPlaying, StatusCompleted}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ListEntry ties one user to one game. (UserID, GameID) is unique.
type ListEntry struct {
	ID        string     `json:"id" gorm:"primaryKey;type:char(36)"`
	UserID    string     `json:"user_id" gorm:"type:varchar(191);not null;index:idx_list_entries_user;uniqueIndex:idx_list_entries_user_game"`
	GameID    string     `json:"game_id" gorm:"type:char(36);not null;uniqueIndex:idx_list_entries_user_game"`
	Status    GameStatus `json:"status" gorm:"type:varchar(20);not null"`
	Priority  Priority   `json:"priority" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ListItem is a list entry joined with its game.
type ListItem struct {
	ID       string      `json:"id"`
	Status   GameStatus  `json:"status"`
	Priority Priority    `json:"priority"`
	Game     GameDetails `json:"game"`
}

type UserGameList struct {
	UserID string                    `json:"user_id"`
	Lists  map[GameStatus][]ListItem `json:"lists"`
}
