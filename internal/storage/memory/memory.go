// Package memory is an in-process storage.Store. Transactions are
// serialized by a single mutex and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"willplay/internal/models"
	"willplay/internal/storage"

	"github.com/google/uuid"
)

type tables struct {
	games   map[string]models.Game
	entries map[string]models.ListEntry
	seq     map[string]int64 // insertion order for ties
	next    int64
}

func (t *tables) clone() *tables {
	c := &tables{
		games:   make(map[string]models.Game, len(t.games)),
		entries: make(map[string]models.ListEntry, len(t.entries)),
		seq:     make(map[string]int64, len(t.seq)),
		next:    t.next,
	}
	for k, v := range t.games {
		c.games[k] = v
	}
	for k, v := range t.entries {
		c.entries[k] = v
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	data **tables
	inTx bool
	now  func() time.Time
}

func New() *Store {
	data := &tables{
		games:   map[string]models.Game{},
		entries: map[string]models.ListEntry{},
		seq:     map[string]int64{},
	}
	return &Store{mu: &sync.Mutex{}, data: &data, now: time.Now}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := (*s.data).clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}

	return nil
}

func (s *Store) GameByID(_ context.Context, id string) (*models.Game, error) {
	defer s.lock()()

	g, ok := (*s.data).games[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.GameByID: %w", storage.ErrNotFound)
	}
	return &g, nil
}

func (s *Store) GameBySteamID(_ context.Context, steamID int64) (*models.Game, error) {
	defer s.lock()()

	for _, g := range (*s.data).games {
		if g.SteamID == steamID {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("storage.memory.GameBySteamID: %w", storage.ErrNotFound)
}

// SearchGames ranks a whole-name prefix above a word prefix above a plain
// substring match, case-insensitively.
func (s *Store) SearchGames(_ context.Context, query string, limit int) ([]models.Game, error) {
	defer s.lock()()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []models.Game{}, nil
	}

	type hit struct {
		game models.Game
		rank int
		seq  int64
	}

	data := *s.data
	var hits []hit
	for id, g := range data.games {
		if rank, ok := matchRank(strings.ToLower(g.Name), q); ok {
			hits = append(hits, hit{game: g, rank: rank, seq: data.seq[id]})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].seq < hits[j].seq
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	games := make([]models.Game, 0, len(hits))
	for _, h := range hits {
		games = append(games, h.game)
	}
	return games, nil
}

func matchRank(name, q string) (int, bool) {
	switch {
	case strings.HasPrefix(name, q):
		return 0, true
	case strings.Contains(" "+name, " "+q):
		return 1, true
	case strings.Contains(name, q):
		return 2, true
	}
	return 0, false
}

func (s *Store) CreateGame(_ context.Context, g *models.Game) error {
	defer s.lock()()

	data := *s.data
	for _, existing := range data.games {
		if existing.SteamID == g.SteamID {
			*g = existing
			return fmt.Errorf("storage.memory.CreateGame: %w", storage.ErrExists)
		}
	}

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}

	data.games[g.ID] = *g
	data.next++
	data.seq[g.ID] = data.next
	return nil
}

func (s *Store) ListEntryByID(_ context.Context, id string) (*models.ListEntry, error) {
	defer s.lock()()

	e, ok := (*s.data).entries[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.ListEntryByID: %w", storage.ErrNotFound)
	}
	return &e, nil
}

func (s *Store) ListEntryByUserAndGame(_ context.Context, userID, gameID string) (*models.ListEntry, error) {
	defer s.lock()()

	for _, e := range (*s.data).entries {
		if e.UserID == userID && e.GameID == gameID {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("storage.memory.ListEntryByUserAndGame: %w", storage.ErrNotFound)
}

func (s *Store) CreateListEntry(_ context.Context, e *models.ListEntry) error {
	defer s.lock()()

	data := *s.data
	for _, existing := range data.entries {
		if existing.UserID == e.UserID && existing.GameID == e.GameID {
			*e = existing
			return fmt.Errorf("storage.memory.CreateListEntry: %w", storage.ErrExists)
		}
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now

	data.entries[e.ID] = *e
	data.next++
	data.seq[e.ID] = data.next
	return nil
}

func (s *Store) UpdateListEntry(_ context.Context, id string, patch storage.ListEntryPatch) error {
	defer s.lock()()

	data := *s.data
	e, ok := data.entries[id]
	if !ok {
		return fmt.Errorf("storage.memory.UpdateListEntry: %w", storage.ErrNotFound)
	}
	if patch.Empty() {
		return nil
	}

	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.Priority != nil {
		e.Priority = *patch.Priority
	}
	e.UpdatedAt = s.now()

	data.entries[id] = e
	return nil
}

func (s *Store) DeleteListEntry(_ context.Context, id string) error {
	defer s.lock()()

	data := *s.data
	delete(data.entries, id)
	delete(data.seq, id)
	return nil
}

func (s *Store) ListItems(_ context.Context, userID string) ([]models.ListItem, error) {
	defer s.lock()()

	data := *s.data
	var entries []models.ListEntry
	for _, e := range data.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return data.seq[entries[i].ID] < data.seq[entries[j].ID]
	})

	items := make([]models.ListItem, 0, len(entries))
	for _, e := range entries {
		g, ok := data.games[e.GameID]
		if !ok {
			continue
		}
		items = append(items, models.ListItem{
			ID:       e.ID,
			Status:   e.Status,
			Priority: e.Priority,
			Game:     g.Details(),
		})
	}
	return items, nil
}
