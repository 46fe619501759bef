package mariadb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"willplay/internal/config"
	"willplay/internal/models"
	"willplay/internal/storage"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const errDuplicateEntry = 1062

type Storage struct {
	DB   *gorm.DB
	inTx bool
}

func New(cfg config.Database) (*Storage, error) {
	const op = "storage.mariadb.New"

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) Migrate() error {
	const op = "storage.mariadb.Migrate"

	if err := s.DB.AutoMigrate(&models.Game{}, &models.ListEntry{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Atomic(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{DB: tx, inTx: true})
	})
}

func (s *Storage) GameByID(ctx context.Context, id string) (*models.Game, error) {
	const op = "storage.mariadb.GameByID"

	var g models.Game
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &g, nil
}

func (s *Storage) GameBySteamID(ctx context.Context, steamID int64) (*models.Game, error) {
	const op = "storage.mariadb.GameBySteamID"

	var g models.Game
	if err := s.DB.WithContext(ctx).Where("steam_id = ?", steamID).First(&g).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &g, nil
}

// SearchGames runs a prefix full-text search on the name and falls back to
// LIKE for terms shorter than the InnoDB minimum token size.
func (s *Storage) SearchGames(ctx context.Context, query string, limit int) ([]models.Game, error) {
	const op = "storage.mariadb.SearchGames"

	query = strings.TrimSpace(query)
	q := booleanQuery(query)
	if q == "" {
		return []models.Game{}, nil
	}

	db := s.DB.WithContext(ctx)

	var games []models.Game
	if err := db.Model(&models.Game{}).
		Select("*, MATCH(name) AGAINST (? IN BOOLEAN MODE) AS relevance", q).
		Where("MATCH(name) AGAINST (? IN BOOLEAN MODE)", q).
		Order("relevance DESC, created_at ASC").
		Limit(limit).
		Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(games) > 0 {
		return games, nil
	}

	if err := db.Where("name LIKE ?", escapeLike(query)+"%").
		Order("created_at ASC").
		Limit(limit).
		Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func (s *Storage) CreateGame(ctx context.Context, g *models.Game) error {
	const op = "storage.mariadb.CreateGame"

	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	err := translate(s.DB.WithContext(ctx).Create(g).Error)
	if errors.Is(err, storage.ErrExists) {
		// a locking read sees rows committed after this transaction's snapshot
		var existing models.Game
		if rerr := s.DB.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("steam_id = ?", g.SteamID).
			First(&existing).Error; rerr != nil {
			return fmt.Errorf("%s: %w", op, translate(rerr))
		}
		*g = existing
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListEntryByID(ctx context.Context, id string) (*models.ListEntry, error) {
	const op = "storage.mariadb.ListEntryByID"

	var e models.ListEntry
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &e, nil
}

func (s *Storage) ListEntryByUserAndGame(ctx context.Context, userID, gameID string) (*models.ListEntry, error) {
	const op = "storage.mariadb.ListEntryByUserAndGame"

	var e models.ListEntry
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&e).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &e, nil
}

func (s *Storage) CreateListEntry(ctx context.Context, e *models.ListEntry) error {
	const op = "storage.mariadb.CreateListEntry"

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	err := translate(s.DB.WithContext(ctx).Create(e).Error)
	if errors.Is(err, storage.ErrExists) {
		var existing models.ListEntry
		if rerr := s.DB.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND game_id = ?", e.UserID, e.GameID).
			First(&existing).Error; rerr != nil {
			return fmt.Errorf("%s: %w", op, translate(rerr))
		}
		*e = existing
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UpdateListEntry(ctx context.Context, id string, patch storage.ListEntryPatch) error {
	const op = "storage.mariadb.UpdateListEntry"

	fields := map[string]any{}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.DB.WithContext(ctx).
		Model(&models.ListEntry{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteListEntry(ctx context.Context, id string) error {
	const op = "storage.mariadb.DeleteListEntry"

	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ListEntry{}).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type listItemRow struct {
	ID          string
	Status      models.GameStatus
	Priority    models.Priority
	GameID      string
	SteamID     int64
	Name        string
	Description string
	Image       string
	Genre       string
}

func (s *Storage) ListItems(ctx context.Context, userID string) ([]models.ListItem, error) {
	const op = "storage.mariadb.ListItems"

	var rows []listItemRow
	if err := s.DB.WithContext(ctx).
		Table("list_entries").
		Select("list_entries.id, list_entries.status, list_entries.priority, "+
			"games.id AS game_id, games.steam_id, games.name, games.description, games.image, games.genre").
		Joins("JOIN games ON games.id = list_entries.game_id").
		Where("list_entries.user_id = ?", userID).
		Order("list_entries.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.ListItem{
			ID:       r.ID,
			Status:   r.Status,
			Priority: r.Priority,
			Game: models.GameDetails{
				ID:          r.GameID,
				SteamID:     r.SteamID,
				Name:        r.Name,
				Description: r.Description,
				Image:       r.Image,
				Genre:       r.Genre,
			},
		})
	}

	return items, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
		return storage.ErrExists
	}

	return err
}

// booleanQuery turns free text into a MySQL boolean-mode query where every
// word must match as a prefix.
func booleanQuery(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, w := range words {
		words[i] = "+" + w + "*"
	}

	return strings.Join(words, " ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
