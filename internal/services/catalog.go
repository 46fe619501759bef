package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"willplay/internal/clients/steam"
	"willplay/internal/models"
	"willplay/internal/storage"
)

const (
	searchLimit  = 3
	suggestLimit = 3
)

var steamLinkRe = regexp.MustCompile(`(?i)(?:https?://)?(?:store\.steampowered\.com/)?app/(\d+)`)

type SteamClient interface {
	AppDetails(ctx context.Context, appID int64) (*steam.AppData, error)
	Suggest(ctx context.Context, term string, limit int) ([]steam.Suggestion, error)
}

type CatalogService struct {
	store storage.Store
	steam SteamClient
	log   *slog.Logger
}

func NewCatalogService(store storage.Store, steam SteamClient, log *slog.Logger) *CatalogService {
	return &CatalogService{
		store: store,
		steam: steam,
		log:   log,
	}
}

// ResolveByExternalID returns the local game for a Steam app id, fetching it
// from Steam only when no local row exists. Fetched games are not stored.
func (s *CatalogService) ResolveByExternalID(ctx context.Context, steamID int64) models.LookupResult[*models.GameDetails] {
	const op = "services.catalog.ResolveByExternalID"

	if steamID <= 0 {
		return models.LookupFailed[*models.GameDetails](
			fmt.Errorf("%s: %w: steam id must be positive", op, ErrValidation),
			"invalid steam id")
	}

	g, err := s.store.GameBySteamID(ctx, steamID)
	switch {
	case err == nil:
		d := g.Details()
		return models.LookupOK(&d)
	case !errors.Is(err, storage.ErrNotFound):
		s.log.Error("local lookup failed",
			slog.String("operation", op),
			slog.Int64("steam_id", steamID),
			slog.String("error", err.Error()))
		return models.LookupFailed[*models.GameDetails](fmt.Errorf("%s: %w", op, err), "lookup failed")
	}

	app, err := s.steam.AppDetails(ctx, steamID)
	if err != nil {
		if errors.Is(err, steam.ErrAppNotFound) {
			return models.LookupFailed[*models.GameDetails](
				fmt.Errorf("%s: %w", op, ErrNotFound), MsgGameNotFound)
		}
		s.log.Warn("steam fetch failed",
			slog.String("operation", op),
			slog.Int64("steam_id", steamID),
			slog.String("error", err.Error()))
		return models.LookupFailed[*models.GameDetails](
			fmt.Errorf("%s: %w: %s", op, ErrUpstream, err), err.Error())
	}

	return models.LookupOK(detailsFromApp(app, steamID))
}

// ResolveByLink accepts a Steam store link such as
// https://store.steampowered.com/app/730/CounterStrike_2.
func (s *CatalogService) ResolveByLink(ctx context.Context, link string) models.LookupResult[*models.GameDetails] {
	const op = "services.catalog.ResolveByLink"

	steamID, ok := ParseSteamLink(link)
	if !ok {
		return models.LookupFailed[*models.GameDetails](
			fmt.Errorf("%s: %w: not a steam store link", op, ErrValidation),
			"not a steam store link")
	}

	return s.ResolveByExternalID(ctx, steamID)
}

// SearchByName searches local games only. It never returns more than three
// games and never fails on an empty match.
func (s *CatalogService) SearchByName(ctx context.Context, name string) models.LookupResult[[]models.GameDetails] {
	const op = "services.catalog.SearchByName"

	name = strings.TrimSpace(name)
	if name == "" {
		return models.LookupOK([]models.GameDetails{})
	}

	games, err := s.store.SearchGames(ctx, name, searchLimit)
	if err != nil {
		s.log.Error("search failed",
			slog.String("operation", op),
			slog.String("name", name),
			slog.String("error", err.Error()))
		return models.LookupFailed[[]models.GameDetails](fmt.Errorf("%s: %w", op, err), "search failed")
	}

	if len(games) > searchLimit {
		games = games[:searchLimit]
	}

	res := make([]models.GameDetails, 0, len(games))
	for i := range games {
		res = append(res, games[i].Details())
	}

	return models.LookupOK(res)
}

// SuggestRemote asks the Steam store for games matching term.
func (s *CatalogService) SuggestRemote(ctx context.Context, term string) models.LookupResult[[]models.Suggestion] {
	const op = "services.catalog.SuggestRemote"

	term = strings.TrimSpace(term)
	if term == "" {
		return models.LookupOK([]models.Suggestion{})
	}

	found, err := s.steam.Suggest(ctx, term, suggestLimit)
	if err != nil {
		s.log.Warn("steam suggest failed",
			slog.String("operation", op),
			slog.String("term", term),
			slog.String("error", err.Error()))
		return models.LookupFailed[[]models.Suggestion](
			fmt.Errorf("%s: %w: %s", op, ErrUpstream, err), err.Error())
	}

	res := make([]models.Suggestion, 0, len(found))
	for _, f := range found {
		if len(res) == suggestLimit {
			break
		}
		res = append(res, models.Suggestion{SteamID: f.AppID, Name: f.Name, Image: f.Image})
	}

	return models.LookupOK(res)
}

func ParseSteamLink(link string) (int64, bool) {
	m := steamLinkRe.FindStringSubmatch(link)
	if m == nil {
		return 0, false
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func detailsFromApp(app *steam.AppData, steamID int64) *models.GameDetails {
	d := &models.GameDetails{
		SteamID:     app.SteamAppID,
		Name:        app.Name,
		Description: app.ShortDescription,
		Image:       app.HeaderImage,
	}
	if d.SteamID == 0 {
		d.SteamID = steamID
	}
	if len(app.Genres) > 0 {
		d.Genre = app.Genres[0].Description
	}
	return d
}
