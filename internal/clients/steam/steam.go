package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"willplay/internal/config"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

var (
	ErrAppNotFound = errors.New("app not found")
	ErrUpstream    = errors.New("steam request failed")
)

type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type AppData struct {
	Type             string  `json:"type"`
	Name             string  `json:"name"`
	SteamAppID       int64   `json:"steam_appid"`
	ShortDescription string  `json:"short_description"`
	HeaderImage      string  `json:"header_image"`
	Genres           []Genre `json:"genres"`
}

type appDetailsResponse struct {
	Success bool     `json:"success"`
	Data    *AppData `json:"data"`
}

type Suggestion struct {
	AppID int64
	Name  string
	Image string
}

type Client struct {
	apiURL   string
	storeURL string
	country  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger
}

func New(cfg config.Steam, log *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		storeURL: strings.TrimRight(cfg.StoreURL, "/"),
		country:  cfg.Country,
		language: cfg.Language,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, 1),
		log:      log,
	}
}

// AppDetails fetches one app from the store API. It returns ErrAppNotFound
// when Steam answers without data and wraps ErrUpstream on transport errors.
func (c *Client) AppDetails(ctx context.Context, appID int64) (*AppData, error) {
	const op = "clients.steam.AppDetails"

	params := url.Values{}
	params.Add("appids", strconv.FormatInt(appID, 10))
	if c.country != "" {
		params.Add("cc", c.country)
	}
	if c.language != "" {
		params.Add("l", c.language)
	}

	resp, err := c.get(ctx, c.apiURL+"/appdetails", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var body map[string]appDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w: malformed response: %s", op, ErrUpstream, err)
	}

	app, ok := body[strconv.FormatInt(appID, 10)]
	if !ok || !app.Success || app.Data == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrAppNotFound)
	}

	return app.Data, nil
}

// Suggest scrapes the store search suggestions for term and returns at most
// limit games.
func (c *Client) Suggest(ctx context.Context, term string, limit int) ([]Suggestion, error) {
	const op = "clients.steam.Suggest"

	params := url.Values{}
	params.Add("term", term)
	params.Add("f", "games")
	params.Add("realm", "1")
	if c.country != "" {
		params.Add("cc", c.country)
	}
	if c.language != "" {
		params.Add("l", c.language)
	}

	resp, err := c.get(ctx, c.storeURL+"/search/suggest", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUpstream, err)
	}

	suggestions := make([]Suggestion, 0, limit)
	doc.Find("a.match").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(suggestions) >= limit {
			return false
		}

		appID, err := strconv.ParseInt(strings.TrimSpace(s.AttrOr("data-ds-appid", "")), 10, 64)
		if err != nil || appID <= 0 {
			// bundles and packages carry no single app id
			return true
		}

		image, _ := s.Find("div.match_img img").Attr("src")
		suggestions = append(suggestions, Suggestion{
			AppID: appID,
			Name:  strings.TrimSpace(s.Find("div.match_name").Text()),
			Image: image,
		})
		return true
	})

	return suggestions, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.AddCookie(&http.Cookie{Name: "birthtime", Value: "473385601"})
	req.AddCookie(&http.Cookie{Name: "wants_mature_content", Value: "1"})

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("steam request failed",
			slog.String("url", endpoint),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.log.Warn("unexpected steam status",
			slog.String("url", endpoint),
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUpstream, resp.StatusCode)
	}

	return resp, nil
}
