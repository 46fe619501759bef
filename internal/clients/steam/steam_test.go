package steam

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"willplay/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.Steam{
		APIURL:   srv.URL + "/api/",
		StoreURL: srv.URL,
		Timeout:  2 * time.Second,
		Country:  "US",
		Language: "english",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_AppDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/appdetails", r.URL.Path)
			assert.Equal(t, "730", r.URL.Query().Get("appids"))
			assert.Equal(t, "US", r.URL.Query().Get("cc"))
			assert.Equal(t, "english", r.URL.Query().Get("l"))
			io.WriteString(w, `{"730":{"success":true,"data":{
				"type":"game","name":"Counter-Strike 2","steam_appid":730,
				"short_description":"Tactical shooter",
				"header_image":"https://cdn.example/730/header.jpg",
				"genres":[{"id":"1","description":"Action"},{"id":"37","description":"Free To Play"}]}}}`)
		})

		app, err := client.AppDetails(ctx, 730)

		require.NoError(t, err)
		assert.Equal(t, "Counter-Strike 2", app.Name)
		assert.Equal(t, int64(730), app.SteamAppID)
		assert.Equal(t, "Tactical shooter", app.ShortDescription)
		require.Len(t, app.Genres, 2)
		assert.Equal(t, "Action", app.Genres[0].Description)
	})

	t.Run("success false", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"999999":{"success":false}}`)
		})

		_, err := client.AppDetails(ctx, 999999)

		assert.ErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("missing key", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{}`)
		})

		_, err := client.AppDetails(ctx, 5)

		assert.ErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.AppDetails(ctx, 730)

		assert.ErrorIs(t, err, ErrUpstream)
		assert.NotErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>`)
		})

		_, err := client.AppDetails(ctx, 730)

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("canceled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be sent")
		})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.AppDetails(cctx, 730)

		assert.ErrorIs(t, err, ErrUpstream)
	})
}

const suggestHTML = `
<a class="match ds_collapse_flag" data-ds-appid="1145360" href="https://store.steampowered.com/app/1145360/Hades/">
	<div class="match_name">Hades</div>
	<div class="match_img"><img src="https://cdn.example/1145360/capsule.jpg"></div>
	<div class="match_price">$24.99</div>
</a>
<a class="match" data-ds-packageid="9999" href="https://store.steampowered.com/sub/9999/">
	<div class="match_name">Hades Bundle</div>
</a>
<a class="match" data-ds-appid="1145350" href="https://store.steampowered.com/app/1145350/Hades_II/">
	<div class="match_name"> Hades II </div>
	<div class="match_img"><img src="https://cdn.example/1145350/capsule.jpg"></div>
</a>
<a class="match" data-ds-appid="2000" href="#"><div class="match_name">Hadestown</div></a>
`

func TestClient_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("parses app matches", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/suggest", r.URL.Path)
			assert.Equal(t, "hades", r.URL.Query().Get("term"))
			io.WriteString(w, suggestHTML)
		})

		got, err := client.Suggest(ctx, "hades", 2)

		require.NoError(t, err)
		assert.Equal(t, []Suggestion{
			{AppID: 1145360, Name: "Hades", Image: "https://cdn.example/1145360/capsule.jpg"},
			{AppID: 1145350, Name: "Hades II", Image: "https://cdn.example/1145350/capsule.jpg"},
		}, got)
	})

	t.Run("no matches", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "")
		})

		got, err := client.Suggest(ctx, "zzz", 3)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("upstream down", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Suggest(ctx, "hades", 3)

		assert.ErrorIs(t, err, ErrUpstream)
	})
}
