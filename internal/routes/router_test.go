package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"willplay/internal/clients/steam"
	"willplay/internal/config"
	"willplay/internal/events"
	authmw "willplay/internal/middleware"
	"willplay/internal/models"
	"willplay/internal/storage/memory"

	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type fakeSteam struct {
	calls atomic.Int32
}

func (f *fakeSteam) AppDetails(_ context.Context, appID int64) (*steam.AppData, error) {
	f.calls.Add(1)
	if appID != 730 {
		return nil, fmt.Errorf("fake: %w", steam.ErrAppNotFound)
	}
	return &steam.AppData{
		Name:             "Counter-Strike 2",
		SteamAppID:       730,
		ShortDescription: "Tactical shooter",
		HeaderImage:      "https://cdn.example/730/header.jpg",
		Genres:           []steam.Genre{{ID: "1", Description: "Action"}, {ID: "37", Description: "Free To Play"}},
	}, nil
}

func (f *fakeSteam) Suggest(_ context.Context, term string, limit int) ([]steam.Suggestion, error) {
	return []steam.Suggestion{{AppID: 730, Name: "Counter-Strike 2"}}, nil
}

func setupServer(t *testing.T) (*httptest.Server, *fakeSteam) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := events.NewLocal()
	t.Cleanup(func() { broker.Close() })

	cfg := &config.Config{
		Env:        "local",
		HTTPServer: config.HTTPServer{Cors: []string{"http://localhost:3000"}},
		List:       config.List{Statuses: []string{"wishlist", "backlog", "playing", "completed"}},
	}

	steamClient := &fakeSteam{}
	router := SetupRouter(log, memory.New(), steamClient, broker, authmw.NewJWTAuthMiddleware(testSecret, log), cfg)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, steamClient
}

func tokenFor(t *testing.T, user string) string {
	t.Helper()
	_, token, err := jwtauth.New("HS256", []byte(testSecret), nil).Encode(map[string]interface{}{"sub": user})
	require.NoError(t, err)
	return token
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestRouter_BacklogFlow(t *testing.T) {
	srv, steamClient := setupServer(t)
	alice := tokenFor(t, "alice")
	bob := tokenFor(t, "bob")

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// catalog lookups are public
	resp = do(t, http.MethodGet, srv.URL+"/api/games/steam/730", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview models.LookupResult[*models.GameDetails]
	decode(t, resp, &preview)
	require.True(t, preview.Success)
	assert.Equal(t, "Action", preview.Data.Genre)
	assert.Empty(t, preview.Data.ID)

	resp = do(t, http.MethodGet, srv.URL+"/api/games/steam/999999", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var missing models.LookupResult[*models.GameDetails]
	decode(t, resp, &missing)
	assert.Equal(t, "Game not found or data unavailable", missing.Error)

	// lists are not
	resp = do(t, http.MethodGet, srv.URL+"/api/list", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	addBody := `{"game":{"steam_id":730,"name":"Counter-Strike 2","genre":"Action"},"status":"backlog","priority":"high"}`
	resp = do(t, http.MethodPost, srv.URL+"/api/list", alice, addBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added struct {
		ID string `json:"id"`
	}
	decode(t, resp, &added)
	require.NotEmpty(t, added.ID)

	resp = do(t, http.MethodPost, srv.URL+"/api/list", alice, addBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var again struct {
		ID string `json:"id"`
	}
	decode(t, resp, &again)
	assert.Equal(t, added.ID, again.ID)

	// the stored row now answers lookups without Steam
	calls := steamClient.calls.Load()
	resp = do(t, http.MethodGet, srv.URL+"/api/games/steam/730", "", "")
	var local models.LookupResult[*models.GameDetails]
	decode(t, resp, &local)
	assert.NotEmpty(t, local.Data.ID)
	assert.Equal(t, calls, steamClient.calls.Load())

	resp = do(t, http.MethodGet, srv.URL+"/api/games/search?name=counter", "", "")
	var found models.LookupResult[[]models.GameDetails]
	decode(t, resp, &found)
	require.Len(t, found.Data, 1)

	statusURL := srv.URL + "/api/list/" + added.ID + "/status"
	resp = do(t, http.MethodPatch, statusURL, alice, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, http.MethodPatch, statusURL, bob, `{"status":"completed"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, http.MethodPatch, statusURL, alice, `{"status":"completed"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/list", alice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.UserGameList
	decode(t, resp, &list)
	assert.Empty(t, list.Lists[models.StatusBacklog])
	require.Len(t, list.Lists[models.StatusCompleted], 1)
	assert.Equal(t, "Counter-Strike 2", list.Lists[models.StatusCompleted][0].Game.Name)

	resp = do(t, http.MethodDelete, srv.URL+"/api/list/"+added.ID, bob, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/list/"+added.ID, alice, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/list/"+added.ID, alice, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_LiveList(t *testing.T) {
	srv, _ := setupServer(t)
	alice := tokenFor(t, "alice")
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/list/ws"

	t.Run("anonymous", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("pushes on change", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + alice}})
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		var initial models.UserGameList
		require.NoError(t, conn.ReadJSON(&initial))
		assert.Equal(t, "alice", initial.UserID)
		assert.Empty(t, initial.Lists[models.StatusBacklog])

		resp := do(t, http.MethodPost, srv.URL+"/api/list", alice,
			`{"game":{"steam_id":730,"name":"Counter-Strike 2"},"status":"backlog","priority":"medium"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var updated models.UserGameList
		require.NoError(t, conn.ReadJSON(&updated))
		require.Len(t, updated.Lists[models.StatusBacklog], 1)
		assert.Equal(t, models.PriorityMedium, updated.Lists[models.StatusBacklog][0].Priority)
	})
}
