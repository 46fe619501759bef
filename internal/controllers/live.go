package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"willplay/internal/events"
	"willplay/internal/middleware"
	"willplay/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type ListReader interface {
	GetUserGameList(ctx context.Context, actor string) (*models.UserGameList, error)
}

// LiveController pushes the actor's list over a websocket on connect and
// after every change.
type LiveController struct {
	lists    ListReader
	broker   events.Broker
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewLiveController(lists ListReader, broker events.Broker, origins []string, log *slog.Logger) *LiveController {
	return &LiveController{
		lists:  lists,
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin)
			},
		},
		log: log,
	}
}

func (c *LiveController) Stream(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.live.Stream"

	actor := middleware.ActorFromContext(r.Context())
	if actor == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.log.Warn("websocket upgrade failed", slog.String("operation", op), slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// one pending signal is enough, the whole list is re-read on send
	changed := make(chan struct{}, 1)
	cancel, err := c.broker.Subscribe(actor, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		c.log.Error("subscribe failed", slog.String("operation", op), slog.String("error", err.Error()))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		list, err := c.lists.GetUserGameList(r.Context(), actor)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(list)
	}

	if err := send(); err != nil {
		c.log.Warn("initial list push failed", slog.String("operation", op), slog.String("error", err.Error()))
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-changed:
			if err := send(); err != nil {
				c.log.Warn("list push failed", slog.String("operation", op), slog.String("error", err.Error()))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
