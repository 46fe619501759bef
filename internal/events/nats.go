package events

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

type Nats struct {
	conn *nats.Conn
	log  *slog.Logger
}

func ConnectNats(url, token string, log *slog.Logger) (*Nats, error) {
	const op = "events.ConnectNats"

	opts := []nats.Option{
		nats.Name("willplay"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	}

	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Nats{conn: conn, log: log}, nil
}

func (n *Nats) Publish(userID string) error {
	if err := n.conn.Publish(subject(userID), nil); err != nil {
		return fmt.Errorf("events.Nats.Publish: %w", err)
	}
	return nil
}

func (n *Nats) Subscribe(userID string, fn func()) (func(), error) {
	sub, err := n.conn.Subscribe(subject(userID), func(*nats.Msg) { fn() })
	if err != nil {
		return nil, fmt.Errorf("events.Nats.Subscribe: %w", err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			n.log.Warn("nats unsubscribe failed", slog.String("error", err.Error()))
		}
	}, nil
}

func (n *Nats) Close() error {
	return n.conn.Drain()
}
