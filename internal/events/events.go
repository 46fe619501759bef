// Package events fans out "list changed" notifications to subscribers of a
// user's list, in process or across instances through NATS.
package events

import (
	"encoding/base64"
	"errors"
	"sync"
)

var ErrClosed = errors.New("broker closed")

type Broker interface {
	Publish(userID string) error
	// Subscribe calls fn after every change of userID's list until cancel.
	Subscribe(userID string, fn func()) (cancel func(), err error)
	Close() error
}

// Local delivers notifications to subscribers of this process only.
type Local struct {
	mu     sync.RWMutex
	subs   map[string]map[int]func()
	nextID int
	closed bool
}

func NewLocal() *Local {
	return &Local{subs: map[string]map[int]func(){}}
}

func (l *Local) Publish(userID string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrClosed
	}

	for _, fn := range l.subs[userID] {
		fn()
	}
	return nil
}

func (l *Local) Subscribe(userID string, fn func()) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	l.nextID++
	id := l.nextID
	if l.subs[userID] == nil {
		l.subs[userID] = map[int]func(){}
	}
	l.subs[userID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[userID], id)
			if len(l.subs[userID]) == 0 {
				delete(l.subs, userID)
			}
		})
	}, nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.subs = map[string]map[int]func(){}
	return nil
}

// subject keeps arbitrary user ids inside a single NATS subject token.
func subject(userID string) string {
	return subjectPrefix + base64.RawURLEncoding.EncodeToString([]byte(userID))
}

const subjectPrefix = "willplay.lists."
