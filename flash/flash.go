// Package flash carries one-shot user notices from a mutating request to the
// next rendered page. Messages are stored server side under a random token
// that travels in a cookie, so nothing is shared between browsers.
package flash

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "flash"
	messageTTL = 10 * time.Minute
)

type Store interface {
	// Add appends msg under key for the token
	Add(ctx context.Context, token, key, msg string) error
	// Pop returns and deletes every message under key for the token
	Pop(ctx context.Context, token, key string) ([]string, error)
}

type Messenger struct {
	store  Store
	secure bool
}

func NewMessenger(store Store, secureCookie bool) *Messenger {
	return &Messenger{store: store, secure: secureCookie}
}

// Add records msg for the browser that sent r, issuing a token cookie on w
// when the browser has none yet.
func (m *Messenger) Add(w http.ResponseWriter, r *http.Request, key, msg string) error {
	token := tokenFrom(r)
	if token == "" {
		token = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(messageTTL / time.Second),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return m.store.Add(r.Context(), token, key, msg)
}

// Pop consumes the messages stored under key for the browser that sent r.
func (m *Messenger) Pop(r *http.Request, key string) ([]string, error) {
	token := tokenFrom(r)
	if token == "" {
		return nil, nil
	}

	return m.store.Pop(r.Context(), token, key)
}

func tokenFrom(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
