// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in users in Valkey. The browser holds only
// an opaque random ID in a cookie; the payload lives under session:<id>
// and expires on its own. Every successful Get slides the expiry forward.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "sc_session"

	// DefaultTTL applies when Options.TTL is zero.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"
	idBytes   = 32
)

// ErrNoSession is returned by Update when the request carries no session
// cookie or the session already expired.
var ErrNoSession = errors.New("session: no active session")

// Data holds the session payload stored in Valkey. A session exists only
// after the user completed the email code step.
type Data struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// Options configure a Store.
type Options struct {
	TTL    time.Duration
	Secure bool // HTTPS-only cookies
}

// Store creates, loads and destroys sessions.
type Store struct {
	client *redis.Client
	opts   Options
}

// NewStore returns a Store on client.
func NewStore(client *redis.Client, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Store{client: client, opts: opts}
}

// TTL is the idle lifetime of a session.
func (s *Store) TTL() time.Duration { return s.opts.TTL }

// Create stores data under a fresh ID and sets the cookie on w.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := newID()
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	data.CreatedAt = time.Now().UTC()

	if err := s.save(ctx, id, data, false); err != nil {
		return "", err
	}
	s.setCookie(w, id, int(s.opts.TTL.Seconds()))
	return id, nil
}

// Get loads the session named by the request cookie and refreshes its
// expiry. A missing cookie or an expired session yields (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := cookieID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, keyPrefix+id, s.opts.TTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	data := &Data{}
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return data, nil
}

// Update overwrites the payload of the request's session in place. The
// ID and cookie stay the same.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id, ok := cookieID(r)
	if !ok {
		return ErrNoSession
	}
	return s.save(ctx, id, data, true)
}

// Destroy deletes the request's session and expires the cookie. The
// cookie is cleared even when Valkey fails.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	s.setCookie(w, "", -1)

	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// save writes data under id. With mustExist the write only succeeds for
// a live session so an expired one is not resurrected.
func (s *Store) save(ctx context.Context, id string, data *Data, mustExist bool) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	if !mustExist {
		if err := s.client.Set(ctx, keyPrefix+id, payload, s.opts.TTL).Err(); err != nil {
			return fmt.Errorf("session store: %w", err)
		}
		return nil
	}

	ok, err := s.client.SetXX(ctx, keyPrefix+id, payload, s.opts.TTL).Result()
	if err != nil {
		return fmt.Errorf("session update: %w", err)
	}
	if !ok {
		return ErrNoSession
	}
	return nil
}

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
