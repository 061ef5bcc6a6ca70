package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestStore returns a Store on Valkey DB 15, skipping when Valkey is
// not reachable.
func newTestStore(t *testing.T, opts Options) (*Store, *redis.Client) {
	t.Helper()

	addr := os.Getenv("VALKEY_HOST")
	if addr == "" {
		addr = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, keyPrefix+"*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return NewStore(client, opts), client
}

// signIn creates a session and returns a request carrying its cookie.
func signIn(t *testing.T, s *Store, data *Data) (*http.Request, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	id, err := s.Create(context.Background(), w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != 2*idBytes {
		t.Fatalf("session id %q has length %d", id, len(id))
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != id {
		t.Fatalf("cookie = %+v, want value %q", cookie, id)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	return r, cookie
}

func baker() *Data {
	return &Data{UserID: uuid.New(), Email: "baker@session.local", Name: "Baker", Role: "user", Plan: "free"}
}

func TestNewStoreDefaults(t *testing.T) {
	if got := NewStore(nil, Options{}).TTL(); got != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", got, DefaultTTL)
	}
	if got := NewStore(nil, Options{TTL: time.Hour}).TTL(); got != time.Hour {
		t.Errorf("TTL() = %v, want 1h", got)
	}
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(t, Options{TTL: time.Hour, Secure: true})
	want := baker()
	r, cookie := signIn(t, s, want)

	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = %+v", cookie)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
	}

	got, err := s.Get(context.Background(), r)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.UserID != want.UserID || got.Email != want.Email || got.Plan != "free" {
		t.Errorf("Get = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestGetWithoutSession(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: CookieName, Value: ""}},
		{"unknown id", &http.Cookie{Name: CookieName, Value: "deadbeef"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			got, err := s.Get(context.Background(), r)
			if err != nil || got != nil {
				t.Errorf("Get = %v, %v; want nil, nil", got, err)
			}
		})
	}
}

func TestGetSlidesExpiry(t *testing.T) {
	s, client := newTestStore(t, Options{TTL: time.Hour})
	r, cookie := signIn(t, s, baker())
	ctx := context.Background()

	key := keyPrefix + cookie.Value
	if err := client.Expire(ctx, key, time.Minute).Err(); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if _, err := s.Get(ctx, r); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ttl := client.TTL(ctx, key).Val(); ttl <= 50*time.Minute {
		t.Errorf("TTL after Get = %v, want close to 1h", ttl)
	}
}

func TestUpdate(t *testing.T) {
	s, client := newTestStore(t, Options{})
	data := baker()
	r, cookie := signIn(t, s, data)
	ctx := context.Background()

	data.Plan = "premium"
	if err := s.Update(ctx, r, data); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := s.Get(ctx, r); got == nil || got.Plan != "premium" {
		t.Errorf("after Update = %+v", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := s.Update(ctx, bare, data); !errors.Is(err, ErrNoSession) {
		t.Errorf("Update without cookie = %v, want ErrNoSession", err)
	}

	client.Del(ctx, keyPrefix+cookie.Value)
	if err := s.Update(ctx, r, data); !errors.Is(err, ErrNoSession) {
		t.Errorf("Update of expired session = %v, want ErrNoSession", err)
	}
	if n := client.Exists(ctx, keyPrefix+cookie.Value).Val(); n != 0 {
		t.Error("Update recreated an expired session")
	}
}

func TestDestroy(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	r, _ := signIn(t, s, baker())
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := s.Destroy(ctx, w, r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Destroy did not expire the cookie")
	}
	if got, _ := s.Get(ctx, r); got != nil {
		t.Error("session readable after Destroy")
	}

	w = httptest.NewRecorder()
	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := s.Destroy(ctx, w, bare); err != nil {
		t.Errorf("Destroy without cookie = %v", err)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("Destroy without cookie set a cookie")
	}
}
