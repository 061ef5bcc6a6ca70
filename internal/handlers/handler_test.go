// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sitecraft/internal/ai"
	"sitecraft/internal/cache"
	"sitecraft/internal/database"
	"sitecraft/internal/generate"
	"sitecraft/internal/materialize"
	"sitecraft/internal/middleware"
	"sitecraft/internal/otp"
	"sitecraft/internal/preview"
	"sitecraft/internal/session"
	"sitecraft/internal/store"
)

// mockAIProvider implements ai.Provider for handler tests.
type mockAIProvider struct {
	name     string
	response string
	err      error
}

func (m *mockAIProvider) Name() string { return m.name }
func (m *mockAIProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

// captureMailer records the last code sent per address.
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendCode(_ context.Context, email, code string, _ otp.Purpose, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test PostgreSQL, runs migrations and seeds roles and
// plans.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "sitecraft")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "sitecraft")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	ctx := context.Background()
	db, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedReference(ctx, db); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "otp:*", "preview:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Sessions   *session.Store
	Users      *store.UserStore
	Websites   *store.WebsiteStore
	Prompts    *store.PromptStore
	Mailer     *captureMailer
	AIRegistry *ai.Registry
	Provider   *mockAIProvider
	Files      *materialize.Materializer

	Auth       *Auth
	WebsiteAPI *Websites
	PromptAPI  *Prompts
	AccountAPI *Account
	AdminAIAPI *AdminAI
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, session.Options{})
	users := store.NewUserStore(db)
	websites := store.NewWebsiteStore(db)
	prompts := store.NewPromptStore(db)
	plans := store.NewPlanStore(db)

	mailer := &captureMailer{}
	codes := otp.New(vk, mailer, time.Minute)

	provider := &mockAIProvider{name: "test", response: testResponse}
	registry := ai.NewRegistry("test", map[string]ai.ProviderConfig{})
	registry.Register("test", provider)

	previewCache, err := cache.NewPreviewCache(vk, 16, time.Minute)
	if err != nil {
		t.Fatalf("NewPreviewCache: %v", err)
	}
	files := materialize.New(t.TempDir())
	generator := generate.NewService(registry, websites, prompts, files)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Sessions:   sessions,
		Users:      users,
		Websites:   websites,
		Prompts:    prompts,
		Mailer:     mailer,
		AIRegistry: registry,
		Provider:   provider,
		Files:      files,

		Auth:       NewAuth(sessions, users, codes),
		WebsiteAPI: NewWebsites(generator, websites, files, preview.NewRenderer(previewCache), previewCache, nil),
		PromptAPI:  NewPrompts(prompts),
		AccountAPI: NewAccount(sessions, users, plans),
		AdminAIAPI: NewAdminAI(registry),
	}
}

// testResponse is a canonical model response with one component.
const testResponse = "```json\n" + `{
  "components": [
    {"name": "Hero", "type": "component", "path": "src/components/Hero.jsx",
     "code": "const Hero = () => <h1>Fresh bread daily</h1>;\nexport default Hero;", "language": "jsx"}
  ],
  "viteConfig": {
    "mainJsx": "import Hero from './components/Hero';\nfunction App() { return <Hero />; }\nReactDOM.createRoot(document.getElementById('root')).render(<App />);",
    "styleCss": "h1 { color: brown; }"
  }
}` + "\n```"

// cleanUsers removes test users by email. Websites and prompt history
// cascade.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// createVerifiedUser inserts a user and returns a matching session.
func createVerifiedUser(t *testing.T, env *testEnv, email string) *session.Data {
	t.Helper()
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })

	ctx := context.Background()
	u, err := env.Users.Create(ctx, "Test User", email, "testpass123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := env.Users.MarkOTPVerified(ctx, u.ID); err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	return sessionData(u)
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// testSession creates a session.Data for unit tests.
func testSession(userID uuid.UUID, role string) *session.Data {
	return &session.Data{
		UserID: userID,
		Email:  "unit@handlers-test.local",
		Name:   "Test User",
		Role:   role,
		Plan:   "free",
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = ctxWithSession(ctx, sess)
	return r.WithContext(ctx)
}
