package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/handler"
	"github.com/msomdec/taskchat/internal/repository/sqlite"
	"github.com/msomdec/taskchat/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServices(t *testing.T) (*service.AuthService, *service.TaskService, *service.ChatService) {
	t.Helper()
	db := newTestDB(t)

	// Use cost 4 for fast tests.
	auth, err := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	tasks := service.NewTaskService(db.Tasks())
	return auth, tasks, service.NewChatService(db.Conversations(), tasks)
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestRequireAuth_ValidToken(t *testing.T) {
	auth, _, _ := newTestServices(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "valid@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var gotSubject string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = service.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotSubject != user.ID {
		t.Fatalf("expected subject %s in context, got %s", user.ID, gotSubject)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	auth, _, _ := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != "token_missing" {
		t.Fatalf("expected code token_missing, got %s", code)
	}
}

func TestRequireAuth_BadHeader(t *testing.T) {
	auth, _, _ := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	cases := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty credential", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tc.header)
			w := httptest.NewRecorder()

			handler.RequireAuth(auth, inner).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if code := decodeErrorCode(t, w); code != "token_invalid" {
				t.Fatalf("expected code token_invalid, got %s", code)
			}
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	db := newTestDB(t)
	auth, err := service.NewAuthService(db.Users(), testJWTSecret, 4, -time.Minute)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	_, token, err := auth.Register(context.Background(), "expired@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != "token_expired" {
		t.Fatalf("expected code token_expired, got %s", code)
	}
}

// countingUserRepo counts every store access.
type countingUserRepo struct {
	domain.UserRepository
	calls int
}

func (r *countingUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.calls++
	return r.UserRepository.Create(ctx, user)
}

func (r *countingUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.calls++
	return r.UserRepository.GetByID(ctx, id)
}

func (r *countingUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.calls++
	return r.UserRepository.GetByEmail(ctx, email)
}

// Token verification is pure signature checking. Whether the token is
// missing, garbage, or valid, the middleware itself must never touch the
// store.
func TestRequireAuth_NeverQueriesStore(t *testing.T) {
	db := newTestDB(t)
	repo := &countingUserRepo{UserRepository: db.Users()}
	auth, err := service.NewAuthService(repo, testJWTSecret, 4, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	_, token, err := auth.Register(context.Background(), "counted@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.calls = 0

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := handler.RequireAuth(auth, inner)

	for _, header := range []string{"", "Bearer garbage", "Bearer " + token} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		protected.ServeHTTP(httptest.NewRecorder(), req)
	}

	if repo.calls != 0 {
		t.Fatalf("middleware hit the store %d times", repo.calls)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewRateLimiter(0.001, 2)
	var served int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	})
	limited := handler.RateLimit(limiter, inner)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", w.Code)
	}
	if code := decodeErrorCode(t, w); code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %s", code)
	}

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.99:1234"
	w = httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a different client, got %d", w.Code)
	}

	if served != 3 {
		t.Fatalf("expected 3 served requests, got %d", served)
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.SecurityHeaders(inner).ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	handler.CORS([]string{"https://app.example.com"}, inner).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatal("expected allow-headers on preflight")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()

	handler.CORS([]string{"https://app.example.com"}, inner).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS headers for disallowed origin, got %q", got)
	}
}
