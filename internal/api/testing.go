package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"todonest/internal/auth"
	"todonest/internal/config"
	"todonest/internal/db"
)

// TestServer holds test server dependencies
type TestServer struct {
	*Server
	DB *db.DB
}

// NewTestServer creates a new test server with an in-memory SQLite database
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	// Fast bcrypt for tests (MinCost=4 vs production cost 12)
	auth.SetBcryptCost(bcrypt.MinCost)

	logger := zaptest.NewLogger(t)

	database, err := db.New(db.Config{Driver: "sqlite", DBPath: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	testCfg := &config.Config{
		JWTSecret:      "test-secret-key",
		JWTExpiryHours: 24,
	}

	return &TestServer{
		Server: NewServer(database, testCfg, logger),
		DB:     database,
	}
}

// Close cleans up test server resources
func (ts *TestServer) Close() {
	if ts.DB != nil {
		ts.DB.Close()
	}
}

// CreateTestUser creates a user for testing and returns the user ID
func (ts *TestServer) CreateTestUser(t *testing.T, email, password string) string {
	t.Helper()

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user, err := ts.DB.CreateUser(context.Background(), email, "Test User", hashedPassword)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID
}

// GenerateTestToken generates a bearer token for testing
func (ts *TestServer) GenerateTestToken(t *testing.T, userID, email string) string {
	t.Helper()

	token, err := auth.GenerateToken(userID, email, ts.config.JWTSecret, ts.config.JWTExpiry())
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return token
}

// MakeRequest is a helper to make HTTP requests in tests
func MakeRequest(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return httptest.NewRecorder(), req
}

// MakeAuthRequest creates an HTTP request with auth context and optional chi URL params
func (ts *TestServer) MakeAuthRequest(t *testing.T, method, path string, body interface{}, userID string, urlParams map[string]string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	rec, req := MakeRequest(t, method, path, body, nil)

	ctx := context.WithValue(req.Context(), UserIDKey, userID)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range urlParams {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return rec, req.WithContext(ctx)
}

// DecodeJSON decodes a JSON response into the provided interface
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertStatusCode checks if the response status code matches expected
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()

	if got != want {
		t.Errorf("Status code mismatch: got %d, want %d", got, want)
	}
}
