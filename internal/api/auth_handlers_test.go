package api

import (
	"net/http"
	"testing"
)

func TestHandleRegister(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "new@example.com",
		Password: "password1",
		Name:     "New User",
	}, nil)
	ts.HandleRegister(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var resp AuthResponse
	DecodeJSON(t, rec, &resp)
	if !resp.Success {
		t.Error("success flag not set")
	}
	if resp.Token == "" {
		t.Error("no token in response")
	}
	if resp.User == nil || resp.User.Email != "new@example.com" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "taken@example.com", "password1")

	rec, req := MakeRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "taken@example.com",
		Password: "password1",
	}, nil)
	ts.HandleRegister(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleRegisterWeakPassword(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	cases := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"too short", "a1"},
		{"no digit", "passwords"},
		{"no letter", "12345678"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, req := MakeRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
				Email:    "weak@example.com",
				Password: tc.password,
			}, nil)
			ts.HandleRegister(rec, req)

			AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "login@example.com", "password1")

	rec, req := MakeRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "login@example.com",
		Password: "password1",
	}, nil)
	ts.HandleLogin(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp AuthResponse
	DecodeJSON(t, rec, &resp)
	if resp.Token == "" {
		t.Error("no token in response")
	}
}

func TestHandleLoginWrongPassword(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "login2@example.com", "password1")

	rec, req := MakeRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "login2@example.com",
		Password: "wrong-password1",
	}, nil)
	ts.HandleLogin(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusUnauthorized)
}

func TestHandleLoginUnknownUser(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	rec, req := MakeRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "password1",
	}, nil)
	ts.HandleLogin(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusUnauthorized)
}

func TestHandleProfile(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "me@example.com", "password1")

	rec, req := ts.MakeAuthRequest(t, http.MethodGet, "/api/auth/profile", nil, userID, nil)
	ts.HandleProfile(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp AuthResponse
	DecodeJSON(t, rec, &resp)
	if resp.User == nil || resp.User.ID != userID {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
	if resp.Token != "" {
		t.Error("profile response should not carry a token")
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "mw@example.com", "password1")
	token := ts.GenerateTestToken(t, userID, "mw@example.com")

	var gotUserID string
	handler := ts.JWTAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	rec, req := MakeRequest(t, http.MethodGet, "/api/todos", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, rec.Code, http.StatusOK)
	if gotUserID != userID {
		t.Errorf("context user id = %q, want %q", gotUserID, userID)
	}

	rec, req = MakeRequest(t, http.MethodGet, "/api/todos", nil, nil)
	handler.ServeHTTP(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusUnauthorized)

	rec, req = MakeRequest(t, http.MethodGet, "/api/todos", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	handler.ServeHTTP(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusUnauthorized)
}
