package handler

import (
	"net/http"
	"testing"

	"github.com/habitroom/internal/db"
)

func TestSignupCreatesUserAndProfile(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	w := doJSON(t, r, http.MethodPost, "/api/signup", map[string]string{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var user db.User
	if err := db.DB.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	var profile db.Profile
	if err := db.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("unexpected profile email %q", profile.Email)
	}
	if profile.IsAdmin {
		t.Fatal("new signup should not be admin")
	}
}

func TestSignupRejectsPasswordMismatch(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	w := doJSON(t, r, http.MethodPost, "/api/signup", map[string]string{
		"username":         "bob",
		"password":         "one",
		"confirm_password": "two",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "carol", "secret123", false)

	w := doJSON(t, r, http.MethodPost, "/api/signup", map[string]string{
		"username":         "carol",
		"password":         "secret123",
		"confirm_password": "secret123",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", w.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "alice", "secret123", false)
	cookies := login(t, r, "alice", "secret123")
	if len(cookies) == 0 {
		t.Fatal("expected session cookie after login")
	}

	w := doJSON(t, r, http.MethodGet, "/api/rooms", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected authorized request to succeed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "alice", "secret123", false)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginReportsAdminFlag(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "root", "rootpass", true)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "root",
		"password": "rootpass",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["is_admin"] != true {
		t.Fatalf("expected is_admin true, got %v", body["is_admin"])
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	w := doJSON(t, r, http.MethodGet, "/api/rooms", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "alice", "secret123", false)
	cookies := login(t, r, "alice", "secret123")

	w := doJSON(t, r, http.MethodPost, "/api/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout failed with %d", w.Code)
	}
	// 注销响应会重写会话 Cookie，后续请求必须带新值
	cookies = w.Result().Cookies()

	w = doJSON(t, r, http.MethodGet, "/api/rooms", nil, cookies)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestAdminRequiredRejectsRegularUser(t *testing.T) {
	_, r, cleanup := setupTestAPI(t)
	defer cleanup()

	seedUser(t, "alice", "secret123", false)
	cookies := login(t, r, "alice", "secret123")

	w := doJSON(t, r, http.MethodPost, "/api/rooms", map[string]string{"name": "Morning Club"}, cookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}
