package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/db"
	"github.com/habitroom/internal/realtime"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestAPI(t *testing.T) (*API, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Profile{}, &db.Room{}, &db.RoomMember{}, &db.Habit{}, &db.HabitLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	api := NewAPI(gdb, realtime.NewHub(), t.TempDir(), "/static/uploads", nil)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("habitroom_session", store))

	r.POST("/api/signup", api.Signup)
	r.POST("/api/login", api.Login)
	r.POST("/api/logout", api.Logout)

	auth := r.Group("/api")
	auth.Use(AuthRequired())
	{
		auth.GET("/rooms", api.ListRooms)
		auth.GET("/rooms/:id", api.GetRoom)
		auth.POST("/rooms/:id/join", api.JoinRoom)
		auth.POST("/rooms/join", api.JoinRoomByCode)
		auth.POST("/rooms/:id/leave", api.LeaveRoom)
		auth.POST("/rooms/:id/habits", api.CreateHabit)
		auth.DELETE("/habits/:id", api.DeleteHabit)
		auth.POST("/habits/:id/logs/today", api.MarkToday)
		auth.PUT("/habits/:id/logs/:date", api.UpsertLog)
		auth.DELETE("/habits/:id/logs/:date", api.DeleteLog)
		auth.GET("/profile", api.GetProfile)
		auth.PUT("/profile", api.UpdateProfile)
		auth.POST("/profile/avatar", api.UploadAvatar)

		admin := auth.Group("")
		admin.Use(api.AdminRequired())
		{
			admin.POST("/rooms", api.CreateRoom)
			admin.DELETE("/rooms/:id", api.DeleteRoom)
			admin.GET("/admin/profiles", api.ListProfiles)
			admin.POST("/admin/backfill", api.RunBackfill)
		}
	}

	ws := r.Group("/ws")
	ws.Use(AuthRequired())
	ws.GET("/rooms/:id", api.SubscribeRoom)

	cleanup := func() {
		api.hub.Stop()
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return api, r, cleanup
}

func seedUser(t *testing.T, username, password string, isAdmin bool) db.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Username: username, Password: string(hashed)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	profile := db.Profile{UserID: user.ID, Username: username, IsAdmin: isAdmin}
	if err := db.DB.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return user
}

// login 通过登录接口取回会话 Cookie
func login(t *testing.T, r *gin.Engine, username, password string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var parsed map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return parsed
}
