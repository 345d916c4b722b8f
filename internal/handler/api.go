package handler

import (
	"github.com/gorilla/websocket"
	"github.com/habitroom/internal/realtime"
	"github.com/habitroom/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	rooms     *service.RoomService
	habits    *service.HabitService
	habitLogs *service.HabitLogService
	profiles  *service.ProfileService
	backfill  *service.BackfillService
	hub       *realtime.Hub
	upgrader  websocket.Upgrader
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
// wsOrigins 为空时沿用 gorilla 的同源校验，非空时只放行名单内的来源。
func NewAPI(db *gorm.DB, hub *realtime.Hub, uploadDir, uploadURL string, wsOrigins []string) *API {
	return &API{
		db:        db,
		rooms:     service.NewRoomService(db),
		habits:    service.NewHabitService(db),
		habitLogs: service.NewHabitLogService(db),
		profiles:  service.NewProfileService(db),
		backfill:  service.NewBackfillService(db),
		hub:       hub,
		upgrader:  newUpgrader(wsOrigins),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Hub exposes the realtime hub, mainly for tests.
func (a *API) Hub() *realtime.Hub {
	return a.hub
}
