package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("habitroom_session", store))

	// 上传的头像直接静态托管
	if uploadDir != "" && uploadURLPath != "" {
		r.Static(uploadURLPath, uploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/signup", api.Signup)
		apiGroup.POST("/login", api.Login)
		apiGroup.POST("/logout", api.Logout)

		// 需要认证的路由
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
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

			// 管理员路由
			admin := auth.Group("")
			admin.Use(api.AdminRequired())
			{
				admin.POST("/rooms", api.CreateRoom)
				admin.DELETE("/rooms/:id", api.DeleteRoom)
				admin.GET("/admin/profiles", api.ListProfiles)
				admin.POST("/admin/backfill", api.RunBackfill)
			}
		}
	}

	// 房间维度的实时订阅
	ws := r.Group("/ws")
	ws.Use(handler.AuthRequired())
	{
		ws.GET("/rooms/:id", api.SubscribeRoom)
	}

	return r
}
