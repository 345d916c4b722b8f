package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProfiles 返回全部用户资料，按注册时间降序，仅限管理员
func (a *API) ListProfiles(c *gin.Context) {
	profiles, err := a.profiles.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取用户列表失败")
		return
	}

	items := make([]gin.H, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, profileToPayload(profile))
	}

	c.JSON(http.StatusOK, gin.H{"profiles": items})
}

// RunBackfill 手工触发补录：把截至昨天的缺失日期固化为未完成
func (a *API) RunBackfill(c *gin.Context) {
	written, err := a.backfill.SyncThrough(todayLocal())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "补录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"written": written})
}
