package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/habitroom/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionUserIDKey = "user_id"

type signupPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup 注册账号并创建初始资料
func (a *API) Signup(c *gin.Context) {
	var payload signupPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		respondError(c, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}
	if payload.Password != payload.ConfirmPassword {
		respondError(c, http.StatusBadRequest, "两次输入的密码不一致")
		return
	}

	var existing db.User
	err := a.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		respondError(c, http.StatusBadRequest, "用户名已被占用")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	user := db.User{Username: username, Password: string(hashed)}
	txErr := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := db.Profile{
			UserID:   user.ID,
			Username: username,
			Email:    strings.TrimSpace(payload.Email),
		}
		return tx.Create(&profile).Error
	})
	if txErr != nil {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "username": user.Username})
}

// Login 校验账号密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	isAdmin, _ := a.profiles.IsAdmin(user.ID)
	c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "username": user.Username, "is_admin": isAdmin})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// AuthRequired 校验会话中的用户身份
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(sessionUserIDKey)
		if userID == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 在 AuthRequired 之后使用，校验管理员标记
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		isAdmin, err := a.profiles.IsAdmin(userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "权限校验失败")
			c.Abort()
			return
		}
		if !isAdmin {
			respondError(c, http.StatusForbidden, "仅限管理员操作")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID 从会话中取出当前用户 ID，未登录时返回 0
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	value := session.Get(sessionUserIDKey)
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}
