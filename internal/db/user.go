package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了登录账号模型
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureAdminUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，
// 则创建一个 bcrypt 哈希的管理员账号及其 Profile。
func EnsureAdminUser(username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := User{Username: trimmedUser, Password: string(hashed)}
		if err := DB.Create(&user).Error; err != nil {
			return err
		}

		return DB.Create(&Profile{UserID: user.ID, Username: trimmedUser, IsAdmin: true}).Error
	}

	// 账号已存在时仅保证其管理员标记
	return DB.Model(&Profile{}).Where("user_id = ?", existing.ID).Update("is_admin", true).Error
}
