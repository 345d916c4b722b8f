package db

import "gorm.io/gorm"

// Profile 保存用户的展示资料，与 User 一一对应
// 账号注册时仅写入 UserID/Username，其余字段由用户在资料页补全
// IsAdmin 控制后台入口与房间管理权限
// AvatarURL 指向上传后的缩略图
type Profile struct {
	gorm.Model
	UserID          uint   `gorm:"uniqueIndex;not null"`
	Username        string `gorm:"size:80;not null"`
	Email           string `gorm:"size:255"`
	PhoneNumber     string `gorm:"size:40"`
	State           string `gorm:"size:80"`
	District        string `gorm:"size:80"`
	CollegeName     string `gorm:"size:255"`
	Education       string `gorm:"size:255"`
	Degree          string `gorm:"size:120"`
	Semester        string `gorm:"size:40"`
	YearOfPassing   int
	CurrentCGPA     float64
	Accommodation   string `gorm:"size:40"`
	Placement       string `gorm:"size:40"`
	StudyTimePerDay string `gorm:"size:80"`
	Hobbies         string
	Interest        string
	Certifications  string
	OtherSkills     string
	LinkedinID      string `gorm:"size:255"`
	AvatarURL       string `gorm:"size:255"`
	IsAdmin         bool
}

// TableName 返回自定义表名，与原有数据保持一致
func (Profile) TableName() string {
	return "profiles"
}
