package db

import "gorm.io/gorm"

// Room 定义了共享房间模型
// Description 为 Markdown 文本，渲染时经过消毒
// CreatorName 冗余保存创建者用户名，避免列表页联表
// JoinCode 为随机邀请码，支持凭码加入
type Room struct {
	gorm.Model
	Name        string `gorm:"size:120;not null"`
	Description string
	CreatedBy   uint   `gorm:"index"`
	CreatorName string `gorm:"size:80"`
	JoinCode    string `gorm:"size:64;uniqueIndex"`
}

// RoomMember 记录房间成员关系
// RoomID + UserID 唯一，重复加入幂等
type RoomMember struct {
	gorm.Model
	RoomID uint `gorm:"index:idx_room_member_unique,unique"`
	Room   Room `gorm:"constraint:OnDelete:CASCADE"`
	UserID uint `gorm:"index;index:idx_room_member_unique,unique"`
}

// TableName 返回自定义表名
func (RoomMember) TableName() string {
	return "room_members"
}
