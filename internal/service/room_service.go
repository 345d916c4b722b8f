package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/habitroom/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRoomNotFound 在指定房间不存在时返回
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNameRequired 在房间名为空时返回
	ErrRoomNameRequired = errors.New("room name is required")
)

// RoomService 负责房间与成员关系的维护
// 创建/删除由管理员触发，加入对所有用户开放

type RoomService struct {
	db *gorm.DB
}

// RoomInput 定义创建房间时可配置字段
type RoomInput struct {
	Name        string
	Description string
	CreatedBy   uint
	CreatorName string
}

// RoomSummary 是房间列表页的派生条目
type RoomSummary struct {
	Room        db.Room
	MemberCount int64
}

// NewRoomService 构造 RoomService
func NewRoomService(gdb *gorm.DB) *RoomService {
	return &RoomService{db: gdb}
}

// Create 新建房间并将创建者加入为首位成员
func (s *RoomService) Create(input RoomInput) (*db.Room, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrRoomNameRequired
	}

	room := db.Room{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   input.CreatedBy,
		CreatorName: strings.TrimSpace(input.CreatorName),
		JoinCode:    uuid.NewString(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		member := db.RoomMember{RoomID: room.ID, UserID: input.CreatedBy}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("add creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// Get 根据 ID 获取房间
func (s *RoomService) Get(id uint) (*db.Room, error) {
	var room db.Room
	if err := s.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// List 返回全部房间及成员数，按创建时间降序
func (s *RoomService) List() ([]RoomSummary, error) {
	var rooms []db.Room
	if err := s.db.Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		var count int64
		if err := s.db.Model(&db.RoomMember{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count room members: %w", err)
		}
		summaries = append(summaries, RoomSummary{Room: room, MemberCount: count})
	}

	return summaries, nil
}

// Join 将用户加入房间，重复加入幂等
func (s *RoomService) Join(roomID, userID uint) error {
	if _, err := s.Get(roomID); err != nil {
		return err
	}

	member := db.RoomMember{RoomID: roomID, UserID: userID}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&member).Error; err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	return nil
}

// JoinByCode 凭邀请码加入房间，返回加入的房间
func (s *RoomService) JoinByCode(code string, userID uint) (*db.Room, error) {
	var room db.Room
	if err := s.db.Where("join_code = ?", strings.TrimSpace(code)).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room by code: %w", err)
	}

	if err := s.Join(room.ID, userID); err != nil {
		return nil, err
	}
	return &room, nil
}

// Leave 将用户移出房间。
// 物理删除以释放 (room_id, user_id) 唯一索引，保证之后还能重新加入。
func (s *RoomService) Leave(roomID, userID uint) error {
	if err := s.db.Unscoped().Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&db.RoomMember{}).Error; err != nil {
		return fmt.Errorf("leave room: %w", err)
	}
	return nil
}

// IsMember 判断用户是否为房间成员
func (s *RoomService) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&db.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// Delete 删除房间，级联清理成员、习惯与打卡记录
func (s *RoomService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var habitIDs []uint
		if err := tx.Model(&db.Habit{}).Where("room_id = ?", id).Pluck("id", &habitIDs).Error; err != nil {
			return fmt.Errorf("list room habits: %w", err)
		}
		if len(habitIDs) > 0 {
			if err := tx.Where("habit_id IN ?", habitIDs).Delete(&db.HabitLog{}).Error; err != nil {
				return fmt.Errorf("delete habit logs: %w", err)
			}
			if err := tx.Where("room_id = ?", id).Delete(&db.Habit{}).Error; err != nil {
				return fmt.Errorf("delete habits: %w", err)
			}
		}
		if err := tx.Where("room_id = ?", id).Delete(&db.RoomMember{}).Error; err != nil {
			return fmt.Errorf("delete room members: %w", err)
		}
		if err := tx.Delete(&db.Room{}, id).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
}
