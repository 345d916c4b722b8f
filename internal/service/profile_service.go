package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitroom/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService 负责用户资料的读写
// 读取时缺失不报错：新用户返回只含 UserID 的默认资料

type ProfileService struct {
	db *gorm.DB
}

// ProfileInput 描述资料页可编辑的字段，管理员标记不在其中
type ProfileInput struct {
	Username        string
	Email           string
	PhoneNumber     string
	State           string
	District        string
	CollegeName     string
	Education       string
	Degree          string
	Semester        string
	YearOfPassing   int
	CurrentCGPA     float64
	Accommodation   string
	Placement       string
	StudyTimePerDay string
	Hobbies         string
	Interest        string
	Certifications  string
	OtherSkills     string
	LinkedinID      string
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// GetByUserID 返回用户资料；尚未填写时返回默认资料而非错误
func (s *ProfileService) GetByUserID(userID uint) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &db.Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Upsert 创建或更新用户资料，IsAdmin 与 AvatarURL 不受影响
func (s *ProfileService) Upsert(userID uint, input ProfileInput) (*db.Profile, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("profile username is required")
	}

	record := db.Profile{
		UserID:          userID,
		Username:        strings.TrimSpace(input.Username),
		Email:           strings.TrimSpace(input.Email),
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		State:           strings.TrimSpace(input.State),
		District:        strings.TrimSpace(input.District),
		CollegeName:     strings.TrimSpace(input.CollegeName),
		Education:       strings.TrimSpace(input.Education),
		Degree:          strings.TrimSpace(input.Degree),
		Semester:        strings.TrimSpace(input.Semester),
		YearOfPassing:   input.YearOfPassing,
		CurrentCGPA:     input.CurrentCGPA,
		Accommodation:   strings.TrimSpace(input.Accommodation),
		Placement:       strings.TrimSpace(input.Placement),
		StudyTimePerDay: strings.TrimSpace(input.StudyTimePerDay),
		Hobbies:         strings.TrimSpace(input.Hobbies),
		Interest:        strings.TrimSpace(input.Interest),
		Certifications:  strings.TrimSpace(input.Certifications),
		OtherSkills:     strings.TrimSpace(input.OtherSkills),
		LinkedinID:      strings.TrimSpace(input.LinkedinID),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "email", "phone_number", "state", "district",
			"college_name", "education", "degree", "semester", "year_of_passing",
			"current_cgpa", "accommodation", "placement", "study_time_per_day",
			"hobbies", "interest", "certifications", "other_skills", "linkedin_id",
			"updated_at",
		}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	return s.GetByUserID(userID)
}

// SetAvatar 更新用户头像地址
func (s *ProfileService) SetAvatar(userID uint, url string) error {
	if err := s.db.Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update("avatar_url", url).Error; err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	return nil
}

// ListAll 返回全部资料，按创建时间降序，供后台查看
func (s *ProfileService) ListAll() ([]db.Profile, error) {
	var profiles []db.Profile
	if err := s.db.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// IsAdmin 判断用户是否具有管理员标记
func (s *ProfileService) IsAdmin(userID uint) (bool, error) {
	profile, err := s.GetByUserID(userID)
	if err != nil {
		return false, err
	}
	return profile.IsAdmin, nil
}

// UsernamesByUserIDs 批量取回用户名，用于他人习惯的分组展示
func (s *ProfileService) UsernamesByUserIDs(userIDs []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	var profiles []db.Profile
	if err := s.db.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles by user ids: %w", err)
	}
	for _, p := range profiles {
		names[p.UserID] = p.Username
	}
	return names, nil
}
