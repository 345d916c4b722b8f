package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitroom/internal/db"
	"github.com/habitroom/internal/service"
	"golang.org/x/image/draw"
)

// 头像统一缩放到该边长以内
const avatarMaxSize = 256

type profilePayload struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	PhoneNumber     string  `json:"phone_number"`
	State           string  `json:"state"`
	District        string  `json:"district"`
	CollegeName     string  `json:"college_name"`
	Education       string  `json:"education"`
	Degree          string  `json:"degree"`
	Semester        string  `json:"semester"`
	YearOfPassing   int     `json:"year_of_passing"`
	CurrentCGPA     float64 `json:"current_cgpa"`
	Accommodation   string  `json:"accommodation"`
	Placement       string  `json:"placement"`
	StudyTimePerDay string  `json:"study_time_per_day"`
	Hobbies         string  `json:"hobbies"`
	Interest        string  `json:"interest"`
	Certifications  string  `json:"certifications"`
	OtherSkills     string  `json:"other_skills"`
	LinkedinID      string  `json:"linkedin_id"`
}

// GetProfile 返回当前用户资料，未填写时返回默认资料
func (a *API) GetProfile(c *gin.Context) {
	profile, err := a.profiles.GetByUserID(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取资料失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profileToPayload(*profile)})
}

// UpdateProfile 创建或更新当前用户资料
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profilePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	profile, err := a.profiles.Upsert(currentUserID(c), service.ProfileInput{
		Username:        payload.Username,
		Email:           payload.Email,
		PhoneNumber:     payload.PhoneNumber,
		State:           payload.State,
		District:        payload.District,
		CollegeName:     payload.CollegeName,
		Education:       payload.Education,
		Degree:          payload.Degree,
		Semester:        payload.Semester,
		YearOfPassing:   payload.YearOfPassing,
		CurrentCGPA:     payload.CurrentCGPA,
		Accommodation:   payload.Accommodation,
		Placement:       payload.Placement,
		StudyTimePerDay: payload.StudyTimePerDay,
		Hobbies:         payload.Hobbies,
		Interest:        payload.Interest,
		Certifications:  payload.Certifications,
		OtherSkills:     payload.OtherSkills,
		LinkedinID:      payload.LinkedinID,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "保存资料失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profileToPayload(*profile)})
}

// UploadAvatar 处理头像上传：解码、等比缩放后存为 PNG
func (a *API) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取图片失败")
		return
	}
	defer src.Close()

	decoded, _, err := image.Decode(src)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无法解析图片内容")
		return
	}

	thumbnail := scaleToFit(decoded, avatarMaxSize)

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	filename := fmt.Sprintf("avatar-%s.png", uuid.New().String())
	out, err := os.Create(filepath.Join(a.uploadDir, filename))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}
	defer out.Close()

	if err := png.Encode(out, thumbnail); err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), filename)
	if err := a.profiles.SetAvatar(currentUserID(c), url); err != nil {
		respondError(c, http.StatusInternalServerError, "更新头像失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// scaleToFit 等比缩放图片，使最长边不超过 limit；原图更小时原样返回
func scaleToFit(src image.Image, limit int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= limit && height <= limit {
		return src
	}

	if width >= height {
		height = height * limit / width
		width = limit
	} else {
		width = width * limit / height
		height = limit
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func profileToPayload(profile db.Profile) gin.H {
	return gin.H{
		"user_id":            profile.UserID,
		"username":           profile.Username,
		"email":              profile.Email,
		"phone_number":       profile.PhoneNumber,
		"state":              profile.State,
		"district":           profile.District,
		"college_name":       profile.CollegeName,
		"education":          profile.Education,
		"degree":             profile.Degree,
		"semester":           profile.Semester,
		"year_of_passing":    profile.YearOfPassing,
		"current_cgpa":       profile.CurrentCGPA,
		"accommodation":      profile.Accommodation,
		"placement":          profile.Placement,
		"study_time_per_day": profile.StudyTimePerDay,
		"hobbies":            profile.Hobbies,
		"interest":           profile.Interest,
		"certifications":     profile.Certifications,
		"other_skills":       profile.OtherSkills,
		"linkedin_id":        profile.LinkedinID,
		"avatar_url":         profile.AvatarURL,
		"is_admin":           profile.IsAdmin,
	}
}
