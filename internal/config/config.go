package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string   `yaml:"listen_addr"`
	Port             string   `yaml:"port"`
	DatabasePath     string   `yaml:"database_path"`
	SessionSecret    string   `yaml:"session_secret"`
	GinMode          string   `yaml:"gin_mode"`
	UploadDir        string   `yaml:"upload_dir"`
	UploadURLPath    string   `yaml:"upload_url_path"`
	AdminUserName    string   `yaml:"admin_user_name"`
	AdminPassword    string   `yaml:"admin_password"`
	BackfillCron     string   `yaml:"backfill_cron"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若 CONFIG_PATH 指向 YAML 文件，其中的非空字段优先于环境变量。
func Load() (AppConfig, error) {
	cfg := fromEnv()

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var overlay AppConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	merge(&cfg, overlay)
	return cfg, nil
}

func fromEnv() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "habitroom.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "habitroom-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  databasePath,
		SessionSecret: sessionSecret,
		GinMode:       ginMode,
		UploadDir:     uploadDir,
		UploadURLPath: uploadURLPath,
		AdminUserName: strings.TrimSpace(os.Getenv("ADMIN_USER_NAME")),
		AdminPassword: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		BackfillCron:  strings.TrimSpace(os.Getenv("BACKFILL_CRON")),
	}
}

func merge(dst *AppConfig, overlay AppConfig) {
	if overlay.ListenAddr != "" {
		dst.ListenAddr = overlay.ListenAddr
	}
	if overlay.Port != "" {
		dst.Port = overlay.Port
	}
	if overlay.DatabasePath != "" {
		dst.DatabasePath = overlay.DatabasePath
	}
	if overlay.SessionSecret != "" {
		dst.SessionSecret = overlay.SessionSecret
	}
	if overlay.GinMode != "" {
		dst.GinMode = overlay.GinMode
	}
	if overlay.UploadDir != "" {
		dst.UploadDir = overlay.UploadDir
	}
	if overlay.UploadURLPath != "" {
		dst.UploadURLPath = overlay.UploadURLPath
	}
	if overlay.AdminUserName != "" {
		dst.AdminUserName = overlay.AdminUserName
	}
	if overlay.AdminPassword != "" {
		dst.AdminPassword = overlay.AdminPassword
	}
	if overlay.BackfillCron != "" {
		dst.BackfillCron = overlay.BackfillCron
	}
	if len(overlay.AllowedWSOrigins) > 0 {
		dst.AllowedWSOrigins = overlay.AllowedWSOrigins
	}
}
