package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string `env:"LISTEN_ADDR"`
	Port              string `env:"PORT" envDefault:"8080"`
	DatabasePath      string `env:"DATABASE_PATH" envDefault:"habitlog.db"`
	SessionSecret     string `env:"SESSION_SECRET" envDefault:"habitlog-dev-secret"`
	GinMode           string `env:"GIN_MODE" envDefault:"release"`
	LogDir            string `env:"LOG_DIR"`
	LogDebug          bool   `env:"LOG_DEBUG" envDefault:"false"`
	DashboardWindow   int    `env:"DASHBOARD_WINDOW" envDefault:"7"`
	SuperRootUserName string `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string `env:"SUPER_ROOT_PASSWORD"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "habitlog.db"
	}

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		cfg.SessionSecret = "habitlog-dev-secret"
	}

	if cfg.DashboardWindow <= 0 {
		cfg.DashboardWindow = 7
	}

	cfg.SuperRootUserName = strings.TrimSpace(cfg.SuperRootUserName)
	cfg.SuperRootPassword = strings.TrimSpace(cfg.SuperRootPassword)

	return cfg, nil
}
