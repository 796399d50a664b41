package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config 保存进程级配置（仅使用配置文件或内置默认值）。
// 字段提供开发友好的默认值；生产环境请在 config.yaml 中覆盖。
// 目录服务（catalogd）与用户服务（userd）读取同一份配置文件，各自取所需端口。
type Config struct {
	Env     string
	Catalog ServiceConfig
	User    ServiceConfig
	MySQL   MySQLConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Limits  LimitConfig
	Session SessionConfig
}

// ServiceConfig 描述单个 HTTP 服务的监听地址。
type ServiceConfig struct {
	HTTPAddr string
}

type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Params   string
}

func (m MySQLConfig) DSN() string {
	port := m.Port
	if port == 0 {
		port = 3306
	}
	host := m.Host
	if host == "" {
		host = "127.0.0.1"
	}
	db := m.DBName
	if db == "" {
		db = "bookstore"
	}
	params := m.Params
	if params == "" {
		params = "parseTime=true&loc=Local&charset=utf8mb4,utf8"
	}
	// 注意：Password 可能为空（本地无密码开发），生产强烈建议设置强密码
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", m.User, m.Password, host, port, db, params)
}

func (m MySQLConfig) DSNMasked() string {
	masked := m
	if masked.Password != "" {
		masked.Password = "******"
	}
	return masked.DSN()
}

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

type CORSConfig struct {
	// 允许的跨域来源；默认 ["*"]（全部放行，与前端部署解耦）
	AllowedOrigins []string
}

type LimitConfig struct {
	// 登录接口每窗口允许的尝试次数；0 表示不限流
	LoginPerMinute int
	// 时间窗口（默认 1m）
	Window time.Duration
}

type SessionConfig struct {
	// 登录成功后签发的不透明令牌在 Redis 中的存活时间
	TokenTTL time.Duration
}

// Load 生成配置：先使用内置默认值，再用同目录的配置文件（config.yaml/yml/json）覆盖。
// 默认：MySQL 127.0.0.1:3306 用户 root 无密码，库名 bookstore；Redis 127.0.0.1:6379。
func Load() Config {
	// 1) 默认值（本地开发可直接运行）
	cfg := Config{
		Env:     "dev",
		Catalog: ServiceConfig{HTTPAddr: ":8080"},
		User:    ServiceConfig{HTTPAddr: ":8081"},
		MySQL:   MySQLConfig{Host: "127.0.0.1", Port: 3306, User: "root", Password: "", DBName: "bookstore", Params: "parseTime=true&loc=Local&charset=utf8mb4,utf8"},
		Redis:   RedisConfig{Addr: "127.0.0.1:6379", DB: 0, Password: ""},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Limits:  LimitConfig{LoginPerMinute: 10, Window: time.Minute},
		Session: SessionConfig{TokenTTL: 24 * time.Hour},
	}

	// 2) 配置文件覆盖（若存在）
	if path := FirstExisting("config.yaml", "config.yml", "config.json"); path != "" {
		_ = loadFromFile(path, &cfg)
	}
	return cfg
}

// 配置文件格式：YAML 或 JSON。仅非零值会覆盖现有字段。
func loadFromFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var fm fileModel
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else if ext == ".json" || ext == "" {
		if err := json.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else {
		return errors.New("unsupported config file format")
	}
	fm.apply(cfg)
	return nil
}

// --- 配置文件模型与合并逻辑 ---

type fileModel struct {
	Env     string       `yaml:"env" json:"env"`
	Catalog *fileService `yaml:"catalog" json:"catalog"`
	User    *fileService `yaml:"user" json:"user"`
	MySQL   *fileMySQL   `yaml:"mysql" json:"mysql"`
	Redis   *fileRedis   `yaml:"redis" json:"redis"`
	CORS    *fileCORS    `yaml:"cors" json:"cors"`
	Limits  *fileLimits  `yaml:"limits" json:"limits"`
	Session *fileSession `yaml:"session" json:"session"`
}

type fileService struct {
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`
}
type fileMySQL struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	DBName   string `yaml:"db" json:"db"`
	Params   string `yaml:"params" json:"params"`
}
type fileRedis struct {
	Addr     string `yaml:"addr" json:"addr"`
	DB       int    `yaml:"db" json:"db"`
	Password string `yaml:"password" json:"password"`
}
type fileCORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}
type fileLimits struct {
	LoginPerMinute int    `yaml:"login_per_minute" json:"login_per_minute"`
	Window         string `yaml:"window" json:"window"`
}
type fileSession struct {
	TokenTTL string `yaml:"token_ttl" json:"token_ttl"`
}

func (fm *fileModel) apply(cfg *Config) {
	if fm.Env != "" {
		cfg.Env = fm.Env
	}
	if fm.Catalog != nil && fm.Catalog.HTTPAddr != "" {
		cfg.Catalog.HTTPAddr = fm.Catalog.HTTPAddr
	}
	if fm.User != nil && fm.User.HTTPAddr != "" {
		cfg.User.HTTPAddr = fm.User.HTTPAddr
	}
	if fm.MySQL != nil {
		if fm.MySQL.Host != "" {
			cfg.MySQL.Host = fm.MySQL.Host
		}
		if fm.MySQL.Port != 0 {
			cfg.MySQL.Port = fm.MySQL.Port
		}
		if fm.MySQL.User != "" {
			cfg.MySQL.User = fm.MySQL.User
		}
		if fm.MySQL.Password != "" {
			cfg.MySQL.Password = fm.MySQL.Password
		}
		if fm.MySQL.DBName != "" {
			cfg.MySQL.DBName = fm.MySQL.DBName
		}
		if fm.MySQL.Params != "" {
			cfg.MySQL.Params = fm.MySQL.Params
		}
	}
	if fm.Redis != nil {
		if fm.Redis.Addr != "" {
			cfg.Redis.Addr = fm.Redis.Addr
		}
		if fm.Redis.DB != 0 {
			cfg.Redis.DB = fm.Redis.DB
		}
		if fm.Redis.Password != "" {
			cfg.Redis.Password = fm.Redis.Password
		}
	}
	if fm.CORS != nil && len(fm.CORS.AllowedOrigins) > 0 {
		cfg.CORS.AllowedOrigins = fm.CORS.AllowedOrigins
	}
	if fm.Limits != nil {
		if fm.Limits.LoginPerMinute != 0 {
			cfg.Limits.LoginPerMinute = fm.Limits.LoginPerMinute
		}
		if fm.Limits.Window != "" {
			if d, err := time.ParseDuration(fm.Limits.Window); err == nil {
				cfg.Limits.Window = d
			}
		}
	}
	if fm.Session != nil && fm.Session.TokenTTL != "" {
		if d, err := time.ParseDuration(fm.Session.TokenTTL); err == nil {
			cfg.Session.TokenTTL = d
		}
	}
}

// FirstExisting 按顺序返回第一个存在的文件路径；若都不存在则返回空字符串。
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
