// 包 config：集中读取运行配置。优先级：环境变量 > 配置文件（YAML）> 内置默认值
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config：批处理、抓取与搜索服务共用的配置
type Config struct {
	Paths struct {
		Input       string `yaml:"input"`
		Output      string `yaml:"output"`
		Certified   string `yaml:"certified"`
		Inspection  string `yaml:"inspection"`
		KeywordFile string `yaml:"keywords"`
	} `yaml:"paths"`
	Workers int `yaml:"workers"`

	Places struct {
		APIKey     string  `yaml:"api_key"`
		BaseURL    string  `yaml:"base_url"`
		Language   string  `yaml:"language"`
		MinRating  float64 `yaml:"min_rating"`
		MaxResults int     `yaml:"max_results"`
		MaxReviews int     `yaml:"max_reviews"`
		TimeoutSec int     `yaml:"timeout_sec"`
	} `yaml:"places"`

	Server struct {
		Addr         string `yaml:"addr"`
		APIBase      string `yaml:"api_base"`
		UIDir        string `yaml:"ui_dir"`
		RateLimitQPS int    `yaml:"rate_limit_qps"`
		TLSEnable    bool   `yaml:"tls_enable"`
		TLSCertPath  string `yaml:"tls_cert_path"`
		TLSKeyPath   string `yaml:"tls_key_path"`
		AdminToken   string `yaml:"admin_token"`
	} `yaml:"server"`

	Refresh struct {
		Enable   bool   `yaml:"enable"`
		Hour     int    `yaml:"hour"`
		Timezone string `yaml:"timezone"`
	} `yaml:"refresh"`

	Redis struct {
		Enable bool   `yaml:"enable"`
		TTLSec int    `yaml:"ttl_sec"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	Postgres struct {
		Enable bool `yaml:"enable"`
	} `yaml:"postgres"`
}

// Defaults：返回内置默认值（路径与原始数据目录结构保持一致）
func Defaults() *Config {
	var c Config
	c.Paths.Input = filepath.Join("data", "raw", "places_with_reviews.json")
	c.Paths.Output = filepath.Join("data", "processed", "safety_classified.json")
	c.Paths.Certified = filepath.Join("data", "external", "certified_restaurants.csv")
	c.Paths.Inspection = filepath.Join("data", "external", "food_business_data.json")
	c.Workers = runtime.NumCPU()
	c.Places.Language = "zh-TW"
	c.Places.MaxResults = 20
	c.Places.MaxReviews = 5
	c.Places.TimeoutSec = 10
	c.Server.Addr = ":5000"
	c.Server.APIBase = "/api"
	c.Server.UIDir = "static"
	c.Server.TLSCertPath = filepath.Join("data", "certs", "server.crt")
	c.Server.TLSKeyPath = filepath.Join("data", "certs", "server.key")
	c.Refresh.Hour = 3
	c.Refresh.Timezone = "Asia/Taipei"
	c.Redis.TTLSec = 600
	c.Redis.Prefix = "haoshiji:"
	return &c
}

// Load：加载 .env 与可选 YAML 文件，再以环境变量覆盖
// 约束：CONFIG_FILE 未设置时尝试 config.yaml，文件不存在不视为错误；YAML 解析失败返回错误
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	c := Defaults()
	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := c.mergeFile(path); err != nil {
		return nil, err
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Paths.Input = getEnv("INPUT_PATH", c.Paths.Input)
	c.Paths.Output = getEnv("OUTPUT_PATH", c.Paths.Output)
	c.Paths.Certified = getEnv("CERTIFICATION_CSV", c.Paths.Certified)
	c.Paths.Inspection = getEnv("INSPECTION_JSON", c.Paths.Inspection)
	c.Paths.KeywordFile = getEnv("KEYWORDS_FILE", c.Paths.KeywordFile)
	c.Workers = getEnvInt("CLASSIFY_WORKERS", c.Workers)

	c.Places.APIKey = getEnv("GOOGLE_PLACES_API_KEY", c.Places.APIKey)
	c.Places.BaseURL = getEnv("PLACES_BASE_URL", c.Places.BaseURL)
	c.Places.Language = getEnv("PLACES_LANGUAGE", c.Places.Language)
	c.Places.MinRating = getEnvFloat("PLACES_MIN_RATING", c.Places.MinRating)
	c.Places.MaxResults = getEnvInt("PLACES_MAX_RESULTS", c.Places.MaxResults)
	c.Places.MaxReviews = getEnvInt("PLACES_MAX_REVIEWS", c.Places.MaxReviews)
	c.Places.TimeoutSec = getEnvInt("PLACES_TIMEOUT_SEC", c.Places.TimeoutSec)

	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Server.APIBase = getEnv("API_BASE", c.Server.APIBase)
	c.Server.UIDir = getEnv("UI_DIST", c.Server.UIDir)
	c.Server.RateLimitQPS = getEnvInt("RATE_LIMIT_QPS", c.Server.RateLimitQPS)
	c.Server.TLSEnable = getEnvBool("TLS_ENABLE", c.Server.TLSEnable)
	c.Server.TLSCertPath = getEnv("TLS_CERT_PATH", c.Server.TLSCertPath)
	c.Server.TLSKeyPath = getEnv("TLS_KEY_PATH", c.Server.TLSKeyPath)
	c.Server.AdminToken = getEnv("ADMIN_TOKEN", c.Server.AdminToken)

	c.Refresh.Enable = getEnvBool("REGISTRY_REFRESH", c.Refresh.Enable)
	c.Refresh.Hour = getEnvInt("REGISTRY_REFRESH_HOUR", c.Refresh.Hour)
	c.Refresh.Timezone = getEnv("REGISTRY_REFRESH_TZ", c.Refresh.Timezone)

	c.Redis.Enable = getEnvBool("REDIS_ENABLE", c.Redis.Enable)
	c.Redis.TTLSec = getEnvInt("REDIS_TTL_SEC", c.Redis.TTLSec)
	c.Redis.Prefix = getEnv("REDIS_PREFIX", c.Redis.Prefix)

	c.Postgres.Enable = getEnvBool("PG_ENABLE", c.Postgres.Enable)
}

// PlacesTimeout：Places 请求超时
func (c *Config) PlacesTimeout() time.Duration {
	if c.Places.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Places.TimeoutSec) * time.Second
}

// RedisTTL：搜索结果缓存时长
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLSec <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Redis.TTLSec) * time.Second
}

// RefreshLocation：名册重载所用时区；无法加载时回退为 UTC+8
func (c *Config) RefreshLocation() *time.Location {
	if loc, err := time.LoadLocation(c.Refresh.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*3600)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}
