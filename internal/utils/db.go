// 包 utils：外部连接工具（Postgres、Redis、开发用 TLS 证书），统一环境变量读取
package utils

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// PostgresEnv：PG_* 环境变量对应的连接参数
type PostgresEnv struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

// PostgresEnvFromOS：读取 PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE/PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS
func PostgresEnvFromOS() PostgresEnv {
	return PostgresEnv{
		Host:     envOr("PG_HOST", "localhost"),
		Port:     envOr("PG_PORT", "5432"),
		User:     envOr("PG_USER", "postgres"),
		Password: os.Getenv("PG_PASSWORD"),
		DB:       envOr("PG_DB", "haoshiji"),
		SSLMode:  envOr("PG_SSLMODE", "disable"),
		MaxOpen:  envIntOr("PG_MAX_OPEN_CONNS", 10),
		MaxIdle:  envIntOr("PG_MAX_IDLE_CONNS", 5),
	}
}

// DSN：postgres:// 形式的连接串；口令做 URL 转义
func (e PostgresEnv) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     e.Host + ":" + e.Port,
		Path:     "/" + e.DB,
		RawQuery: "sslmode=" + url.QueryEscape(e.SSLMode),
	}
	if e.Password != "" {
		u.User = url.UserPassword(e.User, e.Password)
	} else {
		u.User = url.User(e.User)
	}
	return u.String()
}

// OpenPostgres：打开连接池并在超时内 Ping 一次
func OpenPostgres(ctx context.Context, e PostgresEnv) (*sql.DB, error) {
	db, err := sql.Open("postgres", e.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(e.MaxOpen)
	db.SetMaxIdleConns(e.MaxIdle)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping %s:%s/%s: %w", e.Host, e.Port, e.DB, err)
	}
	return db, nil
}

// OpenPostgresFromEnv：PostgresEnvFromOS + OpenPostgres
func OpenPostgresFromEnv(ctx context.Context) (*sql.DB, error) {
	return OpenPostgres(ctx, PostgresEnvFromOS())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
