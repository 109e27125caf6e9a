// 程序入口：仅负责读取配置、初始化依赖并启动搜索服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"haoshiji/internal/api"
	"haoshiji/internal/cache"
	"haoshiji/internal/config"
	"haoshiji/internal/logger"
	"haoshiji/internal/middleware"
	"haoshiji/internal/migrate"
	"haoshiji/internal/pipeline"
	"haoshiji/internal/places"
	"haoshiji/internal/refresh"
	"haoshiji/internal/safety"
	"haoshiji/internal/store"
	"haoshiji/internal/utils"
	"haoshiji/internal/version"
)

func main() {
	cfg, err := config.Load()
	l := logger.Setup()
	l.Debug("log_init_ok")
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 名册与关键词目录启动时加载；之后经 refresh.Holder 原子切换
	load := func(context.Context) (*safety.Analyzer, error) {
		return pipeline.BuildAnalyzer(cfg.Paths.KeywordFile, cfg.Paths.Certified, cfg.Paths.Inspection)
	}
	an, err := load(ctx)
	if err != nil {
		l.Error("registry_error", "err", err)
		os.Exit(1)
	}
	l.Info("registries_ready", "certified", an.Certified.Len(), "inspection_failed", an.Inspection.Len(), "keywords", an.Catalog.Len(), "catalog_version", an.Catalog.Version())
	holder := refresh.NewHolder(an)
	if cfg.Refresh.Enable {
		holder.StartWeekly(ctx, load, cfg.RefreshLocation(), cfg.Refresh.Hour)
		l.Info("registry_refresh_enabled", "hour", cfg.Refresh.Hour, "tz", cfg.Refresh.Timezone)
	}

	deps := api.Deps{
		Analyzer: an,
		Holder:   holder,
		Reload:   load,
		AdminTok: cfg.Server.AdminToken,
		MapsKey:  cfg.Places.APIKey,
		Workers:  cfg.Workers,
		Search: places.CollectOptions{
			SearchOptions: places.SearchOptions{MinRating: cfg.Places.MinRating, MaxResults: api.DefaultSearchResults},
			MaxReviews:    cfg.Places.MaxReviews,
		},
	}
	if cfg.Places.APIKey != "" {
		deps.Places = places.New(cfg.Places.APIKey, cfg.Places.BaseURL, cfg.Places.Language, cfg.PlacesTimeout())
	} else {
		l.Warn("places_disabled", "reason", "GOOGLE_PLACES_API_KEY not set")
	}

	if cfg.Postgres.Enable {
		db, err := utils.OpenPostgresFromEnv(ctx)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		deps.Store = store.AttachDB(db)
		l.Info("db_open_ok")
	}
	if cfg.Redis.Enable {
		rc, err := utils.OpenRedisFromEnv(ctx)
		if err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			defer rc.Close()
			deps.Cache = cache.New(rc, cfg.Redis.Prefix, cfg.RedisTTL())
			l.Info("redis_ping_ok", "ttl", cfg.RedisTTL().String())
		}
	} else {
		l.Info("redis_disabled")
	}

	apiBase := "/" + strings.Trim(cfg.Server.APIBase, "/")
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(logger.AccessMiddleware(l))
	r.Use(middleware.RateLimit(middleware.NewTokenBucket(cfg.Server.RateLimitQPS)))
	r.Mount(apiBase, api.BuildRoutes(deps))
	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	r.Get("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'\n"))
	})
	r.Handle("/*", http.FileServer(http.Dir(cfg.Server.UIDir)))

	s := &http.Server{Addr: cfg.Server.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if cfg.Server.TLSEnable {
		if err := utils.EnsureDevCert(cfg.Server.TLSCertPath, cfg.Server.TLSKeyPath, "haoshiji.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Server.Addr, "cert", cfg.Server.TLSCertPath, "version", version.String())
		err = s.ListenAndServeTLS(cfg.Server.TLSCertPath, cfg.Server.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Server.Addr, "ui", cfg.Server.UIDir, "version", version.String())
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}
