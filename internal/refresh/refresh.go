// 包 refresh：官方名册的热重载，运行在服务进程内的后台协程
// 背景：名册文件由外部定期更新；重载后以原子指针切换判定器，读路径不加锁、不中断服务
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"haoshiji/internal/logger"
	"haoshiji/internal/safety"
)

// Loader：构建新的判定器（读取名册与关键词目录）
type Loader func(ctx context.Context) (*safety.Analyzer, error)

// Holder：当前判定器及其内容摘要
// 约束：Set 传入 nil 时忽略，保证 Load 在首次 Set 之后始终非空；摘要与判定器同时切换
type Holder struct {
	v atomic.Pointer[snapshot]
}

type snapshot struct {
	a       *safety.Analyzer
	version string
}

func NewHolder(a *safety.Analyzer) *Holder {
	h := &Holder{}
	h.Set(a)
	return h
}

func (h *Holder) Load() *safety.Analyzer {
	if s := h.v.Load(); s != nil {
		return s.a
	}
	return nil
}

// Version：当前判定器的内容摘要（用于区分缓存结果）；未设置时为空
func (h *Holder) Version() string {
	if s := h.v.Load(); s != nil {
		return s.version
	}
	return ""
}

func (h *Holder) Set(a *safety.Analyzer) {
	if a != nil {
		h.v.Store(&snapshot{a: a, version: a.Fingerprint()})
	}
}

// Reload：重新加载并切换；失败时保留旧判定器
func (h *Holder) Reload(ctx context.Context, load Loader) error {
	a, err := load(ctx)
	if err != nil {
		logger.L().Error("registry_reload_error", "err", err)
		return err
	}
	h.Set(a)
	logger.L().Info("registry_reloaded", "certified", a.Certified.Len(), "inspection_failed", a.Inspection.Len(), "version", h.Version())
	return nil
}

// NextWeekly：now 之后第一个 weekday 的 hour 整点（严格晚于 now）
func NextWeekly(now time.Time, loc *time.Location, weekday time.Weekday, hour int) time.Time {
	now = now.In(loc)
	for i := 0; i <= 7; i++ {
		d := now.AddDate(0, 0, i)
		if d.Weekday() != weekday {
			continue
		}
		t := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
		if t.After(now) {
			return t
		}
	}
	d := now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
}

// StartWeekly：每周一 hour 点（loc 时区）重载一次，直到 ctx 取消
// 约束：重载失败只记录日志，继续调度
func (h *Holder) StartWeekly(ctx context.Context, load Loader, loc *time.Location, hour int) {
	go func() {
		for {
			next := NextWeekly(time.Now(), loc, time.Monday, hour)
			logger.L().Debug("registry_reload_scheduled", "next", next)
			t := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			_ = h.Reload(ctx, load)
		}
	}()
}
