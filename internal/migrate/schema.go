package migrate

import (
	"context"
	"database/sql"

	"haoshiji/internal/logger"
)

// 背景：首次运行自动创建批次运行、餐厅判定与查询统计表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；判定明细随运行级联删除
var statements = []string{
	`CREATE TABLE IF NOT EXISTS _safety_runs (
		id UUID PRIMARY KEY,
		source TEXT NOT NULL,
		query TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		restaurants INT NOT NULL,
		caution INT NOT NULL,
		certified INT NOT NULL,
		inspection_failed INT NOT NULL,
		catalog_version TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_safety_runs_created ON _safety_runs(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS _safety_verdicts (
		run_id UUID NOT NULL REFERENCES _safety_runs(id) ON DELETE CASCADE,
		position INT NOT NULL,
		name TEXT NOT NULL,
		place_id TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_safety_verdicts_name ON _safety_verdicts(name)`,
	`CREATE TABLE IF NOT EXISTS _safety_stats_daily (
		day DATE NOT NULL,
		endpoint TEXT NOT NULL,
		queries BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (day, endpoint)
	)`,
}

// EnsureSchema：按顺序执行建表语句
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "statements", len(statements))
	return nil
}
