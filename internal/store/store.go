// 包 store: PostgreSQL 数据访问层，保存批次运行、餐厅判定与查询统计
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"haoshiji/internal/logger"
	"haoshiji/internal/models"
	"haoshiji/internal/safety"
)

var ErrNoDB = errors.New("store: database not attached")

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB { return s.db }

// Run: 一次分类运行的概要
type Run struct {
	ID               uuid.UUID
	Source           string
	Query            string
	CreatedAt        time.Time
	Restaurants      int
	Caution          int
	Certified        int
	InspectionFailed int
	CatalogVersion   string
}

// Summarize: 由排序后的结果生成运行概要（不含 ID 与时间）
func Summarize(source, query, catalogVersion string, items []safety.Classified) Run {
	r := Run{Source: source, Query: query, Restaurants: len(items), CatalogVersion: catalogVersion}
	for _, c := range items {
		if c.Safety.Level == safety.Caution {
			r.Caution++
		}
		if c.Safety.Certification != nil {
			r.Certified++
		}
		if c.Safety.Inspection != nil {
			r.InspectionFailed++
		}
	}
	return r
}

// 文档注释：保存一次运行及其全部判定
// 背景：运行与明细在同一事务内写入；明细以 JSONB 保存完整输出记录，position 为排序后的位置。
// 返回：新运行的 ID。
func (s *Store) SaveRun(ctx context.Context, run Run, items []safety.Classified) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, ErrNoDB
	}
	run.ID = uuid.New()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT INTO _safety_runs(id, source, query, restaurants, caution, certified, inspection_failed, catalog_version)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Source, run.Query, run.Restaurants, run.Caution, run.Certified, run.InspectionFailed, run.CatalogVersion); err != nil {
		return uuid.Nil, fmt.Errorf("store: insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _safety_verdicts(run_id, position, name, place_id, level, payload) VALUES($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()
	for i, c := range items {
		payload, err := models.MarshalPlain(c)
		if err != nil {
			return uuid.Nil, fmt.Errorf("store: encode %s: %w", c.Restaurant.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, c.Restaurant.Name, c.Restaurant.PlaceID, c.Safety.Level.String(), string(payload)); err != nil {
			return uuid.Nil, fmt.Errorf("store: insert verdict %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	logger.L().Info("run_saved", "run_id", run.ID.String(), "source", run.Source, "restaurants", len(items))
	return run.ID, nil
}

// RecentRuns: 按创建时间倒序返回最近的运行
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDB
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, query, created_at, restaurants, caution, certified, inspection_failed, catalog_version
		FROM _safety_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Query, &r.CreatedAt, &r.Restaurants, &r.Caution, &r.Certified, &r.InspectionFailed, &r.CatalogVersion); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunVerdicts: 按排序位置读取一次运行的判定
func (s *Store) RunVerdicts(ctx context.Context, id uuid.UUID) ([]safety.Classified, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDB
	}
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM _safety_verdicts WHERE run_id=$1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []safety.Classified
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c safety.Classified
		if err := c.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("store: decode verdict: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// 文档注释：保留最近 keep 次运行，删除更早的运行（判定明细级联删除）
// 约束：keep<1 视为 1；dryRun 时只返回将被删除的数量。
func (s *Store) PruneRuns(ctx context.Context, keep int, dryRun bool) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNoDB
	}
	if keep < 1 {
		keep = 1
	}
	const older = `SELECT id FROM _safety_runs ORDER BY created_at DESC OFFSET $1`
	if dryRun {
		var n int64
		err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM (`+older+`) t`, keep).Scan(&n)
		return n, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM _safety_runs WHERE id IN (`+older+`)`, keep)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.L().Info("runs_pruned", "keep", keep, "deleted", n)
	return n, nil
}

// IncrStats: 按端点累加当日查询次数；失败只记录日志
func (s *Store) IncrStats(ctx context.Context, endpoint string) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO _safety_stats_daily(day, endpoint, queries) VALUES(current_date, $1, 1)
		ON CONFLICT (day, endpoint) DO UPDATE SET queries=_safety_stats_daily.queries+1`, endpoint); err != nil {
		logger.L().Debug("stats_incr_error", "endpoint", endpoint, "err", err)
	}
}

// Totals: 统计返回结构，包含累计与当日查询次数
type Totals struct {
	Total int64
	Today int64
}

// GetTotals: 读取累计与当日查询次数
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDB
	}
	var t Totals
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(sum(queries), 0) FROM _safety_stats_daily`).Scan(&t.Total); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(sum(queries), 0) FROM _safety_stats_daily WHERE day=current_date`).Scan(&t.Today); err != nil {
		return nil, err
	}
	return &t, nil
}
