package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haoshiji/internal/config"
	"haoshiji/internal/logger"
	"haoshiji/internal/migrate"
	"haoshiji/internal/store"
	"haoshiji/internal/utils"
)

// 文档注释：分类运行保留窗口
// 背景：每次 --save 或搜索都会写入一次运行，保留最近 N 次，更早的运行与明细一并删除。
// 约束：仅作用于 _safety_runs/_safety_verdicts；--dry-run 只统计不删除；--list 列出最近运行。
var flags struct {
	keep   int
	dryRun bool
	list   int
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "runs-prune",
		Short:        "Keep the most recent classification runs and delete older ones",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd)
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.keep, "keep", 10, "Number of most recent runs to keep")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Only count the runs that would be deleted")
	f.IntVar(&flags.list, "list", 0, "List the N most recent runs before pruning")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command) error {
	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return err
	}
	st := store.AttachDB(db)
	out := cmd.OutOrStdout()
	if flags.list > 0 {
		runs, err := st.RecentRuns(ctx, flags.list)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %-8s restaurants=%d caution=%d certified=%d inspection_failed=%d\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source, r.Restaurants, r.Caution, r.Certified, r.InspectionFailed)
		}
	}
	n, err := st.PruneRuns(ctx, flags.keep, flags.dryRun)
	if err != nil {
		return err
	}
	if flags.dryRun {
		fmt.Fprintf(out, "would delete %d runs (keep %d)\n", n, flags.keep)
	} else {
		fmt.Fprintf(out, "deleted %d runs (keep %d)\n", n, flags.keep)
	}
	return nil
}

func main() {
	_, cfgErr := config.Load()
	l := logger.Setup()
	if cfgErr != nil {
		l.Error("config_error", "err", cfgErr)
		os.Exit(1)
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		l.Error("runs_prune_error", "err", err)
		os.Exit(1)
	}
}
