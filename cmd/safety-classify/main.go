// 批次分类工具：读取 Places 批次与两份官方名册，输出排序后的食安判定并打印摘要
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"haoshiji/internal/config"
	"haoshiji/internal/logger"
	"haoshiji/internal/migrate"
	"haoshiji/internal/pipeline"
	"haoshiji/internal/report"
	"haoshiji/internal/store"
	"haoshiji/internal/utils"
	"haoshiji/internal/version"
)

// exitInputMissing：批次文件不存在时的退出码，与其他失败区分
const exitInputMissing = 2

var flags struct {
	input      string
	output     string
	certified  string
	inspection string
	keywords   string
	workers    int
	markdown   bool
	save       bool
	quiet      bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "safety-classify",
		Short:         "Classify restaurants by food-safety risk from reviews and official registries",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", cfg.Paths.Input, "Restaurant batch JSON (array or {\"restaurants\": [...]})")
	f.StringVarP(&flags.output, "output", "o", cfg.Paths.Output, "Classified output JSON")
	f.StringVar(&flags.certified, "certified", cfg.Paths.Certified, "Hygiene grading CSV")
	f.StringVar(&flags.inspection, "inspection", cfg.Paths.Inspection, "Inspection failure JSON")
	f.StringVar(&flags.keywords, "keywords", cfg.Paths.KeywordFile, "Keyword catalog YAML (empty = built-in)")
	f.IntVarP(&flags.workers, "workers", "w", cfg.Workers, "Parallel workers (1 = sequential)")
	f.BoolVar(&flags.markdown, "markdown", false, "Render the summary as Markdown tables")
	f.BoolVar(&flags.save, "save", false, "Persist the run to Postgres (PG_* env)")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Skip the console summary")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	res, err := pipeline.Run(ctx, pipeline.Config{
		InputPath:      flags.input,
		OutputPath:     flags.output,
		CertifiedPath:  flags.certified,
		InspectionPath: flags.inspection,
		KeywordFile:    flags.keywords,
		Workers:        flags.workers,
	})
	if err != nil {
		return err
	}
	if !flags.quiet {
		mode := report.ASCII
		if flags.markdown {
			mode = report.Markdown
		}
		out := cmd.OutOrStdout()
		if err := report.Build(res.Classified).Render(out, mode); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n完整結果已儲存至: %s\n分類時間: %s\n", flags.output, res.Started.Format("2006-01-02 15:04:05"))
	}
	if flags.save {
		return save(ctx, res)
	}
	return nil
}

func save(ctx context.Context, res *pipeline.Result) error {
	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	cat, err := pipeline.LoadCatalog(flags.keywords)
	if err != nil {
		return err
	}
	st := store.AttachDB(db)
	_, err = st.SaveRun(ctx, store.Summarize("batch", flags.input, cat.Version(), res.Classified), res.Classified)
	return err
}

func main() {
	cfg, cfgErr := config.Load()
	l := logger.Setup()
	if cfgErr != nil {
		l.Error("config_error", "err", cfgErr)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := newRootCmd(cfg).ExecuteContext(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, pipeline.ErrInputNotFound) {
		l.Error("input_missing", "err", err)
		fmt.Fprintln(os.Stderr, "找不到餐廳批次資料，請先執行 places-ingest 產生：")
		fmt.Fprintf(os.Stderr, "  %s\n可選資料：\n  %s\n  %s\n", flags.input, flags.certified, flags.inspection)
		stop()
		os.Exit(exitInputMissing)
	}
	l.Error("classify_failed", "err", err)
	stop()
	os.Exit(1)
}
