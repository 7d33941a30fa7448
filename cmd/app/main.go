package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github-trending-pusher/internal/adapter/enricher"
	"github-trending-pusher/internal/adapter/filter"
	"github-trending-pusher/internal/adapter/github"
	"github-trending-pusher/internal/adapter/pushplus"
	"github-trending-pusher/internal/adapter/render"
	"github-trending-pusher/internal/adapter/translate"
	"github-trending-pusher/internal/adapter/trending"
	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/config"
	"github-trending-pusher/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 整次运行的上限，和单次请求的超时相互独立
const runTimeout = 5 * time.Minute

// 退出码
const (
	exitOK           = 0
	exitFailure      = 1
	exitMissingToken = 2
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
	}
	os.Exit(exitCode(err))
}

// exitCode 缺少 token 为 2，其余失败 (无数据、过滤为空、推送失败等) 为 1
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, common.ErrMissingToken):
		return exitMissingToken
	default:
		return exitFailure
	}
}

type cliFlags struct {
	token       string
	count       int
	search      bool
	keywords    string
	since       string
	translateTo string
	dryRun      bool
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	cmd := &cobra.Command{
		Use:           "trending-pusher",
		Short:         "抓取 GitHub 热门项目并通过 PushPlus 推送到微信",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loadErr := config.Load()
			applyFlags(cmd, cfg, f)
			// 缺少 token 优先于其他配置错误，且在任何网络请求之前
			if err := cfg.CheckToken(); err != nil {
				return err
			}
			if loadErr != nil {
				return loadErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger(cfg.Env)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			svc, cleanup, err := build(ctx, cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := svc.Run(ctx); err != nil {
				log.Errorw("运行失败", "code", common.CodeOf(err), "err", err)
				return err
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.token, "token", "", "PushPlus token (覆盖 PUSHPLUS_TOKEN)")
	fl.IntVar(&f.count, "count", 0, "推送的项目数 (覆盖 TREND_COUNT)")
	fl.BoolVar(&f.search, "search", false, "优先使用 GitHub Search API (覆盖 USE_SEARCH_API)")
	fl.StringVar(&f.keywords, "keywords", "", "逗号分隔的关键词 (覆盖 KEYWORDS)")
	fl.StringVar(&f.since, "since", "", "daily / weekly / monthly (覆盖 TREND_SINCE)")
	fl.StringVar(&f.translateTo, "translate-to", "", "描述翻译的目标语言，例如 zh (覆盖 TRANSLATE_TO)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "只渲染并打印，不推送")
	return cmd
}

// applyFlags 只有显式传入的参数才覆盖环境变量
func applyFlags(cmd *cobra.Command, cfg *config.Config, f cliFlags) {
	fl := cmd.Flags()
	if fl.Changed("token") {
		cfg.PushToken = strings.TrimSpace(f.token)
	}
	if fl.Changed("count") {
		cfg.Count = f.count
	}
	if fl.Changed("search") {
		cfg.UseSearch = f.search
	}
	if fl.Changed("keywords") {
		cfg.Keywords = config.SplitList(f.keywords)
	}
	if fl.Changed("since") {
		cfg.Since = f.since
	}
	if fl.Changed("translate-to") {
		cfg.TranslateTo = f.translateTo
	}
	if fl.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
}

func logger(env string) (*zap.SugaredLogger, error) {
	var (
		log *zap.Logger
		err error
	)
	switch strings.ToLower(env) {
	case "prod", "production":
		log, err = zap.NewProduction()
	default:
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

// build 根据配置组装所有适配器
func build(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, out io.Writer) (*service.TrendingService, func(), error) {
	trendingSource := trending.NewFetcher(cfg.TrendingURL, cfg.FetchTimeout,
		trending.WithLogger(log),
		trending.WithMaxRetries(cfg.MaxRetries),
	)

	searcher, err := github.NewSearcher(github.SearchOptions{
		Token:      cfg.GitHubToken,
		BaseURL:    cfg.GitHubAPIURL,
		Timeout:    cfg.FetchTimeout,
		MinStars:   cfg.SearchMinStars,
		WindowDays: cfg.SearchWindowDays,
		MaxRetries: cfg.MaxRetries,
		Logger:     log,
	})
	if err != nil {
		return nil, nil, err
	}

	enrichOpts := enricher.Options{
		ReadmeThreshold:  cfg.ReadmeThreshold,
		DescriptionLimit: cfg.DescriptionLimit,
		ReadmeTimeout:    cfg.ReadmeTimeout,
		From:             cfg.TranslateFrom,
		To:               cfg.TranslateTo,
		Concurrency:      cfg.EnrichConcurrency,
		Logger:           log,
	}
	if cfg.EnrichReadme {
		readme, err := github.NewReadmeFetcher(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.ReadmeTimeout, cfg.MaxRetries)
		if err != nil {
			return nil, nil, err
		}
		enrichOpts.Readme = readme
	}

	translator, cleanup, err := translate.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	enrichOpts.Translator = translator

	notifier := pushplus.NewNotifier(cfg.PushURL, cfg.PushTimeout,
		pushplus.WithLogger(log),
		pushplus.WithTopic(cfg.PushTopic),
		pushplus.WithChannel(cfg.PushChannel),
	)

	svc := service.NewTrendingService(
		trendingSource,
		searcher,
		filter.NewKeywordFilter(),
		enricher.NewEnricher(enrichOpts),
		render.NewHTMLRenderer(),
		notifier,
		service.Settings{
			Token:      cfg.PushToken,
			Count:      cfg.Count,
			FetchLimit: cfg.FetchLimit(),
			Since:      cfg.Since,
			UseSearch:  cfg.UseSearch,
			Keywords:   cfg.Keywords,
			DryRun:     cfg.DryRun,
		},
		service.WithLogger(log),
		service.WithOutput(out),
	)
	return svc, cleanup, nil
}
