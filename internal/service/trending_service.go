package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"
	"github-trending-pusher/internal/port"

	"go.uber.org/zap"
)

// Settings 一次运行的参数，由 config 转换而来
type Settings struct {
	Token      string
	Count      int
	FetchLimit int
	Since      string
	UseSearch  bool
	Keywords   []string
	DryRun     bool
}

// Report 一次运行的结果摘要
type Report struct {
	Source   string
	Fetched  int
	Skipped  int
	Matched  int
	Title    string
	Content  string
	Receipt  *domain.Receipt
	Repos    []*domain.Repo
	Degraded []error
}

// TrendingService 串起抓取、归一化、过滤、补全、渲染和推送
type TrendingService struct {
	trending port.TrendingSource
	search   port.SearchSource
	filter   port.Filter
	enricher port.Enricher
	renderer port.Renderer
	notifier port.Notifier

	settings Settings
	out      io.Writer
	now      func() time.Time
	log      *zap.SugaredLogger
}

type Option func(*TrendingService)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *TrendingService) {
		s.log = log
	}
}

// WithOutput dry-run 时正文写到哪里，默认 stdout
func WithOutput(w io.Writer) Option {
	return func(s *TrendingService) {
		s.out = w
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TrendingService) {
		s.now = now
	}
}

// NewTrendingService 创建新的推送服务
func NewTrendingService(
	trending port.TrendingSource,
	search port.SearchSource,
	filter port.Filter,
	enricher port.Enricher,
	renderer port.Renderer,
	notifier port.Notifier,
	settings Settings,
	opts ...Option,
) *TrendingService {
	s := &TrendingService{
		trending: trending,
		search:   search,
		filter:   filter,
		enricher: enricher,
		renderer: renderer,
		notifier: notifier,
		settings: settings,
		out:      os.Stdout,
		now:      time.Now,
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type source struct {
	name  string
	fetch func(ctx context.Context, limit int) common.Result[[]domain.RawRecord]
}

// Run 执行一次完整流程。
// 缺少 token 返回 common.ErrMissingToken 且不发任何请求；
// 两个数据源都为空返回 common.ErrNoData；过滤后为空返回 common.ErrNoneAfterFilter。
func (s *TrendingService) Run(ctx context.Context) (*Report, error) {
	if s.settings.Token == "" && !s.settings.DryRun {
		return nil, common.ErrMissingToken
	}
	report := &Report{}

	// 1. 抓取：主数据源为空时换备用数据源
	records := s.fetch(ctx, report)
	if len(records) == 0 {
		return report, common.ErrNoData
	}

	// 2. 归一化
	repos, skipped := domain.NormalizeAll(records)
	report.Skipped = len(skipped)
	for _, err := range skipped {
		s.log.Warnw("丢弃无法归一化的记录", "err", err)
	}
	if len(repos) == 0 {
		return report, common.ErrNoData
	}

	// 3. 关键词过滤，再取前 Count 个
	repos = s.filter.Filter(repos, s.settings.Keywords)
	report.Matched = len(repos)
	if len(repos) == 0 {
		s.log.Warnw("关键词过滤后没有剩余项目", "keywords", s.settings.Keywords)
		return report, common.ErrNoneAfterFilter
	}
	if len(repos) > s.settings.Count {
		repos = repos[:s.settings.Count]
	}

	// 4. 补全 (尽力而为)
	repos = s.enricher.Enrich(ctx, repos)
	report.Repos = repos

	// 5. 渲染
	content, err := s.renderer.Render(repos)
	if err != nil {
		return report, fmt.Errorf("渲染推送正文失败: %w", err)
	}
	report.Content = content
	report.Title = s.renderer.Title(len(repos), s.now())

	if s.settings.DryRun {
		s.log.Infow("dry-run，跳过推送", "title", report.Title, "count", len(repos))
		fmt.Fprintf(s.out, "%s\n\n%s\n", report.Title, report.Content)
		return report, nil
	}

	// 6. 推送
	receipt, err := s.notifier.Deliver(ctx, s.settings.Token, report.Title, report.Content)
	if err != nil {
		return report, err
	}
	report.Receipt = receipt
	s.log.Infow("本次推送完成", "source", report.Source, "count", len(repos), "title", report.Title)
	return report, nil
}

func (s *TrendingService) fetch(ctx context.Context, report *Report) []domain.RawRecord {
	sources := []source{
		{name: domain.SourceTrending, fetch: func(ctx context.Context, limit int) common.Result[[]domain.RawRecord] {
			return s.trending.FetchTrending(ctx, s.settings.Since, limit)
		}},
		{name: domain.SourceSearch, fetch: s.search.SearchRecent},
	}
	if s.settings.UseSearch {
		sources[0], sources[1] = sources[1], sources[0]
	}

	for _, src := range sources {
		res := src.fetch(ctx, s.settings.FetchLimit)
		if res.Degraded {
			report.Degraded = append(report.Degraded, res.Err)
		}
		if len(res.Value) > 0 {
			report.Source = src.name
			report.Fetched = len(res.Value)
			s.log.Infow("抓取完成", "source", src.name, "count", len(res.Value))
			return res.Value
		}
		s.log.Warnw("数据源没有返回项目，尝试下一个", "source", src.name, "degraded", res.Degraded)
	}
	return nil
}
