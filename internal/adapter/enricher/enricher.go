package enricher

import (
	"context"
	"errors"
	"time"
	"unicode"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"
	"github-trending-pusher/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	errEmptyReadme   = errors.New("README 没有可用的正文")
	errNotTranslated = errors.New("翻译结果为空")
)

// Options 补全阶段的参数，零值表示关闭对应阶段
type Options struct {
	// README 补全: Readme 为 nil 时跳过
	Readme           port.ReadmeSource
	ReadmeThreshold  int
	DescriptionLimit int
	ReadmeTimeout    time.Duration

	// 翻译: Translator 为 nil 或 To 为空时跳过，单次调用的超时由 Translator 自己控制
	Translator port.Translator
	From       string
	To         string

	Concurrency int
	Logger      *zap.SugaredLogger
}

// Enricher 实现了 port.Enricher 接口
type Enricher struct {
	opts Options
	log  *zap.SugaredLogger
}

// NewEnricher 创建新的补全器实例
func NewEnricher(opts Options) *Enricher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Enricher{opts: opts, log: log}
}

// Enrich 逐个补全描述再翻译，原地修改并按原顺序返回。
// 项目之间互不依赖，最多 Concurrency 个同时进行。
func (e *Enricher) Enrich(ctx context.Context, repos []*domain.Repo) []*domain.Repo {
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)

	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			e.enrichOne(ctx, repo)
			return nil
		})
	}
	_ = g.Wait()
	return repos
}

func (e *Enricher) enrichOne(ctx context.Context, repo *domain.Repo) {
	if res := e.BackfillDescription(ctx, repo); res.Degraded {
		e.log.Debugw("README 补全降级，沿用原描述", "repo", repo.Name, "err", res.Err)
	} else {
		repo.Description = res.Value
	}

	if res := e.TranslateDescription(ctx, repo.Description); res.Degraded {
		e.log.Debugw("翻译降级，沿用原文", "repo", repo.Name, "err", res.Err)
	} else {
		repo.Description = res.Value
	}

	// 不论描述来自上游、README 还是译文，渲染前都截断到 DescriptionLimit
	repo.Description = domain.Truncate(repo.Description, e.opts.DescriptionLimit)
}

// BackfillDescription 描述过短时用 README 正文代替，失败则降级为原描述
func (e *Enricher) BackfillDescription(ctx context.Context, repo *domain.Repo) common.Result[string] {
	if e.opts.Readme == nil || !repo.NeedsDescription(e.opts.ReadmeThreshold) {
		return common.OK(repo.Description)
	}

	callCtx, cancel := withTimeout(ctx, e.opts.ReadmeTimeout)
	defer cancel()

	raw, err := e.opts.Readme.Readme(callCtx, repo.Name)
	if err != nil {
		return common.Degrade(repo.Description, err)
	}

	text := ReadmeToText(raw)
	if text == "" {
		return common.Degrade(repo.Description, errEmptyReadme)
	}
	return common.OK(domain.Truncate(text, e.opts.DescriptionLimit))
}

// TranslateDescription 翻译非空描述，所有后端都失败时降级为原文
func (e *Enricher) TranslateDescription(ctx context.Context, text string) common.Result[string] {
	if e.opts.Translator == nil || e.opts.To == "" || !hasLatinLetter(text) {
		return common.OK(text)
	}

	translated, err := e.opts.Translator.Translate(ctx, text, e.opts.From, e.opts.To)
	if err != nil {
		return common.Degrade(text, err)
	}
	if translated == "" {
		return common.Degrade(text, errNotTranslated)
	}
	return common.OK(domain.Squash(translated))
}

// hasLatinLetter 没有拉丁字母的文本 (空串、纯中文等) 不需要从英文翻译
func hasLatinLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
