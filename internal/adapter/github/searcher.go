package github

import (
	"context"
	"fmt"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
)

// Searcher 实现了 port.SearchSource 接口
type Searcher struct {
	client     *github.Client
	minStars   int
	windowDays int
	maxRetries int
	nowFunc    func() time.Time
	log        *zap.SugaredLogger
}

// SearchOptions 备用数据源的查询条件
type SearchOptions struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	MinStars   int
	WindowDays int
	MaxRetries int
	Logger     *zap.SugaredLogger
}

// NewSearcher 初始化 GitHub Search 客户端
func NewSearcher(opts SearchOptions) (*Searcher, error) {
	client, err := newClient(opts.Token, opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "GitHub API 地址非法", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Searcher{
		client:     client,
		minStars:   opts.MinStars,
		windowDays: opts.WindowDays,
		maxRetries: opts.MaxRetries,
		nowFunc:    time.Now,
		log:        log,
	}, nil
}

// SearchRecent 搜索最近 windowDays 天创建、Star 数不低于 minStars 的项目，按 Star 倒序
func (s *Searcher) SearchRecent(ctx context.Context, limit int) common.Result[[]domain.RawRecord] {
	// 1. 构造查询条件
	createdAfter := s.nowFunc().UTC().AddDate(0, 0, -s.windowDays).Format("2006-01-02")
	query := fmt.Sprintf("created:>=%s stars:>=%d", createdAfter, s.minStars)

	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: limit,
		},
	}

	// 2. 调用 Search API
	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = s.client.Search.Repositories(ctx, query, opts)
		return apiErr
	},
		common.WithMaxRetries(s.maxRetries),
		common.WithInitialDelay(time.Second),
		common.WithRetryIf(isRetryable),
	)
	if err != nil {
		err = common.WrapError(common.ErrCodeGitHubAPI, "GitHub Search 调用失败", err)
		s.log.Warnw("GitHub Search 抓取失败", "query", query, "err", err)
		return common.Degrade([]domain.RawRecord{}, err)
	}

	// 3. 将 GitHub 的数据结构转换为 Search 格式的原始记录
	records := make([]domain.RawRecord, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		records = append(records, toSearchRecord(item))
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	s.log.Infow("GitHub Search 抓取成功", "query", query, "count", len(records))
	return common.OK(records)
}

func toSearchRecord(item *github.Repository) domain.SearchRecord {
	rec := domain.SearchRecord{
		FullName:        item.GetFullName(),
		Name:            item.GetName(),
		HTMLURL:         item.GetHTMLURL(),
		Description:     item.Description,
		Language:        item.Language,
		StargazersCount: domain.Count(item.GetStargazersCount()),
		ForksCount:      domain.Count(item.GetForksCount()),
	}
	rec.Owner.Login = item.GetOwner().GetLogin()
	return rec
}
