package port

import (
	"context"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"
)

// TrendingSource (主数据源): 第三方 Trending 聚合服务
type TrendingSource interface {
	// since: daily / weekly / monthly
	FetchTrending(ctx context.Context, since string, limit int) common.Result[[]domain.RawRecord]
}

// SearchSource (备用数据源): GitHub 官方 Search API
type SearchSource interface {
	// 最近几天创建、按 Star 倒序的项目
	SearchRecent(ctx context.Context, limit int) common.Result[[]domain.RawRecord]
}

// ReadmeSource 按 owner/name 获取 README 原文
type ReadmeSource interface {
	Readme(ctx context.Context, fullName string) (string, error)
}

// Translator 可插拔的翻译后端
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Enricher 尽力补全描述并翻译，任何失败都不会向上抛出
type Enricher interface {
	Enrich(ctx context.Context, repos []*domain.Repo) []*domain.Repo
}

// Filter 按关键词筛选
type Filter interface {
	Filter(repos []*domain.Repo, keywords []string) []*domain.Repo
}

// Renderer 把项目列表渲染成推送正文和标题
type Renderer interface {
	Render(repos []*domain.Repo) (string, error)
	Title(count int, now time.Time) string
}

// Notifier (信使): 负责推送到手机 (PushPlus -> 微信)
type Notifier interface {
	Deliver(ctx context.Context, token, title, content string) (*domain.Receipt, error)
}
