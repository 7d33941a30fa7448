package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"

	"go.uber.org/zap"
)

// 响应体上限，防止异常上游把内存撑爆
const maxBodyBytes = 8 << 20

// Fetcher 实现了 port.TrendingSource 接口
type Fetcher struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	log        *zap.SugaredLogger
}

// Option Fetcher 的可选配置
type Option func(*Fetcher)

// WithLogger 设置日志，默认不输出
func WithLogger(log *zap.SugaredLogger) Option {
	return func(f *Fetcher) {
		f.log = log
	}
}

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithMaxRetries 上游失败时额外重试的次数，默认 0
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// NewFetcher endpoint 是 Trending 聚合服务的列表地址
func NewFetcher(endpoint string, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetchTrending 拉取 Trending 列表，按上游排名返回前 limit 条。
// 网络错误、非 2xx、响应不是数组时返回降级的空结果，不向上抛错。
func (f *Fetcher) FetchTrending(ctx context.Context, since string, limit int) common.Result[[]domain.RawRecord] {
	records, err := f.fetch(ctx, since)
	if err != nil {
		f.log.Warnw("Trending 列表抓取失败", "since", since, "err", err)
		return common.Degrade([]domain.RawRecord{}, err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	f.log.Infow("Trending 列表抓取成功", "since", since, "count", len(records))
	return common.OK(records)
}

func (f *Fetcher) fetch(ctx context.Context, since string) ([]domain.RawRecord, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "Trending 地址非法", err)
	}
	q := u.Query()
	q.Set("since", since)
	q.Set("spoken_language", "")
	u.RawQuery = q.Encode()

	var body []byte
	err = common.Do(ctx, func() error {
		var reqErr error
		body, reqErr = f.get(ctx, u.String())
		return reqErr
	}, common.WithMaxRetries(f.maxRetries), common.WithInitialDelay(time.Second))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeTrendingAPI, "Trending API 调用失败", err)
	}

	// 1. 先确认顶层是数组
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, common.WrapError(common.ErrCodeTrendingAPI, "Trending 响应不是数组", err)
	}

	// 2. 在 JSON 边界决定每条记录的类型，坏记录跳过
	records := make([]domain.RawRecord, 0, len(items))
	for i, item := range items {
		rec, err := domain.DecodeRawRecord(item)
		if err != nil {
			f.log.Warnw("跳过无法解析的 Trending 记录", "index", i, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, common.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, common.Permanent(err)
		}
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
