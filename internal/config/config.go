package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github-trending-pusher/internal/common"

	"github.com/joho/godotenv"
)

// 上游默认地址
const (
	DefaultTrendingURL        = "https://ghapi.huchen.dev/repositories"
	DefaultGitHubAPIURL       = "https://api.github.com/"
	DefaultPushPlusURL        = "https://www.pushplus.plus/send"
	DefaultLibreTranslateURL  = "https://libretranslate.com/translate"
	DefaultGoogleTranslateURL = "https://translate.googleapis.com/translate_a/single"
)

// Config 一次运行所需的全部配置，进程启动时构造一次后传给流水线
type Config struct {
	// 推送
	PushToken   string
	PushURL     string
	PushTopic   string
	PushChannel string

	// 抓取
	Count            int
	UseSearch        bool
	Since            string
	Keywords         []string
	FetchPadding     int
	SearchMinStars   int
	SearchWindowDays int
	TrendingURL      string
	GitHubAPIURL     string
	GitHubToken      string

	// 补全
	EnrichReadme      bool
	ReadmeThreshold   int
	DescriptionLimit  int
	EnrichConcurrency int

	// 翻译
	TranslateFrom      string
	TranslateTo        string
	Translators        []string
	TranslateQPS       float64
	LibreTranslateURL  string
	LibreTranslateKey  string
	GoogleTranslateURL string
	OpenAIBaseURL      string
	OpenAIAPIKey       string
	OpenAIModel        string
	GeminiAPIKey       string
	GeminiModel        string

	// 网络
	MaxRetries       int
	FetchTimeout     time.Duration
	ReadmeTimeout    time.Duration
	TranslateTimeout time.Duration
	PushTimeout      time.Duration

	Env    string
	DryRun bool
}

// Load 读取 .env (如果存在) 和环境变量，缺省值与脚本原版保持一致。
// 返回的 *Config 总是非 nil，格式错误的字段保留缺省值
func Load() (*Config, error) {
	_ = godotenv.Load()

	e := &envReader{}
	cfg := &Config{
		PushToken:   strings.TrimSpace(os.Getenv("PUSHPLUS_TOKEN")),
		PushURL:     e.getStr("PUSHPLUS_URL", DefaultPushPlusURL),
		PushTopic:   os.Getenv("PUSHPLUS_TOPIC"),
		PushChannel: e.getStr("PUSHPLUS_CHANNEL", "wechat"),

		Count:            e.getInt("TREND_COUNT", 10),
		UseSearch:        e.getBool("USE_SEARCH_API", false),
		Since:            e.getStr("TREND_SINCE", "daily"),
		Keywords:         SplitList(os.Getenv("KEYWORDS")),
		FetchPadding:     e.getInt("FETCH_PADDING", 5),
		SearchMinStars:   e.getInt("SEARCH_MIN_STARS", 10),
		SearchWindowDays: e.getInt("SEARCH_WINDOW_DAYS", 7),
		TrendingURL:      e.getStr("TRENDING_API_URL", DefaultTrendingURL),
		GitHubAPIURL:     e.getStr("GITHUB_API_URL", DefaultGitHubAPIURL),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),

		EnrichReadme:      e.getBool("ENRICH_README", true),
		ReadmeThreshold:   e.getInt("README_THRESHOLD", 30),
		DescriptionLimit:  e.getInt("DESCRIPTION_LIMIT", 150),
		EnrichConcurrency: e.getInt("ENRICH_CONCURRENCY", 3),

		TranslateFrom:      e.getStr("TRANSLATE_FROM", "en"),
		TranslateTo:        os.Getenv("TRANSLATE_TO"),
		Translators:        SplitList(e.getStr("TRANSLATORS", "libre,google")),
		TranslateQPS:       e.getFloat("TRANSLATE_QPS", 2),
		LibreTranslateURL:  e.getStr("LIBRETRANSLATE_URL", DefaultLibreTranslateURL),
		LibreTranslateKey:  os.Getenv("LIBRETRANSLATE_KEY"),
		GoogleTranslateURL: e.getStr("GOOGLE_TRANSLATE_URL", DefaultGoogleTranslateURL),
		OpenAIBaseURL:      e.getStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        e.getStr("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        e.getStr("GEMINI_MODEL", "gemini-2.5-flash-lite"),

		MaxRetries:       e.getInt("HTTP_MAX_RETRIES", 0),
		FetchTimeout:     e.getDuration("FETCH_TIMEOUT", 15*time.Second),
		ReadmeTimeout:    e.getDuration("README_TIMEOUT", 10*time.Second),
		TranslateTimeout: e.getDuration("TRANSLATE_TIMEOUT", 5*time.Second),
		PushTimeout:      e.getDuration("PUSH_TIMEOUT", 15*time.Second),

		Env: e.getStr("ENV", "dev"),
	}

	if e.err != nil {
		// 格式错误时仍返回已读取的配置，调用方可以先检查 token
		return cfg, common.WrapError(common.ErrCodeConfig, "环境变量格式错误", e.err)
	}
	return cfg, nil
}

// CheckToken 非 dry-run 时必须有推送 token
func (c *Config) CheckToken() error {
	if c.PushToken == "" && !c.DryRun {
		return common.ErrMissingToken
	}
	return nil
}

// Validate 检查取值范围。缺少推送 token 返回 common.ErrMissingToken
func (c *Config) Validate() error {
	if err := c.CheckToken(); err != nil {
		return err
	}
	if c.Count <= 0 {
		return common.NewError(common.ErrCodeConfig, fmt.Sprintf("TREND_COUNT 必须大于 0，当前为 %d", c.Count))
	}
	switch c.Since {
	case "daily", "weekly", "monthly":
	default:
		return common.NewError(common.ErrCodeConfig, fmt.Sprintf("TREND_SINCE 只支持 daily/weekly/monthly，当前为 %q", c.Since))
	}
	if c.FetchPadding < 0 || c.ReadmeThreshold < 0 || c.DescriptionLimit <= 0 {
		return common.NewError(common.ErrCodeConfig, "FETCH_PADDING/README_THRESHOLD/DESCRIPTION_LIMIT 取值非法")
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = 1
	}
	return nil
}

// FetchLimit 实际向上游请求的条数，多取几条给关键词过滤留余量
func (c *Config) FetchLimit() int {
	return c.Count + c.FetchPadding
}

// SplitList 按逗号拆分并去掉空白项
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envReader 记录第一个解析错误，避免每个字段都写一遍 if err
type envReader struct {
	err error
}

func (e *envReader) getStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) getBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	e.fail(key, v, fmt.Errorf("not a boolean"))
	return def
}

func (e *envReader) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s=%q: %w", key, value, err)
	}
}
