package domain

import (
	"strings"
	"unicode/utf8"
)

// 数据来源标记
const (
	SourceTrending = "trending"
	SourceSearch   = "search"
)

// UnknownLanguage 上游没有给出语言时的占位
const UnknownLanguage = "Unknown"

// Ellipsis 截断描述时追加的省略标记
const Ellipsis = "..."

// Repo 代表一条归一化后的热门项目摘要
type Repo struct {
	// 基础信息 (来自 Trending 聚合服务或 GitHub Search)
	Name        string `json:"name"` // 例如 "gohugoio/hugo"
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`

	Forks int `json:"forks"`

	// 统计周期内新增的 Star 数，未知时为 0
	PeriodStars int `json:"period_stars"`

	Source string `json:"source"`
}

// ShortName 返回 owner/name 中的 name 部分
func (r *Repo) ShortName() string {
	if i := strings.LastIndex(r.Name, "/"); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// NeedsDescription 判断描述是否太短，需要用 README 补全
func (r *Repo) NeedsDescription(threshold int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(r.Description)) < threshold
}

// Truncate 按字符 (rune) 截断，超过 limit 时追加省略号
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

// Squash 把任意空白折叠成单个空格，得到单行文本
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Receipt 推送通道返回的回执
type Receipt struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	// 消息流水号
	Data string `json:"data"`
}
