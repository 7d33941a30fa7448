package filter

import (
	"strings"

	"github-trending-pusher/internal/domain"
)

// KeywordFilter 实现了 port.Filter 接口
type KeywordFilter struct{}

// NewKeywordFilter 创建新的过滤器实例
func NewKeywordFilter() *KeywordFilter {
	return &KeywordFilter{}
}

// Filter 保留项目名 (owner/ 之后的部分) 或描述中包含任一关键词的项目，
// 不区分大小写，保持原顺序。关键词为空时原样返回。
func (f *KeywordFilter) Filter(repos []*domain.Repo, keywords []string) []*domain.Repo {
	needles := normalizeKeywords(keywords)
	if len(needles) == 0 {
		return repos
	}

	filtered := make([]*domain.Repo, 0, len(repos))
	for _, repo := range repos {
		if matches(repo, needles) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

func matches(repo *domain.Repo, needles []string) bool {
	name := strings.ToLower(repo.ShortName())
	desc := strings.ToLower(repo.Description)
	for _, kw := range needles {
		if strings.Contains(name, kw) || strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// normalizeKeywords 去掉空白关键词并转小写
func normalizeKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
