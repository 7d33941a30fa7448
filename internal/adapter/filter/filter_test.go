package filter

import (
	"testing"

	"github-trending-pusher/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sampleRepos() []*domain.Repo {
	return []*domain.Repo{
		{Name: "x/fast-html", Description: "An HTML parser"},
		{Name: "rust-lang/rust", Description: "Empowering everyone to build reliable software."},
		{Name: "ml-org/toolkit", Description: "General utilities"},
		{Name: "acme/compiler", Description: "A toy Rust compiler"},
	}
}

func names(repos []*domain.Repo) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.Name)
	}
	return out
}

func TestKeywordFilter_Filter(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		expected []string
	}{
		{
			name:     "子串匹配，ml 命中 html",
			keywords: []string{"ml"},
			expected: []string{"x/fast-html"},
		},
		{
			name:     "只看 owner/ 之后的名字",
			keywords: []string{"ml-org"},
			expected: []string{},
		},
		{
			name:     "不区分大小写，名字或描述命中",
			keywords: []string{"RUST"},
			expected: []string{"rust-lang/rust", "acme/compiler"},
		},
		{
			name:     "任一关键词命中即保留，顺序不变",
			keywords: []string{"compiler", "parser"},
			expected: []string{"x/fast-html", "acme/compiler"},
		},
		{
			name:     "空白关键词被忽略",
			keywords: []string{"  ", "", " toolkit "},
			expected: []string{"ml-org/toolkit"},
		},
		{
			name:     "全部被过滤",
			keywords: []string{"kubernetes"},
			expected: []string{},
		},
	}

	f := NewKeywordFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(f.Filter(sampleRepos(), tt.keywords)))
		})
	}
}

func TestKeywordFilter_Filter_Identity(t *testing.T) {
	repos := sampleRepos()
	f := NewKeywordFilter()

	for _, keywords := range [][]string{nil, {}, {" ", "\t"}} {
		got := f.Filter(repos, keywords)
		assert.Equal(t, repos, got)
		// 同一个切片，不做拷贝
		assert.Same(t, &repos[0], &got[0])
	}
}

func TestKeywordFilter_Filter_Empty(t *testing.T) {
	got := NewKeywordFilter().Filter(nil, []string{"go"})
	assert.Empty(t, got)
}

func TestKeywordFilter_Filter_RustCompiler(t *testing.T) {
	repos := []*domain.Repo{
		{Name: "a/web", Description: "A web framework written in Rust"},
		{Name: "b/editor", Description: "Text editor"},
		{Name: "c/tinycompiler", Description: "Educational toy"},
		{Name: "d/db", Description: "Embedded database, rust native"},
		{Name: "e/cli", Description: "Command line helpers"},
	}

	got := NewKeywordFilter().Filter(repos, []string{"rust", "compiler"})

	assert.Equal(t, []string{"a/web", "c/tinycompiler", "d/db"}, names(got))
}
