package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github-trending-pusher/internal/domain"
)

// DescriptionPlaceholder 描述为空时显示的占位文字
const DescriptionPlaceholder = "暂无描述"

// 每个项目一个 <p> 块，html/template 负责转义
const repoBlock = `<p><b>{{.Index}}. <a href="{{.Repo.URL}}">{{.Repo.Name}}</a></b><br>` +
	`{{.Description}}<br>` +
	`⭐ {{.Repo.Stars}}{{if gt .Repo.PeriodStars 0}} (+{{.Repo.PeriodStars}}){{end}} | {{.Repo.Language}}</p>`

var blockTmpl = template.Must(template.New("repo").Parse(repoBlock))

// HTMLRenderer 实现了 port.Renderer 接口
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

type blockData struct {
	Index       int
	Repo        *domain.Repo
	Description string
}

// Render 按顺序为每个项目生成一个块，块之间用换行分隔。描述不在这里截断。
func (r *HTMLRenderer) Render(repos []*domain.Repo) (string, error) {
	var b strings.Builder
	for i, repo := range repos {
		desc := strings.TrimSpace(repo.Description)
		if desc == "" {
			desc = DescriptionPlaceholder
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := blockTmpl.Execute(&b, blockData{Index: i + 1, Repo: repo, Description: desc}); err != nil {
			return "", fmt.Errorf("render %s: %w", repo.Name, err)
		}
	}
	return b.String(), nil
}

// Title 推送标题，例如 "GitHub 每日热门项目 (10个) 2024-05-01"，日期取 UTC
func (r *HTMLRenderer) Title(count int, now time.Time) string {
	return fmt.Sprintf("GitHub 每日热门项目 (%d个) %s", count, now.UTC().Format("2006-01-02"))
}
