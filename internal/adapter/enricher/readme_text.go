package enricher

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// ReadmeToText 把 README 的 Markdown 转成单行纯文本：
// 去掉代码块、HTML、图片和表格分隔符这类标记，只保留正文文字
func ReadmeToText(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if !isMarkupToken(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// isMarkupToken 只由表格竖线、分隔线之类的标记字符组成
func isMarkupToken(w string) bool {
	return strings.Trim(w, "|-=*_#>`~:+") == ""
}
