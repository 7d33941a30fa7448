package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const llmSystemPrompt = `你是一个技术文档翻译。把用户给出的开源项目简介翻译成目标语言，保留项目名、专有名词和代码标识符原样。
请严格返回 JSON: {"translation": "译文"}，不要包含 Markdown 格式标记。`

type llmResponse struct {
	Translation string `json:"translation"`
}

func llmPrompt(text, from, to string) string {
	return fmt.Sprintf("源语言: %s\n目标语言: %s\n原文: %s", from, to, text)
}

// parseTranslation 从模型输出中抠出 JSON。
// 即使模型返回 "```json { ... } ```"，也只取第一个 { 到最后一个 } 之间的部分
func parseTranslation(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errors.Errorf("无法提取 JSON, 模型原文: %s", raw)
	}

	var res llmResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return "", errors.Wrapf(err, "JSON 解析失败, 模型原文: %s", raw)
	}
	out := strings.TrimSpace(res.Translation)
	if out == "" {
		return "", errEmptyTranslation
	}
	return out, nil
}
