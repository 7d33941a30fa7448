package translate

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	m := client.GenerativeModel(model)
	// 强制要求返回 JSON，降低解析错误的概率
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0)
	m.SystemInstruction = genai.NewUserContent(genai.Text(llmSystemPrompt))

	return &Gemini{client: client, model: m}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(llmPrompt(text, from, to)))
	if err != nil {
		return "", errors.Wrap(err, "gemini")
	}
	raw, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return parseTranslation(raw)
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText 取第一个候选的第一段文本
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: 返回内容为空")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("gemini: 返回内容为空")
	}
	text, ok := c.Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("gemini: 返回格式错误")
	}
	return string(text), nil
}
