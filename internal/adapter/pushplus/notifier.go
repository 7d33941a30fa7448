package pushplus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/domain"

	"go.uber.org/zap"
)

// TemplateHTML PushPlus 的富文本模式
const TemplateHTML = "html"

// 成功时 PushPlus 回执里的 code
const codeOK = 200

type Notifier struct {
	endpoint string
	topic    string
	channel  string
	client   *http.Client
	log      *zap.SugaredLogger
}

type Option func(*Notifier)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(n *Notifier) {
		n.log = log
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		n.client = c
	}
}

// WithTopic 群组编码，为空时推送给 token 本人
func WithTopic(topic string) Option {
	return func(n *Notifier) {
		n.topic = topic
	}
}

// WithChannel 发送渠道，默认 wechat
func WithChannel(channel string) Option {
	return func(n *Notifier) {
		n.channel = channel
	}
}

func NewNotifier(endpoint string, timeout time.Duration, opts ...Option) *Notifier {
	n := &Notifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

type payload struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
	Topic    string `json:"topic,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// Deliver 发送一条 HTML 消息。失败时返回 NOTIFICATION_ERROR，不重试。
func (n *Notifier) Deliver(ctx context.Context, token, title, content string) (*domain.Receipt, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	// 1. 构造请求
	body, err := json.Marshal(payload{
		Token:    token,
		Title:    title,
		Content:  content,
		Template: TemplateHTML,
		Topic:    n.topic,
		Channel:  n.channel,
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeNotification, "构造推送请求失败", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeNotification, "构造推送请求失败", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 2. 发送
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeNotification, "PushPlus 不可达", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeNotification, "读取 PushPlus 响应失败", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, common.NewError(common.ErrCodeNotification,
			fmt.Sprintf("PushPlus 返回状态码 %d: %s", resp.StatusCode, raw))
	}

	// 3. 解析回执
	receipt, err := parseReceipt(raw)
	if err != nil {
		return nil, err
	}
	n.log.Infow("推送成功", "title", title, "receipt", receipt.Data)
	return receipt, nil
}

// parseReceipt 回执必须是 JSON 对象；带 error 字段或 code 不是 200 都算失败
func parseReceipt(raw []byte) (*domain.Receipt, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, common.NewError(common.ErrCodeNotification, fmt.Sprintf("PushPlus 回执格式错误: %s", raw))
	}

	receipt := &domain.Receipt{Code: codeOK}
	if v, ok := fields["msg"]; ok {
		receipt.Message = textOf(v)
	}
	if v, ok := fields["data"]; ok {
		receipt.Data = textOf(v)
	}

	if v, ok := fields["error"]; ok {
		return nil, common.NewError(common.ErrCodeNotification, "PushPlus 推送失败: "+textOf(v))
	}
	if v, ok := fields["code"]; ok {
		if err := json.Unmarshal(v, &receipt.Code); err != nil {
			return nil, common.NewError(common.ErrCodeNotification, fmt.Sprintf("PushPlus 回执 code 非法: %s", v))
		}
		if receipt.Code != codeOK {
			return nil, common.NewError(common.ErrCodeNotification,
				fmt.Sprintf("PushPlus 推送失败 (code=%d): %s", receipt.Code, receipt.Message))
		}
	}
	return receipt, nil
}

// textOf JSON 字符串取原文，其他类型保留 JSON 文本，null 为空串
func textOf(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
