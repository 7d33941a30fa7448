package pushplus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github-trending-pusher/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPushPlusServer 创建模拟的 PushPlus 服务器
func mockPushPlusServer(t *testing.T, statusCode int, response string, validatePayload func(*testing.T, map[string]interface{})) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var payload map[string]interface{}
		assert.NoError(t, json.Unmarshal(body, &payload))

		if validatePayload != nil {
			validatePayload(t, payload)
		}

		w.WriteHeader(statusCode)
		w.Write([]byte(response))
	}))
}

func TestNotifier_Deliver(t *testing.T) {
	tests := []struct {
		name            string
		opts            []Option
		response        string
		validatePayload func(*testing.T, map[string]interface{})
		verifyMsg       string
		verifyData      string
	}{
		{
			name:     "推送成功",
			response: `{"code":200,"msg":"请求成功","data":"abc123","count":null}`,
			validatePayload: func(t *testing.T, payload map[string]interface{}) {
				assert.Equal(t, "tok", payload["token"])
				assert.Equal(t, "GitHub 每日热门项目 (2个) 2024-05-01", payload["title"])
				assert.Equal(t, "<p>hello</p>", payload["content"])
				assert.Equal(t, "html", payload["template"])
				_, hasTopic := payload["topic"]
				assert.False(t, hasTopic)
			},
			verifyMsg:  "请求成功",
			verifyData: "abc123",
		},
		{
			name:     "带群组和渠道",
			opts:     []Option{WithTopic("team"), WithChannel("wechat")},
			response: `{"code":200,"msg":"ok","data":42}`,
			validatePayload: func(t *testing.T, payload map[string]interface{}) {
				assert.Equal(t, "team", payload["topic"])
				assert.Equal(t, "wechat", payload["channel"])
			},
			verifyMsg:  "ok",
			verifyData: "42",
		},
		{
			name:      "回执没有 code 字段也算成功",
			response:  `{"msg":"queued"}`,
			verifyMsg: "queued",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockPushPlusServer(t, http.StatusOK, tt.response, tt.validatePayload)
			defer server.Close()

			notifier := NewNotifier(server.URL, time.Second, tt.opts...)
			receipt, err := notifier.Deliver(context.Background(), "tok", "GitHub 每日热门项目 (2个) 2024-05-01", "<p>hello</p>")

			require.NoError(t, err)
			assert.Equal(t, 200, receipt.Code)
			assert.Equal(t, tt.verifyMsg, receipt.Message)
			assert.Equal(t, tt.verifyData, receipt.Data)
		})
	}
}

func TestNotifier_Deliver_ErrorCases(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		response       string
		errorSubstring string
	}{
		{name: "业务错误码", statusCode: http.StatusOK, response: `{"code":903,"msg":"无效的用户token","data":null}`, errorSubstring: "无效的用户token"},
		{name: "带 error 字段", statusCode: http.StatusOK, response: `{"error":"rate limited"}`, errorSubstring: "rate limited"},
		{name: "HTTP 500", statusCode: http.StatusInternalServerError, response: `oops`, errorSubstring: "500"},
		{name: "回执不是 JSON", statusCode: http.StatusOK, response: `<html>ok</html>`, errorSubstring: "格式错误"},
		{name: "回执是数组", statusCode: http.StatusOK, response: `[1,2]`, errorSubstring: "格式错误"},
		{name: "回执是 null", statusCode: http.StatusOK, response: `null`, errorSubstring: "格式错误"},
		{name: "code 不是数字", statusCode: http.StatusOK, response: `{"code":"x"}`, errorSubstring: "code 非法"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockPushPlusServer(t, tt.statusCode, tt.response, nil)
			defer server.Close()

			receipt, err := NewNotifier(server.URL, time.Second).Deliver(context.Background(), "tok", "t", "c")

			assert.Nil(t, receipt)
			require.Error(t, err)
			assert.Equal(t, common.ErrCodeNotification, common.CodeOf(err))
			assert.Contains(t, err.Error(), tt.errorSubstring)
		})
	}
}

func TestNotifier_Deliver_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	_, err := NewNotifier(endpoint, time.Second).Deliver(context.Background(), "tok", "t", "c")

	assert.Equal(t, common.ErrCodeNotification, common.CodeOf(err))
}

func TestNotifier_Deliver_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewNotifier(server.URL, time.Second).Deliver(context.Background(), "tok", "t", "c")

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNotifier_Deliver_MissingToken(t *testing.T) {
	_, err := NewNotifier("http://127.0.0.1:1", time.Second).Deliver(context.Background(), "", "t", "c")
	assert.ErrorIs(t, err, common.ErrMissingToken)
}
