package trending

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github-trending-pusher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trendingItems 生成 n 条 Trending 格式的 JSON 数组
func trendingItems(n int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(
			`{"author":"owner%d","name":"repo%d","url":"https://github.com/owner%d/repo%d","description":"desc %d","language":"Go","stars":%d,"forks":1,"currentPeriodStars":%d}`,
			i, i, i, i, i, 1000-i, i))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func setupMockTrendingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Fetcher) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewFetcher(server.URL+"/repositories", 2*time.Second)
}

func TestFetcher_FetchTrending(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		limit  int
		verify func(*testing.T, []domain.RawRecord)
	}{
		{
			name:  "按上游顺序截取前 limit 条",
			body:  trendingItems(15),
			limit: 10,
			verify: func(t *testing.T, records []domain.RawRecord) {
				require.Len(t, records, 10)
				first := records[0].(domain.TrendingRecord)
				last := records[9].(domain.TrendingRecord)
				assert.Equal(t, "owner1", first.Author)
				assert.Equal(t, "repo10", last.Name)
			},
		},
		{
			name:  "条数不足 limit",
			body:  trendingItems(3),
			limit: 15,
			verify: func(t *testing.T, records []domain.RawRecord) {
				assert.Len(t, records, 3)
			},
		},
		{
			name:  "坏记录被跳过",
			body:  `[{"author":"a","name":"b"}, 42, {"author":"c","name":"d","stars":"oops"}]`,
			limit: 10,
			verify: func(t *testing.T, records []domain.RawRecord) {
				require.Len(t, records, 1)
				assert.Equal(t, "a", records[0].(domain.TrendingRecord).Author)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fetcher := setupMockTrendingServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repositories", r.URL.Path)
				assert.Equal(t, "daily", r.URL.Query().Get("since"))
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			})

			res := fetcher.FetchTrending(context.Background(), "daily", tt.limit)

			assert.False(t, res.Degraded)
			assert.NoError(t, res.Err)
			tt.verify(t, res.Value)
		})
	}
}

func TestFetcher_FetchTrending_SoftFailure(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "上游 502", statusCode: http.StatusBadGateway, body: `{"message":"bad gateway"}`},
		{name: "上游 404", statusCode: http.StatusNotFound, body: `not found`},
		{name: "响应是对象而不是数组", statusCode: http.StatusOK, body: `{"items":[]}`},
		{name: "响应不是 JSON", statusCode: http.StatusOK, body: `<html>maintenance</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fetcher := setupMockTrendingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				fmt.Fprint(w, tt.body)
			})

			res := fetcher.FetchTrending(context.Background(), "daily", 10)

			assert.True(t, res.Degraded)
			assert.Error(t, res.Err)
			assert.NotNil(t, res.Value)
			assert.Empty(t, res.Value)
		})
	}
}

func TestFetcher_FetchTrending_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	res := NewFetcher(endpoint, time.Second).FetchTrending(context.Background(), "weekly", 10)

	assert.True(t, res.Degraded)
	assert.Empty(t, res.Value)
}

func TestFetcher_FetchTrending_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, trendingItems(2))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, time.Second, WithMaxRetries(1))
	res := fetcher.FetchTrending(context.Background(), "daily", 10)

	assert.False(t, res.Degraded)
	assert.Len(t, res.Value, 2)
	assert.Equal(t, 2, calls)
}
