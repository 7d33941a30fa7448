package translate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Google 免 key 的 translate_a/single 接口 (client=gtx)，返回嵌套数组
type Google struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewGoogle(endpoint string, timeout time.Duration, limiter *rate.Limiter) *Google {
	return &Google{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
	}
}

func (g *Google) Name() string {
	return "google"
}

func (g *Google) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := wait(ctx, g.limiter); err != nil {
		return "", err
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse google endpoint")
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", errors.Wrap(err, "build google request")
	}

	var payload []any
	if err := doJSON(g.client, req, &payload); err != nil {
		return "", errors.Wrap(err, "google")
	}
	return joinSentences(payload)
}

// joinSentences 响应形如 [[["译文","原文",...],["译文2","原文2",...]], null, "en", ...]
func joinSentences(payload []any) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("google: empty payload")
	}
	sentences, ok := payload[0].([]any)
	if !ok {
		return "", errors.New("google: unexpected payload shape")
	}

	var b strings.Builder
	for _, s := range sentences {
		seg, ok := s.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if part, ok := seg[0].(string); ok {
			b.WriteString(part)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
