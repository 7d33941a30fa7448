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

// Libre LibreTranslate 兼容接口：表单 POST，返回 {"translatedText": "..."}
type Libre struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewLibre(endpoint, apiKey string, timeout time.Duration, limiter *rate.Limiter) *Libre {
	return &Libre{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
	}
}

func (l *Libre) Name() string {
	return "libre"
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *Libre) Translate(ctx context.Context, text, from, to string) (string, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("q", text)
	form.Set("source", from)
	form.Set("target", to)
	form.Set("format", "text")
	if l.apiKey != "" {
		form.Set("api_key", l.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "build libre request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var res libreResponse
	if err := doJSON(l.client, req, &res); err != nil {
		return "", errors.Wrap(err, "libre")
	}
	if res.Error != "" {
		return "", errors.Errorf("libre: %s", res.Error)
	}
	return strings.TrimSpace(res.TranslatedText), nil
}
