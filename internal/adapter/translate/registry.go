package translate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/config"
	"github-trending-pusher/internal/port"

	"go.uber.org/zap"
)

// Build 按 TRANSLATORS 的顺序组装翻译链。
// 未设置 TRANSLATE_TO 或没有可用后端时返回 nil，表示关闭翻译。
// 返回的 cleanup 总是非 nil，用来释放 LLM 客户端。
func Build(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (port.Translator, func(), error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	noop := func() {}
	if cfg.TranslateTo == "" {
		return nil, noop, nil
	}

	limiter := NewLimiter(cfg.TranslateQPS)
	var (
		backends []port.Translator
		closers  []io.Closer
	)

	for _, name := range cfg.Translators {
		switch strings.ToLower(name) {
		case "libre":
			backends = append(backends, NewLibre(cfg.LibreTranslateURL, cfg.LibreTranslateKey, cfg.TranslateTimeout, limiter))
		case "google":
			backends = append(backends, NewGoogle(cfg.GoogleTranslateURL, cfg.TranslateTimeout, limiter))
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				log.Warnw("未设置 OPENAI_API_KEY，跳过翻译后端", "backend", name)
				continue
			}
			backends = append(backends, NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel))
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				log.Warnw("未设置 GEMINI_API_KEY，跳过翻译后端", "backend", name)
				continue
			}
			g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				log.Warnw("Gemini 客户端初始化失败，跳过翻译后端", "err", err)
				continue
			}
			backends = append(backends, g)
			closers = append(closers, g)
		default:
			closeAll(closers)
			return nil, noop, common.NewError(common.ErrCodeConfig, fmt.Sprintf("未知的翻译后端 %q", name))
		}
	}

	cleanup := func() { closeAll(closers) }
	if len(backends) == 0 {
		log.Warnw("没有可用的翻译后端，翻译关闭", "translators", cfg.Translators)
		return nil, cleanup, nil
	}

	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	log.Infow("翻译已开启", "to", cfg.TranslateTo, "backends", names)
	return NewChain(cfg.TranslateTimeout, log, backends...), cleanup, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
