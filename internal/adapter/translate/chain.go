package translate

import (
	"context"
	"fmt"
	"time"

	"github-trending-pusher/internal/common"
	"github-trending-pusher/internal/port"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Chain 按顺序尝试多个翻译后端，第一个成功的结果生效
type Chain struct {
	backends []port.Translator
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// NewChain timeout 作用于每一次后端调用，<=0 表示不额外限制
func NewChain(timeout time.Duration, log *zap.SugaredLogger, backends ...port.Translator) *Chain {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Chain{backends: backends, timeout: timeout, log: log}
}

func (c *Chain) Name() string {
	return "chain"
}

// Len 后端数量
func (c *Chain) Len() int {
	return len(c.backends)
}

// Translate 全部后端失败时返回 TRANSLATION_ERROR，包含每个后端的错误
func (c *Chain) Translate(ctx context.Context, text, from, to string) (string, error) {
	var errs error
	for _, b := range c.backends {
		out, err := c.try(ctx, b, text, from, to)
		if err == nil {
			return out, nil
		}
		c.log.Debugw("翻译后端失败，尝试下一个", "backend", b.Name(), "err", err)
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	if errs == nil {
		return "", common.NewError(common.ErrCodeTranslation, "没有可用的翻译后端")
	}
	return "", common.WrapError(common.ErrCodeTranslation, "所有翻译后端都失败", errs)
}

func (c *Chain) try(ctx context.Context, b port.Translator, text, from, to string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := b.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", errEmptyTranslation
	}
	return out, nil
}
