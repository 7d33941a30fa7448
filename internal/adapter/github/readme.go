package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github-trending-pusher/internal/common"

	"github.com/google/go-github/v53/github"
)

// ReadmeFetcher 实现了 port.ReadmeSource 接口
type ReadmeFetcher struct {
	client     *github.Client
	maxRetries int
}

// NewReadmeFetcher token/baseURL 与 Searcher 含义相同
func NewReadmeFetcher(token, baseURL string, timeout time.Duration, maxRetries int) (*ReadmeFetcher, error) {
	client, err := newClient(token, baseURL, timeout)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "GitHub API 地址非法", err)
	}
	return &ReadmeFetcher{client: client, maxRetries: maxRetries}, nil
}

// Readme 获取默认分支上的 README 原文
func (r *ReadmeFetcher) Readme(ctx context.Context, fullName string) (string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("仓库名格式不正确: %q", fullName))
	}

	var content *github.RepositoryContent
	err := common.Do(ctx, func() error {
		var apiErr error
		content, _, apiErr = r.client.Repositories.GetReadme(ctx, owner, name, nil)
		return apiErr
	},
		common.WithMaxRetries(r.maxRetries),
		common.WithInitialDelay(500*time.Millisecond),
		common.WithRetryIf(isRetryable),
	)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return "", common.WrapError(common.ErrCodeNotFound, "README 不存在: "+fullName, err)
		}
		return "", common.WrapError(common.ErrCodeGitHubAPI, "获取 README 失败: "+fullName, err)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", common.WrapError(common.ErrCodeGitHubAPI, "README 解码失败: "+fullName, err)
	}
	return text, nil
}
