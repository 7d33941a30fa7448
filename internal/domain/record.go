package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRecord 原始记录无法得到 owner/name 标识
var ErrInvalidRecord = errors.New("invalid raw record")

// RawRecord 是两种上游返回格式的联合类型，只有本包内的两个结构体实现它
type RawRecord interface {
	rawRecord()
}

// TrendingRecord Trending 聚合服务返回的一条记录
type TrendingRecord struct {
	Author             string  `json:"author"`
	Name               string  `json:"name"`
	URL                string  `json:"url"`
	Description        *string `json:"description"`
	Language           *string `json:"language"`
	Stars              Count   `json:"stars"`
	Forks              Count   `json:"forks"`
	CurrentPeriodStars Count   `json:"currentPeriodStars"`
}

// SearchRecord GitHub Search API 返回的一条记录
type SearchRecord struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	HTMLURL         string  `json:"html_url"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	StargazersCount Count   `json:"stargazers_count"`
	ForksCount      Count   `json:"forks_count"`
}

func (TrendingRecord) rawRecord() {}
func (SearchRecord) rawRecord()   {}

// Count 兼容数字和 "1,234" 这种字符串形式的计数
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*c = 0
			return nil
		}
	}
	// 只接受整数，NaN、Inf、小数和溢出都算坏记录
	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", s, err)
	}
	*c = Count(n)
	return nil
}

// DecodeRawRecord 在 JSON 边界按字段结构决定记录类型：
// 同时带有 author 和 name 的视为 Trending 格式，其余视为 Search 格式
func DecodeRawRecord(data []byte) (RawRecord, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decode raw record: %w", err)
	}

	_, hasAuthor := keys["author"]
	_, hasName := keys["name"]
	if hasAuthor && hasName {
		var rec TrendingRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode trending record: %w", err)
		}
		return rec, nil
	}

	var rec SearchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode search record: %w", err)
	}
	return rec, nil
}

// Normalize 把两种原始格式映射成统一的 Repo
func Normalize(rec RawRecord) (*Repo, error) {
	var repo *Repo

	switch r := rec.(type) {
	case TrendingRecord:
		author, name := strings.TrimSpace(r.Author), strings.TrimSpace(r.Name)
		if author == "" || name == "" {
			return nil, fmt.Errorf("%w: trending record missing author/name", ErrInvalidRecord)
		}
		repo = &Repo{
			Name:        author + "/" + name,
			URL:         r.URL,
			Description: deref(r.Description),
			Stars:       int(r.Stars),
			Language:    deref(r.Language),
			Forks:       int(r.Forks),
			PeriodStars: int(r.CurrentPeriodStars),
			Source:      SourceTrending,
		}
	case SearchRecord:
		id := strings.TrimSpace(r.FullName)
		if id == "" && r.Owner.Login != "" && r.Name != "" {
			id = r.Owner.Login + "/" + r.Name
		}
		if id == "" {
			return nil, fmt.Errorf("%w: search record missing full_name", ErrInvalidRecord)
		}
		repo = &Repo{
			Name:        id,
			URL:         r.HTMLURL,
			Description: deref(r.Description),
			Stars:       int(r.StargazersCount),
			Language:    deref(r.Language),
			Forks:       int(r.ForksCount),
			Source:      SourceSearch,
		}
	default:
		return nil, fmt.Errorf("%w: unsupported record type %T", ErrInvalidRecord, rec)
	}

	if strings.TrimSpace(repo.URL) == "" {
		repo.URL = "https://github.com/" + repo.Name
	}
	if strings.TrimSpace(repo.Language) == "" {
		repo.Language = UnknownLanguage
	}
	repo.Description = strings.TrimSpace(repo.Description)
	repo.Stars = max(repo.Stars, 0)
	repo.Forks = max(repo.Forks, 0)
	repo.PeriodStars = max(repo.PeriodStars, 0)

	return repo, nil
}

// NormalizeAll 逐条归一化，无法识别的记录会被丢弃并通过 skipped 返回
func NormalizeAll(records []RawRecord) (repos []*Repo, skipped []error) {
	repos = make([]*Repo, 0, len(records))
	for _, rec := range records {
		repo, err := Normalize(rec)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		repos = append(repos, repo)
	}
	return repos, skipped
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
