package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/csdewars/ewars/internal/domain/surveillance"
	"github.com/csdewars/ewars/internal/infra/upstream"
)

const (
	defaultBaseURL = "https://admin2.commicplan.com/api/api"
	defaultFormID  = "1079"
)

// Config locates the survey form.
type Config struct {
	BaseURL string
	FormID  string
	Token   string
	Timeout time.Duration
}

// Client fetches CHW form submissions.
type Client struct {
	http   *upstream.Client
	formID string
}

// NewClient builds a survey API client.
func NewClient(cfg Config, opts ...upstream.Option) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	formID := strings.TrimSpace(cfg.FormID)
	if formID == "" {
		formID = defaultFormID
	}
	all := []upstream.Option{upstream.WithTimeout(cfg.Timeout)}
	if cfg.Token != "" {
		all = append(all, upstream.WithHeader("Authorization", "Token "+cfg.Token))
	}
	all = append(all, opts...)
	return &Client{http: upstream.New("survey", base, all...), formID: formID}
}

// FetchSubmissions implements surveillance.SubmissionSource.
func (c *Client) FetchSubmissions(ctx context.Context) ([]map[string]any, error) {
	payload, err := c.http.Do(ctx, http.MethodGet, fmt.Sprintf("/forms/%s/", c.formID), nil)
	if err != nil {
		return nil, err
	}
	return decodeSubmissions(payload)
}

// decodeSubmissions accepts {"submission": [...]} or a bare array.
func decodeSubmissions(payload []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode survey response: %w", err)
		}
		return compact(items), nil
	}
	var envelope struct {
		Submission []map[string]any `json:"submission"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode survey response: %w", err)
	}
	return compact(envelope.Submission), nil
}

func compact(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

var _ surveillance.SubmissionSource = (*Client)(nil)
