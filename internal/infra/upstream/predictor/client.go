package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/infra/upstream"
)

const predictPath = "/api/predict_simple"

// Client calls the malaria prediction service.
type Client struct {
	http *upstream.Client
}

// NewClient builds a prediction client against baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...upstream.Option) *Client {
	all := append([]upstream.Option{upstream.WithTimeout(timeout)}, opts...)
	return &Client{http: upstream.New("predict", baseURL, all...)}
}

// Predict implements forecast.Predictor. The record is tagged with the
// request's region and month regardless of what the service echoes back.
func (c *Client) Predict(ctx context.Context, req forecast.Request) (forecast.Record, error) {
	var raw map[string]any
	if err := c.http.DoJSON(ctx, http.MethodPost, predictPath, req, &raw); err != nil {
		return forecast.Record{}, err
	}
	if raw == nil {
		return forecast.Record{}, fmt.Errorf("predict response for %s %s was empty", req.Region, req.Month)
	}
	record := forecast.Record{Region: req.Region, Month: req.Month}
	if v, ok := raw["pred_cases"]; ok {
		cases, err := number(v)
		if err != nil {
			return forecast.Record{}, fmt.Errorf("predict response pred_cases: %w", err)
		}
		record.PredictedCases = cases
	}
	for k, v := range raw {
		switch k {
		case "pred_cases", "upa_name", "forecast_month":
			continue
		}
		if record.Extra == nil {
			record.Extra = make(map[string]any)
		}
		record.Extra[k] = v
	}
	return record, nil
}

func number(v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return &f, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

var _ forecast.Predictor = (*Client)(nil)
