package lmis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/csdewars/ewars/internal/domain/geojoin"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/infra/upstream"
	"github.com/csdewars/ewars/pkg/logger"
)

const defaultPath = "/lmis/admin/mis-api-data"

// Client fetches reported monthly malaria counts from the LMIS feed.
type Client struct {
	http   *upstream.Client
	path   string
	logger *slog.Logger
}

// NewClient builds an LMIS client. An empty path uses the dashboard's feed path.
func NewClient(baseURL, path string, timeout time.Duration, logger *slog.Logger, opts ...upstream.Option) *Client {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}
	all := append([]upstream.Option{upstream.WithTimeout(timeout)}, opts...)
	return &Client{
		http:   upstream.New("lmis", baseURL, all...),
		path:   path,
		logger: logger.With("component", "lmis.client"),
	}
}

// FetchActuals implements riskmap.ActualSource.
func (c *Client) FetchActuals(ctx context.Context) ([]geojoin.ActualRecord, error) {
	var rows []map[string]any
	if err := c.http.DoJSON(ctx, http.MethodGet, c.path, nil, &rows); err != nil {
		return nil, err
	}
	return normalizeRows(rows, c.logger), nil
}

// FileSource reads a saved LMIS response from disk. Logger may be nil.
type FileSource struct {
	Path   string
	Logger *slog.Logger
}

// FetchActuals implements riskmap.ActualSource.
func (s FileSource) FetchActuals(_ context.Context) ([]geojoin.ActualRecord, error) {
	payload, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read actuals: %w", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode actuals: %w", err)
	}
	log := s.Logger
	if log == nil {
		log = logger.Discard()
	}
	return normalizeRows(rows, log), nil
}

// normalizeRows never drops a row. An unreadable count is logged and left
// empty so the upazila renders without data instead of failing the feed.
func normalizeRows(rows []map[string]any, logger *slog.Logger) []geojoin.ActualRecord {
	out := make([]geojoin.ActualRecord, 0, len(rows))
	for i, row := range rows {
		rec := geojoin.ActualRecord{
			UpazilaID:   geojoin.NormalizeID(row["UpazilaID"]),
			ReportYear:  geojoin.NormalizeID(row["ReportYear"]),
			ReportMonth: geojoin.NormalizeID(row["ReportMonth"]),
		}
		if rec.UpazilaID == "" {
			rec.UpazilaID = geojoin.NormalizeID(row["UpazillaID"])
		}
		for _, f := range []struct {
			key string
			dst **float64
		}{{"CASEE", &rec.Cases}, {"TEST", &rec.Tests}, {"DEATH", &rec.Deaths}} {
			v, err := count(row[f.key])
			if err != nil {
				logger.Warn("unreadable lmis count", "row", i, "field", f.key, "upazila_id", rec.UpazilaID, "error", err)
				continue
			}
			*f.dst = v
		}
		out = append(out, rec)
	}
	return out
}

func count(v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
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

var (
	_ riskmap.ActualSource = (*Client)(nil)
	_ riskmap.ActualSource = FileSource{}
)
