package survey

import (
	"context"
	"fmt"
	"os"

	"github.com/csdewars/ewars/internal/domain/surveillance"
)

// FileSource reads a saved survey response from disk.
type FileSource struct {
	Path string
}

// FetchSubmissions implements surveillance.SubmissionSource.
func (s FileSource) FetchSubmissions(_ context.Context) ([]map[string]any, error) {
	payload, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	return decodeSubmissions(payload)
}

var _ surveillance.SubmissionSource = FileSource{}
