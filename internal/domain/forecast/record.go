package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Request asks for a prediction for one region and month code.
type Request struct {
	Region string `json:"upa_name"`
	Month  string `json:"forecast_month"`
}

// Record is one successful prediction, tagged with the request that produced it.
type Record struct {
	Region         string         `json:"upa_name"`
	Month          string         `json:"forecast_month"`
	PredictedCases *float64       `json:"pred_cases"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Failure describes one prediction request that did not succeed.
type Failure struct {
	Region string `json:"upa_name"`
	Month  string `json:"forecast_month"`
	Error  string `json:"error"`
}

// Predictor requests a single prediction.
type Predictor interface {
	Predict(ctx context.Context, req Request) (Record, error)
}

// Run is the outcome of one generate invocation.
type Run struct {
	ID          uuid.UUID `json:"id"`
	Session     string    `json:"session"`
	Generation  uint64    `json:"generation"`
	TargetMonth Month     `json:"targetMonth"`
	Months      []Month   `json:"months"`
	Regions     []string  `json:"regions"`
	Threshold   float64   `json:"threshold"`
	Results     []Record  `json:"results"`
	Failures    []Failure `json:"failures"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// RunRepository persists forecast runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
}
