package alert

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/csdewars/ewars/internal/domain/forecast"
)

// DefaultSubject is used when a request carries no subject.
const DefaultSubject = "Malaria Prediction Alert"

// Config holds alert defaults.
type Config struct {
	DefaultRecipients []string
	DefaultSubject    string
	// RiskThreshold drives the High/Mid/Low tag in composed bodies.
	RiskThreshold float64
}

// Message is the payload handed to the mail gateway.
type Message struct {
	Emails  []string `json:"emails"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Mailer delivers a composed message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Request describes an alert. Results come from RunID when set, otherwise from Records.
type Request struct {
	RunID    string            `json:"runId,omitempty"`
	Records  []forecast.Record `json:"records,omitempty"`
	Upazilas []string          `json:"upazilas"`
	Emails   []string          `json:"emails,omitempty"`
	Subject  string            `json:"subject,omitempty"`
	Body     string            `json:"body,omitempty"`
}

// Status of a dispatched alert.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// LogEntry is one recorded dispatch attempt.
type LogEntry struct {
	ID       uuid.UUID `json:"id"`
	RunID    string    `json:"runId,omitempty"`
	Emails   []string  `json:"emails"`
	Subject  string    `json:"subject"`
	Upazilas []string  `json:"upazilas"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}

// LogRepository records alert dispatches.
type LogRepository interface {
	SaveAlert(ctx context.Context, entry LogEntry) error
	ListAlerts(ctx context.Context, limit int) ([]LogEntry, error)
}
