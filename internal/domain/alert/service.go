package alert

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	apperrors "github.com/csdewars/ewars/pkg/errors"
	"github.com/csdewars/ewars/pkg/util"
)

// Service composes and dispatches threshold alerts.
type Service interface {
	Preview(ctx context.Context, req Request) (Message, error)
	Send(ctx context.Context, req Request) (LogEntry, error)
	History(ctx context.Context, limit int) ([]LogEntry, error)
}

type service struct {
	cfg    Config
	mailer Mailer
	runs   forecast.RunRepository
	logs   LogRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the alert domain.
func NewService(cfg Config, mailer Mailer, runs forecast.RunRepository, logs LogRepository, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.DefaultSubject) == "" {
		cfg.DefaultSubject = DefaultSubject
	}
	return &service{
		cfg:    cfg,
		mailer: mailer,
		runs:   runs,
		logs:   logs,
		logger: logger.With("component", "alert.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Preview(ctx context.Context, req Request) (Message, error) {
	records, err := s.records(ctx, req)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		Emails:  hierarchy.Unique(req.Emails),
		Subject: strings.TrimSpace(req.Subject),
		Body:    req.Body,
	}
	if len(msg.Emails) == 0 {
		msg.Emails = append([]string(nil), s.cfg.DefaultRecipients...)
	}
	if msg.Subject == "" {
		msg.Subject = s.cfg.DefaultSubject
	}
	if strings.TrimSpace(msg.Body) == "" {
		body, err := ComposeBody(records, req.Upazilas, s.cfg.RiskThreshold)
		if err != nil {
			return Message{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to compose alert body", err)
		}
		msg.Body = body
	}
	return msg, nil
}

func (s *service) Send(ctx context.Context, req Request) (LogEntry, error) {
	msg, err := s.Preview(ctx, req)
	if err != nil {
		return LogEntry{}, err
	}
	if len(msg.Emails) == 0 {
		return LogEntry{}, apperrors.New(apperrors.CodeInvalidInput, "at least one recipient is required")
	}

	entry := LogEntry{
		ID:       uuid.New(),
		RunID:    req.RunID,
		Emails:   msg.Emails,
		Subject:  msg.Subject,
		Upazilas: hierarchy.Unique(req.Upazilas),
		Status:   StatusSent,
		SentAt:   s.now(),
	}
	sendErr := s.mailer.Send(ctx, msg)
	if sendErr != nil {
		entry.Status = StatusFailed
		entry.Error = sendErr.Error()
	}
	if err := s.logs.SaveAlert(ctx, entry); err != nil {
		s.logger.Error("failed to record alert", "alert_id", entry.ID, "error", err)
	}
	if sendErr != nil {
		s.logger.Warn("alert dispatch failed", "alert_id", entry.ID, "recipients", len(msg.Emails), "error", sendErr)
		return entry, apperrors.Wrap(apperrors.CodeUpstream, "failed to send alert email", sendErr)
	}
	s.logger.Info("alert dispatched", "alert_id", entry.ID, "recipients", len(msg.Emails), "upazilas", len(entry.Upazilas))
	return entry, nil
}

func (s *service) History(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.logs.ListAlerts(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStore, "failed to list alerts", err)
	}
	return entries, nil
}

func (s *service) records(ctx context.Context, req Request) ([]forecast.Record, error) {
	if strings.TrimSpace(req.RunID) == "" {
		return req.Records, nil
	}
	id, err := uuid.Parse(req.RunID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid run id", err)
	}
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeStore, "failed to load forecast run", err)
	}
	return run.Results, nil
}
