// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/mail"
	"github.com/telekom/doc-reminder/pkg/metrics"
)

// ThrottleWindow is the minimum time between two reminders for one record.
const ThrottleWindow = 24 * time.Hour

// Notifier delivers one reminder and reports whether it was accepted.
type Notifier interface {
	Notify(ctx context.Context, r mail.Reminder) bool
}

// Store is the persistence a Scanner reads from and writes back to.
type Store interface {
	Load() ([]document.Record, error)
	Save(records []document.Record) error
}

// Alert describes one reminder that was sent.
type Alert struct {
	Document      string `json:"document" yaml:"document"`
	Recipient     string `json:"recipient" yaml:"recipient"`
	DaysRemaining int    `json:"daysRemaining" yaml:"daysRemaining"`
}

// Result summarises one pass over the records.
type Result struct {
	RunID      string  `json:"runID" yaml:"runID"`
	Scanned    int     `json:"scanned" yaml:"scanned"`
	Skipped    int     `json:"skipped" yaml:"skipped"`
	Due        int     `json:"due" yaml:"due"`
	Throttled  int     `json:"throttled" yaml:"throttled"`
	Failed     int     `json:"failed" yaml:"failed"`
	AlertsSent int     `json:"alertsSent" yaml:"alertsSent"`
	Alerts     []Alert `json:"alerts,omitempty" yaml:"alerts,omitempty"`
	Persisted  bool    `json:"persisted" yaml:"persisted"`
}

type Scanner struct {
	store    Store
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func New(store Store, notifier Notifier, log *zap.SugaredLogger) *Scanner {
	return &Scanner{
		store:    store,
		notifier: notifier,
		log:      log.Named("scanner"),
		now:      time.Now,
	}
}

// WithClock replaces the time source used by Check.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Check loads the store, scans it and persists the table once if at least one
// reminder was sent. Store errors are returned; notification failures are
// only counted.
func (s *Scanner) Check(ctx context.Context) (Result, error) {
	records, err := s.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load documents: %w", err)
	}

	now := s.now()
	updated, res := s.Scan(ctx, records, now)

	metrics.ChecksRun.Inc()
	metrics.RecordsScanned.Add(float64(res.Scanned))
	metrics.RecordsSkipped.WithLabelValues("unknown_expiry").Add(float64(res.Skipped))
	metrics.RecordsDue.Add(float64(res.Due))
	metrics.AlertsThrottled.Add(float64(res.Throttled))

	if res.AlertsSent > 0 {
		if err := s.store.Save(updated); err != nil {
			return res, fmt.Errorf("persist alert timestamps: %w", err)
		}
		res.Persisted = true
	}
	metrics.LastCheckTimestamp.Set(float64(now.Unix()))

	s.log.Infow("Expiry check finished",
		"run", res.RunID,
		"scanned", res.Scanned,
		"due", res.Due,
		"throttled", res.Throttled,
		"failed", res.Failed,
		"alertsSent", res.AlertsSent,
		"persisted", res.Persisted)
	return res, nil
}

// Scan walks records in order and sends a reminder for every due record the
// throttle permits. It returns a copy of records in which LastAlertSent is set
// to now for every successful send; failed sends leave their record untouched
// and are not retried within the pass. The input slice is not modified.
func (s *Scanner) Scan(ctx context.Context, records []document.Record, now time.Time) ([]document.Record, Result) {
	res := Result{RunID: uuid.NewString()}
	updated := make([]document.Record, len(records))
	for i := range records {
		updated[i] = records[i].Clone()
	}

	log := s.log.With("run", res.RunID)
	for i := range updated {
		if ctx.Err() != nil {
			log.Warnw("Expiry check interrupted", "remaining", len(updated)-i, "error", ctx.Err())
			break
		}
		res.Scanned++
		rec := &updated[i]

		days, ok := rec.DaysUntilExpiry(now)
		if !ok {
			res.Skipped++
			log.Debugw("Skipping record with unknown expiry date", "index", i, "document", rec.Name)
			continue
		}
		if !IsDue(days, rec.RenewalPeriodDays) {
			continue
		}
		res.Due++
		if !ThrottleAllows(rec.LastAlertSent, now) {
			res.Throttled++
			log.Debugw("Reminder throttled", "document", rec.Name, "lastAlertSent", rec.LastAlertSent)
			continue
		}

		sent := s.notifier.Notify(ctx, mail.Reminder{
			To:            rec.OwnerEmail,
			DocumentName:  rec.Name,
			DaysRemaining: days,
			ExpiryDate:    *rec.ExpiryDate,
		})
		if !sent {
			res.Failed++
			continue
		}
		t := now
		rec.LastAlertSent = &t
		res.AlertsSent++
		res.Alerts = append(res.Alerts, Alert{Document: rec.Name, Recipient: rec.OwnerEmail, DaysRemaining: days})
		log.Infow("Alert sent", "document", rec.Name, "daysRemaining", days)
	}
	return updated, res
}
