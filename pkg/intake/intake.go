// Package intake validates new document submissions and appends them to the
// record store.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/system"
)

const (
	DefaultRenewalPeriodDays = 7
	MaxRenewalPeriodDays     = 365
)

// Submission holds the raw field values of one "add document" request.
type Submission struct {
	DocumentName string
	OwnerEmail   string
	// ExpiryDate is a YYYY-MM-DD calendar date.
	ExpiryDate        string
	RenewalPeriodDays int
}

// ValidationError lists every problem with a submission. Nothing is written
// when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in all fields: " + strings.Join(e.Fields, ", ")
}

// Appender is the part of the record store intake writes to.
type Appender interface {
	Append(r document.Record) error
}

type Intake struct {
	store Appender
	log   *zap.SugaredLogger
}

func New(store Appender, log *zap.SugaredLogger) *Intake {
	return &Intake{store: store, log: log.Named("intake")}
}

// Add validates s and appends the resulting record with no alert sent yet.
func (in *Intake) Add(ctx context.Context, s Submission) (document.Record, error) {
	rec, err := Validate(s)
	if err != nil {
		in.log.Infow("Rejected document submission", "error", err)
		return document.Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return document.Record{}, err
	}
	if err := in.store.Append(rec); err != nil {
		return document.Record{}, fmt.Errorf("add document %q: %w", rec.Name, err)
	}
	in.log.Infow("Document added", append(system.DocumentFields(rec.Name, rec.OwnerEmail),
		"expiryDate", rec.ExpiryString(),
		"renewalPeriodDays", rec.RenewalPeriodDays)...)
	return rec, nil
}

// Validate turns a submission into a record or reports every missing or
// malformed field at once.
func Validate(s Submission) (document.Record, error) {
	var problems []string
	name := strings.TrimSpace(s.DocumentName)
	email := strings.TrimSpace(s.OwnerEmail)
	rawDate := strings.TrimSpace(s.ExpiryDate)

	if name == "" {
		problems = append(problems, "document name is required")
	}
	if email == "" {
		problems = append(problems, "owner email is required")
	}

	var expiry time.Time
	if rawDate == "" {
		problems = append(problems, "expiry date is required")
	} else {
		t, err := time.Parse(document.DateLayout, rawDate)
		if err != nil {
			problems = append(problems, fmt.Sprintf("expiry date %q is not a YYYY-MM-DD date", rawDate))
		} else {
			expiry = document.Date(t)
		}
	}

	if s.RenewalPeriodDays < 1 || s.RenewalPeriodDays > MaxRenewalPeriodDays {
		problems = append(problems, fmt.Sprintf("renewal period must be between 1 and %d days", MaxRenewalPeriodDays))
	}

	if len(problems) > 0 {
		return document.Record{}, &ValidationError{Fields: problems}
	}
	return document.Record{
		Name:              name,
		OwnerEmail:        email,
		ExpiryDate:        &expiry,
		RenewalPeriodDays: s.RenewalPeriodDays,
	}, nil
}
