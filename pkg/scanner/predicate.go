package scanner

import (
	"time"

	"github.com/telekom/doc-reminder/pkg/document"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusDue     Status = "due"
	StatusExpired Status = "expired"
	StatusUnknown Status = "unknown"
)

// IsDue reports whether a document expiring in daysUntilExpiry days is inside
// its renewal window. Documents expiring today or earlier are never due.
func IsDue(daysUntilExpiry, renewalPeriodDays int) bool {
	return daysUntilExpiry > 0 && daysUntilExpiry <= renewalPeriodDays
}

// ThrottleAllows reports whether a new reminder may go out at now given the
// time of the previous one.
func ThrottleAllows(lastAlertSent *time.Time, now time.Time) bool {
	if lastAlertSent == nil {
		return true
	}
	return now.Sub(*lastAlertSent) >= ThrottleWindow
}

// Classify returns the display status of r at now and the days left until
// expiry (zero when unknown).
func Classify(r document.Record, now time.Time) (Status, int) {
	days, ok := r.DaysUntilExpiry(now)
	switch {
	case !ok:
		return StatusUnknown, 0
	case days <= 0:
		return StatusExpired, days
	case IsDue(days, r.RenewalPeriodDays):
		return StatusDue, days
	default:
		return StatusOK, days
	}
}
