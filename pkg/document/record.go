// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"time"
)

// Column names of the persisted table, in file order.
const (
	ColumnDocumentName      = "DocumentName"
	ColumnUserEmail         = "UserEmail"
	ColumnExpiryDate        = "ExpiryDate"
	ColumnRenewalPeriodDays = "RenewalPeriodDays"
	ColumnLastAlertSent     = "LastAlertSent"
)

// Columns is the header row written to every store file.
var Columns = []string{
	ColumnDocumentName,
	ColumnUserEmail,
	ColumnExpiryDate,
	ColumnRenewalPeriodDays,
	ColumnLastAlertSent,
}

// DateLayout is the ISO-8601 calendar date layout used for expiry dates.
const DateLayout = "2006-01-02"

// Record is one tracked document.
type Record struct {
	Name       string `json:"documentName" yaml:"documentName"`
	OwnerEmail string `json:"ownerEmail" yaml:"ownerEmail"`
	// ExpiryDate is a calendar date at midnight UTC. nil means the stored
	// value was missing or could not be parsed.
	ExpiryDate        *time.Time `json:"expiryDate,omitempty" yaml:"expiryDate,omitempty"`
	RenewalPeriodDays int        `json:"renewalPeriodDays" yaml:"renewalPeriodDays"`
	// LastAlertSent is nil until the first reminder went out.
	LastAlertSent *time.Time `json:"lastAlertSent,omitempty" yaml:"lastAlertSent,omitempty"`
}

// Date truncates t to its calendar date in t's own location and returns that
// date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilExpiry returns the whole number of calendar days between the date
// of now and the expiry date. The result is negative for expired documents.
// ok is false when the expiry date is unknown.
func (r Record) DaysUntilExpiry(now time.Time) (days int, ok bool) {
	if r.ExpiryDate == nil {
		return 0, false
	}
	diff := Date(*r.ExpiryDate).Sub(Date(now))
	return int(diff.Hours() / 24), true
}

// ExpiryString formats the expiry date as YYYY-MM-DD, or "-" when unknown.
func (r Record) ExpiryString() string {
	if r.ExpiryDate == nil {
		return "-"
	}
	return r.ExpiryDate.Format(DateLayout)
}

// Clone returns a deep copy of the record so callers can mutate the pointer
// fields without touching the store's table.
func (r Record) Clone() Record {
	out := r
	if r.ExpiryDate != nil {
		t := *r.ExpiryDate
		out.ExpiryDate = &t
	}
	if r.LastAlertSent != nil {
		t := *r.LastAlertSent
		out.LastAlertSent = &t
	}
	return out
}

func cloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
