package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/scanner"
)

// DocumentView is one row of the document listing.
type DocumentView struct {
	Name              string     `json:"name" yaml:"name"`
	OwnerEmail        string     `json:"ownerEmail" yaml:"ownerEmail"`
	ExpiryDate        string     `json:"expiryDate" yaml:"expiryDate"`
	DaysLeft          *int       `json:"daysLeft,omitempty" yaml:"daysLeft,omitempty"`
	RenewalPeriodDays int        `json:"renewalPeriodDays" yaml:"renewalPeriodDays"`
	Status            string     `json:"status" yaml:"status"`
	LastAlertSent     *time.Time `json:"lastAlertSent,omitempty" yaml:"lastAlertSent,omitempty"`
}

// DocumentViews derives the listing rows for records as seen at now.
func DocumentViews(records []document.Record, now time.Time) []DocumentView {
	views := make([]DocumentView, 0, len(records))
	for _, r := range records {
		status, days := scanner.Classify(r, now)
		v := DocumentView{
			Name:              r.Name,
			OwnerEmail:        r.OwnerEmail,
			ExpiryDate:        r.ExpiryString(),
			RenewalPeriodDays: r.RenewalPeriodDays,
			Status:            string(status),
			LastAlertSent:     r.LastAlertSent,
		}
		if status != scanner.StatusUnknown {
			d := days
			v.DaysLeft = &d
		}
		views = append(views, v)
	}
	return views
}

func WriteDocumentTable(w io.Writer, docs []DocumentView) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tEMAIL\tEXPIRES\tDAYS_LEFT\tSTATUS")
	for _, d := range docs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.OwnerEmail, d.ExpiryDate, formatDays(d.DaysLeft), d.Status)
	}
	_ = tw.Flush()
}

func WriteDocumentTableWide(w io.Writer, docs []DocumentView) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tEMAIL\tEXPIRES\tDAYS_LEFT\tRENEWAL_DAYS\tSTATUS\tLAST_ALERT")
	for _, d := range docs {
		lastAlert := "-"
		if d.LastAlertSent != nil {
			lastAlert = formatTime(*d.LastAlertSent)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", d.Name, d.OwnerEmail, d.ExpiryDate, formatDays(d.DaysLeft), d.RenewalPeriodDays, d.Status, lastAlert)
	}
	_ = tw.Flush()
}

// WriteCheckReport prints one line per reminder followed by the total.
func WriteCheckReport(w io.Writer, r scanner.Result) {
	if r.AlertsSent == 0 {
		_, _ = fmt.Fprintln(w, "No documents need alerts at this time.")
	} else {
		for _, a := range r.Alerts {
			_, _ = fmt.Fprintf(w, "Alert sent for %s to %s (%d days remaining)\n", a.Document, a.Recipient, a.DaysRemaining)
		}
		_, _ = fmt.Fprintf(w, "Sent %d alerts\n", r.AlertsSent)
	}
	if r.Failed > 0 {
		_, _ = fmt.Fprintf(w, "%d alerts could not be sent and will be retried on the next check\n", r.Failed)
	}
}

func formatDays(d *int) string {
	if d == nil {
		return "-"
	}
	return strconv.Itoa(*d)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
