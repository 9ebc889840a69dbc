package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Check metrics
	ChecksRun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docreminder_checks_total",
		Help: "Total number of expiry checks run",
	})
	RecordsScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docreminder_records_scanned_total",
		Help: "Total number of document records examined by expiry checks",
	})
	// RecordsSkipped is keyed by reason: unknown_expiry.
	RecordsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docreminder_records_skipped_total",
		Help: "Total number of records skipped by expiry checks",
	}, []string{"reason"})
	RecordsDue = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docreminder_records_due_total",
		Help: "Total number of records found inside their renewal window",
	})
	AlertsThrottled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docreminder_alerts_throttled_total",
		Help: "Total number of due records not alerted because an alert went out within the last day",
	})
	LastCheckTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "docreminder_last_check_timestamp_seconds",
		Help: "Unix time of the last completed expiry check",
	})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docreminder_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docreminder_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(ChecksRun)
	prometheus.MustRegister(RecordsScanned)
	prometheus.MustRegister(RecordsSkipped)
	prometheus.MustRegister(RecordsDue)
	prometheus.MustRegister(AlertsThrottled)
	prometheus.MustRegister(LastCheckTimestamp)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// exposition format, for pickup by the node-exporter textfile collector.
// The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
