// Package metrics defines Prometheus metrics for reminder checks, covering
// scanned records, due and throttled documents, and mail delivery.
package metrics
