// Package scanner finds documents inside their renewal window and sends one
// reminder per document per day.
package scanner
