// Package document holds the tracked document records and the CSV-backed
// store they are persisted in.
package document
