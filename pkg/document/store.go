// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPath is the store file used when nothing else is configured.
const DefaultPath = "documents.csv"

// expiryLayouts are tried in order when reading ExpiryDate. The later entries
// cover files written by tools that serialize dates with a time component.
var expiryLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

// alertLayouts are tried in order when reading LastAlertSent. Layouts without
// a zone are interpreted in the local time zone.
var alertLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// Store keeps the document table in memory and persists it as a CSV file.
// It is not safe for concurrent use and assumes it is the only writer of
// the file.
type Store struct {
	path    string
	log     *zap.SugaredLogger
	records []Record
	loaded  bool
}

// NewStore returns a store backed by the CSV file at path.
func NewStore(path string, log *zap.SugaredLogger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{path: path, log: log.Named("store")}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Records returns a copy of the in-memory table.
func (s *Store) Records() []Record {
	return cloneAll(s.records)
}

// Load reads the full table from disk. A missing file is created with only
// the header row and yields an empty table.
func (s *Store) Load() ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Infow("Store file not found, creating empty store", "path", s.path)
		if err := s.Save(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := s.decode(f)
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}
	s.records = records
	s.loaded = true
	s.log.Debugw("Store loaded", "path", s.path, "records", len(records))
	return cloneAll(records), nil
}

// Save replaces the persisted table with records. The file is written to a
// temporary sibling and renamed into place so readers never see a partial
// table. The in-memory table is only replaced once the rename succeeded.
func (s *Store) Save(records []Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := encode(tmp, records); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return fmt.Errorf("chmod store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace store %s: %w", s.path, err)
	}

	s.records = cloneAll(records)
	s.loaded = true
	s.log.Debugw("Store saved", "path", s.path, "records", len(records))
	return nil
}

// Append adds one record to the end of the table and persists the table.
func (s *Store) Append(r Record) error {
	if !s.loaded {
		if _, err := s.Load(); err != nil {
			return err
		}
	}
	next := append(s.Records(), r.Clone())
	return s.Save(next)
}

func encode(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Name,
			r.OwnerEmail,
			"",
			strconv.Itoa(r.RenewalPeriodDays),
			"",
		}
		if r.ExpiryDate != nil {
			row[2] = r.ExpiryDate.Format(DateLayout)
		}
		if r.LastAlertSent != nil {
			row[4] = r.LastAlertSent.Format(time.RFC3339Nano)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Store) decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range Columns[:4] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %s", required)
		}
	}

	var records []Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec := Record{
			Name:       get(ColumnDocumentName),
			OwnerEmail: get(ColumnUserEmail),
		}
		if v := get(ColumnExpiryDate); v != "" {
			t, err := parseExpiry(v)
			if err != nil {
				s.warn(&DateParseError{Row: row, Column: ColumnExpiryDate, Value: v, Err: err})
			} else {
				rec.ExpiryDate = &t
			}
		}
		if v := get(ColumnRenewalPeriodDays); v != "" {
			n, err := parseDays(v)
			if err != nil {
				s.warn(&DateParseError{Row: row, Column: ColumnRenewalPeriodDays, Value: v, Err: err})
			} else {
				rec.RenewalPeriodDays = n
			}
		}
		if v := get(ColumnLastAlertSent); v != "" {
			t, err := parseAlert(v)
			if err != nil {
				s.warn(&DateParseError{Row: row, Column: ColumnLastAlertSent, Value: v, Err: err})
			} else {
				rec.LastAlertSent = &t
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) warn(err *DateParseError) {
	s.log.Warnw("Treating unparseable field as unknown",
		"path", s.path,
		"row", err.Row,
		"column", err.Column,
		"value", err.Value,
		"error", err.Err)
}

func parseExpiry(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return Date(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseAlert(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range alertLayouts {
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseDays accepts plain integers and whole floats such as "7.0".
func parseDays(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number of days")
	}
	return int(f), nil
}
