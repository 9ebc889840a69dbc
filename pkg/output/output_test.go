/*
SPDX-FileCopyrightText: 2026 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/telekom/doc-reminder/pkg/scanner"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "table", want: FormatTable},
		{in: "wide", want: FormatWide},
		{in: "json", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteObject_JSON(t *testing.T) {
	days := 5
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatJSON, []DocumentView{{Name: "Passport", ExpiryDate: "2026-10-24", DaysLeft: &days, Status: "due"}})
	require.NoError(t, err)

	var result []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, "Passport", result[0]["name"])
	assert.Equal(t, float64(5), result[0]["daysLeft"])
	assert.NotContains(t, result[0], "lastAlertSent")
}

func TestWriteObject_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatYAML, scanner.Result{RunID: "abc", AlertsSent: 1, Alerts: []scanner.Alert{{Document: "Passport", Recipient: "a@x.com", DaysRemaining: 5}}})
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "abc", result["runID"])
	assert.Equal(t, 1, result["alertsSent"])
}

func TestWriteObject_TableFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatTable, struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table format requires a specific formatter")
}

func TestWriteObject_UnknownFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, Format("invalid"), struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format: invalid")
}

func TestWriteObject_OutputEndsWithNewline(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, WriteObject(buf, format, map[string]string{"key": "value"}))
			assert.True(t, strings.HasSuffix(buf.String(), "\n"), "output should end with newline")
		})
	}
}
