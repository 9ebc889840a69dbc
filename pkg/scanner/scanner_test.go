package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/telekom/doc-reminder/pkg/document"
	"github.com/telekom/doc-reminder/pkg/mail"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	failFor map[string]bool
	calls   []mail.Reminder
}

func (f *fakeNotifier) Notify(_ context.Context, r mail.Reminder) bool {
	f.calls = append(f.calls, r)
	return !f.failFor[r.To]
}

type fakeStore struct {
	records []document.Record
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeStore) Load() ([]document.Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.records, nil
}

func (f *fakeStore) Save(records []document.Record) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = records
	return nil
}

func inDays(n int) *time.Time {
	t := document.Date(fixedNow).AddDate(0, 0, n)
	return &t
}

func ago(d time.Duration) *time.Time {
	t := fixedNow.Add(-d)
	return &t
}

func newScanner(t *testing.T, store Store, n Notifier) *Scanner {
	return New(store, n, zaptest.NewLogger(t).Sugar()).WithClock(func() time.Time { return fixedNow })
}

func TestScan_DueWindow(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		renewal   int
		wantAlert bool
	}{
		{name: "one day left", days: 1, renewal: 7, wantAlert: true},
		{name: "window edge", days: 7, renewal: 7, wantAlert: true},
		{name: "inside long window", days: 29, renewal: 30, wantAlert: true},
		{name: "one day outside window", days: 8, renewal: 7, wantAlert: false},
		{name: "expires today", days: 0, renewal: 7, wantAlert: false},
		{name: "already expired", days: -3, renewal: 7, wantAlert: false},
		{name: "zero renewal period", days: 1, renewal: 0, wantAlert: false},
	}

	for _, tt := range tests {
		for _, last := range []*time.Time{nil, ago(48 * time.Hour), ago(time.Hour)} {
			t.Run(tt.name, func(t *testing.T) {
				n := &fakeNotifier{}
				s := newScanner(t, &fakeStore{}, n)
				records := []document.Record{{
					Name:              "Passport",
					OwnerEmail:        "a@x.com",
					ExpiryDate:        inDays(tt.days),
					RenewalPeriodDays: tt.renewal,
					LastAlertSent:     last,
				}}

				updated, res := s.Scan(context.Background(), records, fixedNow)

				throttled := last != nil && fixedNow.Sub(*last) < ThrottleWindow
				if tt.wantAlert && !throttled {
					require.Len(t, n.calls, 1)
					assert.Equal(t, tt.days, n.calls[0].DaysRemaining)
					assert.Equal(t, 1, res.AlertsSent)
					require.NotNil(t, updated[0].LastAlertSent)
					assert.True(t, fixedNow.Equal(*updated[0].LastAlertSent))
					return
				}
				assert.Empty(t, n.calls)
				assert.Zero(t, res.AlertsSent)
				assert.Equal(t, last, updated[0].LastAlertSent)
			})
		}
	}
}

func TestScan_Throttle(t *testing.T) {
	tests := []struct {
		name      string
		last      *time.Time
		wantAlert bool
	}{
		{name: "never alerted", last: nil, wantAlert: true},
		{name: "alerted 12 hours ago", last: ago(12 * time.Hour), wantAlert: false},
		{name: "alerted 23h59m ago", last: ago(24*time.Hour - time.Minute), wantAlert: false},
		{name: "alerted exactly 24 hours ago", last: ago(24 * time.Hour), wantAlert: true},
		{name: "alerted 25 hours ago", last: ago(25 * time.Hour), wantAlert: true},
		{name: "alert timestamp in the future", last: ago(-time.Hour), wantAlert: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			s := newScanner(t, &fakeStore{}, n)
			records := []document.Record{{Name: "Visa", OwnerEmail: "v@x.com", ExpiryDate: inDays(3), RenewalPeriodDays: 7, LastAlertSent: tt.last}}

			updated, res := s.Scan(context.Background(), records, fixedNow)

			assert.Equal(t, 1, res.Due)
			if tt.wantAlert {
				assert.Len(t, n.calls, 1)
				assert.Equal(t, 1, res.AlertsSent)
				assert.True(t, fixedNow.Equal(*updated[0].LastAlertSent))
			} else {
				assert.Empty(t, n.calls)
				assert.Equal(t, 1, res.Throttled)
				assert.Equal(t, tt.last, updated[0].LastAlertSent)
			}
		})
	}
}

func TestScan_SkipsUnknownExpiry(t *testing.T) {
	n := &fakeNotifier{}
	s := newScanner(t, &fakeStore{}, n)
	records := []document.Record{
		{Name: "Broken", OwnerEmail: "b@x.com", ExpiryDate: nil, RenewalPeriodDays: 7},
		{Name: "Passport", OwnerEmail: "a@x.com", ExpiryDate: inDays(2), RenewalPeriodDays: 7},
	}

	_, res := s.Scan(context.Background(), records, fixedNow)

	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.AlertsSent)
	require.Len(t, n.calls, 1)
	assert.Equal(t, "Passport", n.calls[0].DocumentName)
}

func TestScan_DoesNotModifyInput(t *testing.T) {
	s := newScanner(t, &fakeStore{}, &fakeNotifier{})
	records := []document.Record{{Name: "Passport", OwnerEmail: "a@x.com", ExpiryDate: inDays(2), RenewalPeriodDays: 7}}

	updated, res := s.Scan(context.Background(), records, fixedNow)

	assert.Equal(t, 1, res.AlertsSent)
	assert.Nil(t, records[0].LastAlertSent)
	assert.NotNil(t, updated[0].LastAlertSent)
}

func TestScan_StopsWhenContextDone(t *testing.T) {
	n := &fakeNotifier{}
	s := newScanner(t, &fakeStore{}, n)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updated, res := s.Scan(ctx, []document.Record{{Name: "Passport", OwnerEmail: "a@x.com", ExpiryDate: inDays(2), RenewalPeriodDays: 7}}, fixedNow)

	assert.Empty(t, n.calls)
	assert.Zero(t, res.Scanned)
	assert.Len(t, updated, 1)
}

func TestCheck_PassportScenario(t *testing.T) {
	store := document.NewStore(filepath.Join(t.TempDir(), "documents.csv"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, store.Append(document.Record{
		Name:              "Passport",
		OwnerEmail:        "a@x.com",
		ExpiryDate:        inDays(5),
		RenewalPeriodDays: 7,
	}))
	n := &fakeNotifier{}

	res, err := newScanner(t, store, n).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsSent)
	assert.True(t, res.Persisted)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, n.calls, 1)
	assert.Equal(t, 5, n.calls[0].DaysRemaining)
	assert.Equal(t, "a@x.com", n.calls[0].To)
	assert.Equal(t, *inDays(5), n.calls[0].ExpiryDate)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, Alert{Document: "Passport", Recipient: "a@x.com", DaysRemaining: 5}, res.Alerts[0])

	reloaded, err := document.NewStore(store.Path(), nil).Load()
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	require.NotNil(t, reloaded[0].LastAlertSent)
	assert.True(t, fixedNow.Equal(*reloaded[0].LastAlertSent))

	// A second check on the same day is throttled and writes nothing.
	res, err = newScanner(t, store, n).Check(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.AlertsSent)
	assert.Equal(t, 1, res.Throttled)
	assert.False(t, res.Persisted)
	assert.Len(t, n.calls, 1)
}

func TestCheck_FailedSendThenSuccess(t *testing.T) {
	store := &fakeStore{records: []document.Record{
		{Name: "Passport", OwnerEmail: "fails@x.com", ExpiryDate: inDays(3), RenewalPeriodDays: 7},
		{Name: "Visa", OwnerEmail: "works@x.com", ExpiryDate: inDays(4), RenewalPeriodDays: 7},
	}}
	n := &fakeNotifier{failFor: map[string]bool{"fails@x.com": true}}

	res, err := newScanner(t, store, n).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsSent)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, n.calls, 2, "a failed send must not stop the scan")
	assert.Equal(t, 1, store.saves)
	assert.Nil(t, store.records[0].LastAlertSent)
	require.NotNil(t, store.records[1].LastAlertSent)
	assert.True(t, fixedNow.Equal(*store.records[1].LastAlertSent))
}

func TestCheck_NoAlertsNoSave(t *testing.T) {
	store := &fakeStore{records: []document.Record{
		{Name: "Far away", OwnerEmail: "a@x.com", ExpiryDate: inDays(90), RenewalPeriodDays: 7},
		{Name: "Expired", OwnerEmail: "b@x.com", ExpiryDate: inDays(-1), RenewalPeriodDays: 7},
	}}

	res, err := newScanner(t, store, &fakeNotifier{}).Check(context.Background())

	require.NoError(t, err)
	assert.Zero(t, res.AlertsSent)
	assert.Zero(t, store.saves)
	assert.False(t, res.Persisted)
}

func TestCheck_AllSendsFailNoSave(t *testing.T) {
	store := &fakeStore{records: []document.Record{
		{Name: "Passport", OwnerEmail: "a@x.com", ExpiryDate: inDays(1), RenewalPeriodDays: 7},
	}}
	n := &fakeNotifier{failFor: map[string]bool{"a@x.com": true}}

	res, err := newScanner(t, store, n).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, store.saves)
}

func TestCheck_StoreErrors(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		store := &fakeStore{loadErr: errors.New("permission denied")}
		_, err := newScanner(t, store, &fakeNotifier{}).Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load documents")
	})

	t.Run("save", func(t *testing.T) {
		store := &fakeStore{
			records: []document.Record{{Name: "Passport", OwnerEmail: "a@x.com", ExpiryDate: inDays(1), RenewalPeriodDays: 7}},
			saveErr: errors.New("disk full"),
		}
		res, err := newScanner(t, store, &fakeNotifier{}).Check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist alert timestamps")
		assert.Equal(t, 1, res.AlertsSent)
		assert.False(t, res.Persisted)
	})
}
