package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

type mockDispatcher struct {
	records  []models.AttendanceRecord
	courses  []models.Course
	sessions []models.AttendanceSession
	err      error

	calls     int
	lastPath  string
	lastQuery url.Values
}

func (m *mockDispatcher) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	m.calls++
	m.lastPath = path
	m.lastQuery = query
	if m.err != nil {
		return m.err
	}
	switch target := out.(type) {
	case *[]models.AttendanceRecord:
		*target = m.records
	case *[]models.Course:
		*target = m.courses
	case *[]models.AttendanceSession:
		*target = m.sessions
	}
	return nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestFetchWithoutSessionSkipsNetwork(t *testing.T) {
	client := &mockDispatcher{}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	records, err := svc.Fetch(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrContextMissing.Code))
	assert.Empty(t, records)
	assert.Zero(t, client.calls)
}

func TestFetchReplacesListWholesale(t *testing.T) {
	client := &mockDispatcher{records: []models.AttendanceRecord{
		{ID: 1, SessionID: 7, Status: "present"},
		{ID: 2, SessionID: 7, Status: "absent"},
	}}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	records, err := svc.Fetch(context.Background(), int64Ptr(7))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/attendance/records", client.lastPath)
	assert.Equal(t, "7", client.lastQuery.Get("session_id"))

	client.records = []models.AttendanceRecord{{ID: 3, SessionID: 7, Status: "late"}}
	records, err = svc.Fetch(context.Background(), int64Ptr(7))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
}

func TestFetchFailureRetainsPreviousList(t *testing.T) {
	client := &mockDispatcher{records: []models.AttendanceRecord{{ID: 1, SessionID: 7, Status: "present"}}}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	_, err := svc.Fetch(context.Background(), int64Ptr(7))
	require.NoError(t, err)

	client.err = errors.New("backend unavailable")
	records, err := svc.Fetch(context.Background(), int64Ptr(7))

	require.Error(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Len(t, svc.Records(), 1)
}

func TestEmptySessionYieldsZeroCounts(t *testing.T) {
	client := &mockDispatcher{}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	records, err := svc.Fetch(context.Background(), int64Ptr(42))
	require.NoError(t, err)
	assert.Empty(t, records)

	summary := svc.Summary()
	assert.Zero(t, summary.Present)
	assert.Zero(t, summary.Absent)
	assert.Zero(t, summary.Late)
	assert.Zero(t, summary.Unknown)
}

func TestSummaryCountsAreCaseInsensitiveAndTotal(t *testing.T) {
	client := &mockDispatcher{records: []models.AttendanceRecord{
		{ID: 1, Status: "Present"},
		{ID: 2, Status: "PRESENT"},
		{ID: 3, Status: "present"},
		{ID: 4, Status: "Absent"},
		{ID: 5, Status: "LATE"},
		{ID: 6, Status: "tardy"},
		{ID: 7, Status: ""},
	}}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	_, err := svc.Fetch(context.Background(), int64Ptr(7))
	require.NoError(t, err)

	summary := svc.Summary()
	assert.Equal(t, 3, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 2, summary.Unknown)
}

func TestResolveSnapshotURL(t *testing.T) {
	svc := NewRecordService(&mockDispatcher{}, "https://api.example.com", zap.NewNop())

	assert.Equal(t, "https://api.example.com/media/snap1.jpg", svc.ResolveSnapshotURL("/media/snap1.jpg"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", svc.ResolveSnapshotURL("https://cdn.example.com/x.jpg"))
	assert.Equal(t, "https://api.example.com/media/snap2.jpg", svc.ResolveSnapshotURL("media/snap2.jpg"))
	assert.Empty(t, svc.ResolveSnapshotURL(""))
}

func TestRefreshDelegatesToFetch(t *testing.T) {
	client := &mockDispatcher{records: []models.AttendanceRecord{{ID: 9, SessionID: 7, Status: "present"}}}
	svc := NewRecordService(client, "https://api.example.com", zap.NewNop())

	require.NoError(t, svc.Refresh(context.Background(), 7))
	assert.Len(t, svc.Records(), 1)
	assert.Equal(t, "7", client.lastQuery.Get("session_id"))
}
