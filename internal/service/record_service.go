package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

// RecordService fetches a session's attendance records and derives the
// display-ready view: status counts and resolved snapshot locations. A fetch
// is idempotent and authoritative; on success the record list is replaced
// wholesale, on failure the previous list is retained.
type RecordService struct {
	client dispatcher
	origin string
	logger *zap.Logger

	mu      sync.RWMutex
	records []models.AttendanceRecord
}

// NewRecordService constructs a RecordService. origin is the scheme://host of
// the base endpoint, used to resolve relative snapshot paths.
func NewRecordService(client dispatcher, origin string, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{
		client: client,
		origin: strings.TrimRight(origin, "/"),
		logger: logger,
	}
}

// Fetch loads the record set for a session. A nil sessionID yields an empty
// list and a context error without touching the network.
func (s *RecordService) Fetch(ctx context.Context, sessionID *int64) ([]models.AttendanceRecord, error) {
	if sessionID == nil {
		s.mu.Lock()
		s.records = nil
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no session selected")
	}

	query := url.Values{"session_id": []string{strconv.FormatInt(*sessionID, 10)}}

	var fetched []models.AttendanceRecord
	if err := s.client.Get(ctx, "/attendance/records", query, &fetched); err != nil {
		s.logger.Warn("record fetch failed, keeping previous list",
			zap.Int64("session_id", *sessionID),
			zap.Error(err))
		return s.Records(), err
	}

	s.mu.Lock()
	s.records = fetched
	s.mu.Unlock()

	return fetched, nil
}

// Refresh re-reads the record set after an upload. Satisfies the capture
// workflow's refresher contract.
func (s *RecordService) Refresh(ctx context.Context, sessionID int64) error {
	_, err := s.Fetch(ctx, &sessionID)
	return err
}

// Records returns the current record list.
func (s *RecordService) Records() []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AttendanceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Summary recomputes the aggregate counts from the current record list.
func (s *RecordService) Summary() models.AttendanceSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Summarize(s.records)
}

// ResolveSnapshotURL turns a record's snapshot reference into a fetchable
// location. Absolute references pass through verbatim; relative paths are
// prefixed with the base endpoint's origin. Pure, with no failure mode: an
// empty reference resolves to nothing and the image is simply omitted.
func (s *RecordService) ResolveSnapshotURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.origin + path
}
