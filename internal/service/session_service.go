package service

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
)

// SessionService reads attendance sessions.
type SessionService struct {
	client dispatcher
	logger *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(client dispatcher, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{client: client, logger: logger}
}

// List fetches attendance sessions, filtered to one course when courseID is set.
func (s *SessionService) List(ctx context.Context, courseID *int64) ([]models.AttendanceSession, error) {
	var query url.Values
	if courseID != nil {
		query = url.Values{"course_id": []string{strconv.FormatInt(*courseID, 10)}}
	}

	var sessions []models.AttendanceSession
	if err := s.client.Get(ctx, "/attendance/sessions", query, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
