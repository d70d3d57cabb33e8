package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/api"
	"github.com/noah-isme/smart-attendance-cli/internal/capture"
)

type multipartDispatcher interface {
	PostMultipart(ctx context.Context, path string, fields map[string]string, file api.FilePart, out interface{}) error
}

// AttendanceService submits captured snapshots to the attendance-marking
// endpoint. The call is atomic from the client's view: any failure surfaces as
// a whole, there is no partial-success state.
type AttendanceService struct {
	client multipartDispatcher
	logger *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(client multipartDispatcher, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{client: client, logger: logger}
}

// MarkAttendance uploads one snapshot for the given course and session. The
// server performs recognition and creates or updates records; the client
// re-reads the record set separately.
func (s *AttendanceService) MarkAttendance(ctx context.Context, courseID, sessionID int64, notes string, image *capture.Image) error {
	fields := map[string]string{
		"course_id":  strconv.FormatInt(courseID, 10),
		"session_id": strconv.FormatInt(sessionID, 10),
		"notes":      notes,
	}
	file := api.FilePart{
		FieldName: "image_file",
		FileName:  image.Name,
		MIMEType:  image.MIMEType,
		Data:      image.Data,
	}

	if err := s.client.PostMultipart(ctx, "/attendance/mark-face", fields, file, nil); err != nil {
		return err
	}

	s.logger.Info("snapshot uploaded",
		zap.Int64("course_id", courseID),
		zap.Int64("session_id", sessionID),
		zap.Int("bytes", len(image.Data)))
	return nil
}
