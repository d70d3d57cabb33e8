package service

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
)

type dispatcher interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
}

// CourseService reads the course catalogue. Courses are a read-only projection
// of server state; nothing is cached beyond the caller's lifetime.
type CourseService struct {
	client dispatcher
	logger *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(client dispatcher, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{client: client, logger: logger}
}

// List fetches all courses visible to the signed-in user.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.client.Get(ctx, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
