package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-attendance-cli/internal/models"
)

func TestCourseListHitsCoursesPath(t *testing.T) {
	client := &mockDispatcher{courses: []models.Course{
		{ID: 1, Code: "CS101", Title: "Intro", Program: strPtr("CS"), Section: strPtr("A")},
	}}
	svc := NewCourseService(client, zap.NewNop())

	courses, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/courses", client.lastPath)
	assert.Nil(t, client.lastQuery)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)
}
