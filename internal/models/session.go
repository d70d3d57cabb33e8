package models

import "time"

// AttendanceSession is a scheduled class meeting against which attendance is
// recorded. Distinct from the client's authentication session.
type AttendanceSession struct {
	ID          int64      `json:"id"`
	CourseID    int64      `json:"course_id"`
	SessionDate string     `json:"session_date"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}
