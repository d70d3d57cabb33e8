package models

// Course is a read-only projection of a course as served by the backend.
type Course struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	Title    string  `json:"title"`
	Program  *string `json:"program,omitempty"`
	Section  *string `json:"section,omitempty"`
	Semester *string `json:"semester,omitempty"`
}
