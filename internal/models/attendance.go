package models

import "strings"

// AttendanceStatus is the normalized display status for a record.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusUnknown AttendanceStatus = "unknown"
)

// NormalizeStatus maps a server-provided status string onto a display status.
// Matching is case-insensitive and total: anything unrecognized, including an
// empty string, degrades to unknown rather than erroring.
func NormalizeStatus(raw string) AttendanceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present":
		return AttendanceStatusPresent
	case "absent":
		return AttendanceStatusAbsent
	case "late":
		return AttendanceStatusLate
	default:
		return AttendanceStatusUnknown
	}
}

// AttendanceRecord is one server-created attendance row. Records are never
// created locally; the client only triggers their creation via snapshot upload
// and re-reads the resulting set.
type AttendanceRecord struct {
	ID          int64    `json:"id"`
	SessionID   int64    `json:"session_id"`
	StudentID   *int64   `json:"student_id,omitempty"`
	StudentName *string  `json:"student_name,omitempty"`
	Status      string   `json:"status"`
	Confidence  *float64 `json:"confidence,omitempty"`
	SnapshotURL *string  `json:"snapshot_url,omitempty"`
}

// DisplayStatus returns the normalized status for rendering and counting.
func (r AttendanceRecord) DisplayStatus() AttendanceStatus {
	return NormalizeStatus(r.Status)
}

// AttendanceSummary aggregates a record list by normalized status. Unknown is
// tracked separately and never contributes to the three recognized counts.
type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Unknown int `json:"unknown"`
}

// Summarize recomputes the aggregate counts for the given record list.
func Summarize(records []AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	for _, r := range records {
		switch r.DisplayStatus() {
		case AttendanceStatusPresent:
			s.Present++
		case AttendanceStatusAbsent:
			s.Absent++
		case AttendanceStatusLate:
			s.Late++
		default:
			s.Unknown++
		}
	}
	return s
}
