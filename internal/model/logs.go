// internal/model/logs.go
package model

import "strings"

// LogEntry represents a single action recorded by the tracker for an employee
type LogEntry struct {
	Timestamp  string  `json:"timestamp"`
	EmployeeID string  `json:"employee_id"`
	FullName   *string `json:"full_name"`
	Action     string  `json:"action"`
}

// DisplayTime returns the time portion of the timestamp.
// "2024-01-01 08:15:00" becomes "08:15:00"; a bare time is returned as is.
func (e LogEntry) DisplayTime() string {
	if _, after, ok := strings.Cut(e.Timestamp, " "); ok {
		return after
	}
	return e.Timestamp
}

// Name returns the employee's display name or "" when the server has none
func (e LogEntry) Name() string {
	if e.FullName == nil {
		return ""
	}
	return *e.FullName
}
