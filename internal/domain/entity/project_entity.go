package entity

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ProjectStatus is a closed enumeration.
type ProjectStatus string

const (
	StatusActive    ProjectStatus = "ACTIVE"
	StatusOnHold    ProjectStatus = "ON_HOLD"
	StatusCompleted ProjectStatus = "COMPLETED"
)

// ProjectStatuses lists every valid status in display order.
var ProjectStatuses = []ProjectStatus{StatusActive, StatusOnHold, StatusCompleted}

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Project is a tracked unit of work. CreatedAt and UpdatedAt are owned by the store.
type Project struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Status             ProjectStatus `json:"status"`
	Deadline           time.Time     `json:"deadline"`
	AssignedTeamMember string        `json:"assignedTeamMember"`
	Budget             float64       `json:"budget"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// ProjectStats counts projects per status.
type ProjectStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	OnHold    int `json:"onHold"`
	Completed int `json:"completed"`
}

// local@domain.tld, no whitespace and exactly one @ between the parts.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmailAddress reports whether s looks like an email address. An assignee
// matching it receives assignment notifications.
func IsEmailAddress(s string) bool {
	return emailPattern.MatchString(s)
}

var ErrInvalidDeadline = errors.New("deadline must be an ISO 8601 date")

var deadlineLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDeadline normalizes an ISO 8601 date or date-time to a UTC timestamp.
// A bare date maps to midnight UTC.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDeadline
}
