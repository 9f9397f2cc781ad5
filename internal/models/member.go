package models

import "time"

// Status is the outcome of a verification attempt as shown on the terminal.
type Status string

const (
	StatusGranted Status = "ACCESS GRANTED"
	StatusDenied  Status = "ACCESS DENIED"
)

// RegistrationStatus is the outcome of an enrollment.
type RegistrationStatus string

const (
	RegistrationSuccess RegistrationStatus = "SUCCESS"
	RegistrationFailed  RegistrationStatus = "FAILED"
)

// UnknownName is recorded when no registered member matched a scan.
const UnknownName = "UNKNOWN"

// Member is an enrolled lounge member.
type Member struct {
	ID        string    `json:"member_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Passport  string    `json:"passport"`
	Expiry    time.Time `json:"expiry"`
	Template  []float64 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the membership is still valid on the given day.
// Expiry is a calendar date, so a membership expiring today is still active.
func (m Member) Active(now time.Time) bool {
	return !m.Expiry.Before(Day(now))
}

// AccessRecord is one row of the access log.
type AccessRecord struct {
	Seq        int64     `json:"seq"`
	Name       string    `json:"name"`
	Passport   string    `json:"passport,omitempty"`
	Status     Status    `json:"status"`
	Confidence float64   `json:"confidence"`
	Terminal   string    `json:"terminal"`
	Timestamp  time.Time `json:"timestamp"`
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
