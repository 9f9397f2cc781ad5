// Package accesslog formats access records as display rows and filters them
// the way the log viewer does.
package accesslog

import (
	"fmt"
	"math"
	"strings"

	"aerogate/internal/models"
)

// TimestampLayout is how log rows render their time.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one row of the access-log viewer.
type Entry struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Timestamp  string  `json:"timestamp" yaml:"timestamp"`
	Status     string  `json:"status" yaml:"status"`
	Terminal   string  `json:"terminal" yaml:"terminal"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// EntryID renders a log sequence number as a row id, e.g. LG-0042.
func EntryID(seq int64) string {
	return fmt.Sprintf("LG-%04d", seq)
}

// FromRecord converts a stored record into a display row.
func FromRecord(rec models.AccessRecord) Entry {
	return Entry{
		ID:         EntryID(rec.Seq),
		Name:       rec.Name,
		Timestamp:  rec.Timestamp.Format(TimestampLayout),
		Status:     strings.ToLower(string(rec.Status)),
		Terminal:   rec.Terminal,
		Confidence: Round2(rec.Confidence),
	}
}

// FromRecords converts records in order.
func FromRecords(recs []models.AccessRecord) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, FromRecord(r))
	}
	return out
}

// Granted reports whether the row is a granted entry.
func (e Entry) Granted() bool {
	return strings.Contains(strings.ToLower(e.Status), "granted")
}

// Denied reports whether the row is a denied entry.
func (e Entry) Denied() bool {
	return strings.Contains(strings.ToLower(e.Status), "denied")
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
