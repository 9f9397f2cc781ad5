package accesslog

import (
	"fmt"
	"strings"
)

// StatusFilter selects rows by outcome.
type StatusFilter string

const (
	ShowAll     StatusFilter = "all"
	ShowGranted StatusFilter = "granted"
	ShowDenied  StatusFilter = "denied"
)

// StatusFilters is the order the viewer cycles through.
var StatusFilters = []StatusFilter{ShowAll, ShowGranted, ShowDenied}

// ParseStatusFilter accepts all, granted or denied in any case. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShowAll:
		return ShowAll, nil
	case ShowGranted:
		return ShowGranted, nil
	case ShowDenied:
		return ShowDenied, nil
	}
	return "", fmt.Errorf("unknown status filter %q (want all, granted or denied)", s)
}

// Next returns the filter after f in StatusFilters, wrapping around.
func (f StatusFilter) Next() StatusFilter {
	for i, s := range StatusFilters {
		if s == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return ShowAll
}

// Filter narrows a list of rows.
type Filter struct {
	Status StatusFilter
	Query  string
}

// Match reports whether e passes the filter. The query is a case-insensitive
// substring match against the row id, name and terminal.
func (f Filter) Match(e Entry) bool {
	switch f.Status {
	case ShowGranted:
		if !e.Granted() {
			return false
		}
	case ShowDenied:
		if !e.Denied() {
			return false
		}
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{e.ID, e.Name, e.Terminal} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching rows, preserving order.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Summary counts rows by outcome.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Granted int `json:"granted" yaml:"granted"`
	Denied  int `json:"denied" yaml:"denied"`
}

// Counts summarises entries.
func Counts(entries []Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch {
		case e.Granted():
			s.Granted++
		case e.Denied():
			s.Denied++
		}
	}
	return s
}
