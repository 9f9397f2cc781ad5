package accesslog

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerogate/internal/models"
)

var sample = []Entry{
	{ID: "LG-0004", Name: "Grace Hopper", Status: "access granted", Terminal: "LNG-04", Confidence: 93.1},
	{ID: "LG-0003", Name: "UNKNOWN", Status: "access denied", Terminal: "LNG-04", Confidence: 21.4},
	{ID: "LG-0002", Name: "Ada Lovelace", Status: "access granted", Terminal: "LNG-02", Confidence: 88},
	{ID: "LG-0001", Name: "Alan Turing", Status: "access denied", Terminal: "LNG-02", Confidence: 64.2},
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "zero value shows everything", filter: Filter{}, want: []string{"LG-0004", "LG-0003", "LG-0002", "LG-0001"}},
		{name: "granted button", filter: Filter{Status: ShowGranted}, want: []string{"LG-0004", "LG-0002"}},
		{name: "denied button", filter: Filter{Status: ShowDenied}, want: []string{"LG-0003", "LG-0001"}},
		{name: "search by name", filter: Filter{Query: "ada"}, want: []string{"LG-0002"}},
		{name: "search by id", filter: Filter{Query: "lg-0003"}, want: []string{"LG-0003"}},
		{name: "search by terminal", filter: Filter{Query: "LNG-02"}, want: []string{"LG-0002", "LG-0001"}},
		{name: "search and status combine", filter: Filter{Status: ShowDenied, Query: "lng-02"}, want: []string{"LG-0001"}},
		{name: "whitespace query ignored", filter: Filter{Query: "   "}, want: []string{"LG-0004", "LG-0003", "LG-0002", "LG-0001"}},
		{name: "no match", filter: Filter{Query: "hopper", Status: ShowDenied}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(sample))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	for in, want := range map[string]StatusFilter{
		"":         ShowAll,
		"ALL":      ShowAll,
		"granted":  ShowGranted,
		" Denied ": ShowDenied,
	} {
		got, err := ParseStatusFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatusFilter("pending")
	assert.Error(t, err)
}

func TestStatusFilterNext(t *testing.T) {
	assert.Equal(t, ShowGranted, ShowAll.Next())
	assert.Equal(t, ShowDenied, ShowGranted.Next())
	assert.Equal(t, ShowAll, ShowDenied.Next())
	assert.Equal(t, ShowAll, StatusFilter("bogus").Next())
}

func TestCounts(t *testing.T) {
	assert.Equal(t, Summary{Total: 4, Granted: 2, Denied: 2}, Counts(sample))
	assert.Equal(t, Summary{}, Counts(nil))
}

func TestFromRecord(t *testing.T) {
	rec := models.AccessRecord{
		Seq:        7,
		Name:       "Ada Lovelace",
		Status:     models.StatusGranted,
		Confidence: 87.123456,
		Terminal:   "LNG-04",
		Timestamp:  time.Date(2026, 10, 16, 14, 3, 9, 0, time.UTC),
	}
	want := Entry{
		ID:         "LG-0007",
		Name:       "Ada Lovelace",
		Timestamp:  "2026-10-16 14:03:09",
		Status:     "access granted",
		Terminal:   "LNG-04",
		Confidence: 87.12,
	}
	assert.Equal(t, want, FromRecord(rec))
	assert.Equal(t, "LG-12345", EntryID(12345))
}
