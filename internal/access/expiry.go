package access

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidExpiry is returned when an expiry date matches none of the accepted layouts.
var ErrInvalidExpiry = errors.New("invalid expiry date format")

// expiryLayouts are tried in order: ISO, day-first with dashes,
// US month-first with slashes, ISO with slashes. Day and month take one or
// two digits.
var expiryLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"1/2/2006",
	"2006/1/2",
}

// ParseExpiry parses a membership expiry date in any accepted layout.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidExpiry
}
