package access

import "fmt"

// Reasons reported to the terminal alongside a failed outcome.
const (
	ReasonNoFace          = "No face detected"
	ReasonNoMembers       = "No members registered"
	ReasonNoMatch         = "No matching member"
	ReasonExpired         = "Membership expired"
	ReasonInvalidExpiry   = "Invalid expiry date format"
	ReasonAlreadyExpired  = "Membership already expired"
	ReasonDuplicate       = "Passport already registered"
	ReasonDatabase        = "Database error occurred"
	ReasonSimulatedDenial = "Simulated denial"
)

// ValidationError represents a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
