package models

// ScanState is the state of the live verification screen.
type ScanState string

const (
	ScanWaiting   ScanState = "waiting"
	ScanVerifying ScanState = "verifying"
	ScanGranted   ScanState = "granted"
	ScanDenied    ScanState = "denied"
)

// ScanDisplay is what the scanner panel shows for a state.
type ScanDisplay struct {
	State ScanState `json:"state"`
	Label string    `json:"label"`
	Hint  string    `json:"hint"`
}

// ScanStates lists every screen state in the order a scan moves through them.
var ScanStates = []ScanDisplay{
	{State: ScanWaiting, Label: "AWAITING SCAN", Hint: "Position face within the scanner frame"},
	{State: ScanVerifying, Label: "VERIFYING IDENTITY", Hint: "Analyzing biometric data..."},
	{State: ScanGranted, Label: "ACCESS GRANTED", Hint: "Welcome to the Premium Lounge"},
	{State: ScanDenied, Label: "ACCESS DENIED", Hint: "Verification failed — please try again"},
}

// Display returns the panel contents for s. Unknown states fall back to waiting.
func (s ScanState) Display() ScanDisplay {
	for _, d := range ScanStates {
		if d.State == s {
			return d
		}
	}
	return ScanStates[0]
}

// ScanStateFor maps a verification status onto the screen state it ends in.
func ScanStateFor(st Status) ScanState {
	if st == StatusGranted {
		return ScanGranted
	}
	return ScanDenied
}
