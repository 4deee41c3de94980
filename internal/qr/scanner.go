package qr

import "sync"

// ScannerState is the arming state of a Scanner
type ScannerState int

const (
	// Armed accepts the next scan.
	Armed ScannerState = iota
	// Processing ignores scans until Rearm.
	Processing
)

func (s ScannerState) String() string {
	if s == Processing {
		return "processing"
	}
	return "armed"
}

// Scanner routes camera frames for one scan session. An unsupported code leaves it
// armed; the first actionable code disarms it so repeated frames of the same code
// start the flow only once.
type Scanner struct {
	mu    sync.Mutex
	state ScannerState
}

// NewScanner returns an armed scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan routes payload. ok is false when the scanner is processing and the frame was
// ignored.
func (s *Scanner) Scan(payload string) (d Dispatch, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Processing {
		return Dispatch{}, false
	}

	d = Route(payload)
	if d.Actionable() {
		s.state = Processing
	}

	return d, true
}

// Rearm accepts scans again, e.g. when the user returns to the camera.
func (s *Scanner) Rearm() {
	s.mu.Lock()
	s.state = Armed
	s.mu.Unlock()
}

// State returns the current arming state.
func (s *Scanner) State() ScannerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
