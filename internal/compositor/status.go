package compositor

import "fmt"

// Variant classifies a status message.
type Variant int

const (
	StatusOK Variant = iota
	StatusWarn
	StatusError
)

func (v Variant) String() string {
	switch v {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Status is the consumer-facing status line.
type Status struct {
	Text    string
	Variant Variant
}

var (
	statusActive   = Status{Text: "Overlay active - landmarks tracked.", Variant: StatusOK}
	statusNotFound = Status{Text: "Position your face within the frame.", Variant: StatusWarn}
)

// statusLine forwards status changes, dropping repeats.
type statusLine struct {
	fn      func(Status)
	current Status
	set     bool
}

func (s *statusLine) publish(st Status) {
	if s.set && st == s.current {
		return
	}
	s.current, s.set = st, true
	if s.fn != nil {
		s.fn(st)
	}
}
