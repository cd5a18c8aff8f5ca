package session

// Signal identifies an attention-loss event reported by the quiz client.
type Signal string

const (
	SignalFocusLost Signal = "focus-lost"
	SignalHidden    Signal = "visibility-hidden"
)

// Monitor turns focus/visibility signals into advisory warnings while a quiz
// is in progress. Each signal raises its own warning; there is no debounce.
// Signals outside an in-progress session are ignored. Warnings never change
// score, never pause the timer, and never end the session.
type Monitor struct {
	session *Controller
}

func NewMonitor(c *Controller) *Monitor {
	return &Monitor{session: c}
}

// Report forwards one signal and reports whether a warning was raised.
func (m *Monitor) Report(sig Signal) bool {
	return m.session.warn(sig)
}
