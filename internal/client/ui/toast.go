package ui

import "sync"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

type ToastState struct {
	Open     bool
	Message  string
	Severity Severity
}

// Toast is a single transient message.
type Toast struct {
	mu    sync.Mutex
	state ToastState
}

func NewToast() *Toast {
	return &Toast{state: ToastState{Severity: SeverityInfo}}
}

// Show replaces the current message. Unknown severities become info.
func (t *Toast) Show(message string, severity Severity) {
	if !severity.Valid() {
		severity = SeverityInfo
	}
	t.mu.Lock()
	t.state = ToastState{Open: true, Message: message, Severity: severity}
	t.mu.Unlock()
}

// Hide closes the toast and keeps its last message.
func (t *Toast) Hide() {
	t.mu.Lock()
	t.state.Open = false
	t.mu.Unlock()
}

func (t *Toast) State() ToastState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
