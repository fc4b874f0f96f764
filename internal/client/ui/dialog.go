// Package ui holds presentation state shared by client frontends.
package ui

import "sync"

const (
	DefaultConfirmLabel = "OK"
	DefaultCancelLabel  = "Cancel"
)

// DialogRequest opens a confirmation dialog. Empty labels take the defaults.
type DialogRequest struct {
	Title        string
	Content      string
	ConfirmLabel string
	CancelLabel  string
	OnConfirm    func()
	OnCancel     func()
}

// DialogState is a snapshot of the dialog without its callbacks.
type DialogState struct {
	Open         bool
	Title        string
	Content      string
	ConfirmLabel string
	CancelLabel  string
}

// Dialog is a single modal confirmation.
type Dialog struct {
	mu  sync.Mutex
	req DialogRequest
	on  bool
}

func NewDialog() *Dialog {
	return &Dialog{}
}

// Open replaces any open dialog.
func (d *Dialog) Open(req DialogRequest) {
	if req.ConfirmLabel == "" {
		req.ConfirmLabel = DefaultConfirmLabel
	}
	if req.CancelLabel == "" {
		req.CancelLabel = DefaultCancelLabel
	}
	d.mu.Lock()
	d.req = req
	d.on = true
	d.mu.Unlock()
}

// Confirm runs OnConfirm and closes. It is a no-op when closed.
func (d *Dialog) Confirm() {
	if fn, ok := d.close(true); ok && fn != nil {
		fn()
	}
}

// Cancel runs OnCancel and closes. It is a no-op when closed.
func (d *Dialog) Cancel() {
	if fn, ok := d.close(false); ok && fn != nil {
		fn()
	}
}

func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DialogState{
		Open:         d.on,
		Title:        d.req.Title,
		Content:      d.req.Content,
		ConfirmLabel: d.req.ConfirmLabel,
		CancelLabel:  d.req.CancelLabel,
	}
}

func (d *Dialog) close(confirm bool) (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.on {
		return nil, false
	}
	d.on = false
	fn := d.req.OnCancel
	if confirm {
		fn = d.req.OnConfirm
	}
	d.req.OnConfirm, d.req.OnCancel = nil, nil
	return fn, true
}
