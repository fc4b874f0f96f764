package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialog(t *testing.T) {
	d := NewDialog()
	var confirmed, cancelled int

	d.Open(DialogRequest{
		Title:     "Delete task",
		Content:   "This cannot be undone",
		OnConfirm: func() { confirmed++ },
		OnCancel:  func() { cancelled++ },
	})
	state := d.State()
	assert.True(t, state.Open)
	assert.Equal(t, "OK", state.ConfirmLabel)
	assert.Equal(t, "Cancel", state.CancelLabel)

	d.Confirm()
	d.Confirm()
	assert.Equal(t, 1, confirmed)
	assert.Zero(t, cancelled)
	assert.False(t, d.State().Open)

	d.Open(DialogRequest{Title: "Leave", ConfirmLabel: "Leave", OnCancel: func() { cancelled++ }})
	assert.Equal(t, "Leave", d.State().ConfirmLabel)
	d.Cancel()
	assert.Equal(t, 1, cancelled)
}

func TestToast(t *testing.T) {
	toast := NewToast()
	assert.False(t, toast.State().Open)

	toast.Show("Saved", SeveritySuccess)
	assert.Equal(t, ToastState{Open: true, Message: "Saved", Severity: SeveritySuccess}, toast.State())

	toast.Show("Heads up", "")
	assert.Equal(t, SeverityInfo, toast.State().Severity)

	toast.Hide()
	assert.False(t, toast.State().Open)
	assert.Equal(t, "Heads up", toast.State().Message)
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name string
		in   GuardInput
		want Decision
	}{
		{"loading", GuardInput{Loading: true, Requested: "/my-tasks"}, Decision{Action: ActionPlaceholder}},
		{"authenticated", GuardInput{Authenticated: true, Requested: "/teams"}, Decision{Action: ActionRender}},
		{"anonymous", GuardInput{Requested: "/teams"}, Decision{Action: ActionRedirect, To: "/auth", From: "/teams"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.in))
		})
	}
}

func TestPreferences(t *testing.T) {
	p := NewPreferences(false)
	assert.True(t, p.SidebarOpen())
	assert.False(t, p.ToggleSidebar())
	assert.True(t, p.ToggleDarkMode())
	assert.True(t, p.DarkMode())

	assert.Equal(t, ViewGrid, p.View("tasks"))
	p.SetView("tasks", ViewList)
	assert.Equal(t, ViewList, p.View("tasks"))
}
