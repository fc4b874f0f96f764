package ui

import "sync"

type View string

const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

// Preferences is layout state. Only DarkMode is meant to be persisted.
type Preferences struct {
	mu          sync.Mutex
	sidebarOpen bool
	darkMode    bool
	views       map[string]View
}

// NewPreferences starts with an open sidebar and grid views.
func NewPreferences(darkMode bool) *Preferences {
	return &Preferences{sidebarOpen: true, darkMode: darkMode, views: map[string]View{}}
}

// ToggleSidebar flips the sidebar and returns the new value.
func (p *Preferences) ToggleSidebar() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = !p.sidebarOpen
	return p.sidebarOpen
}

// ToggleDarkMode flips dark mode and returns the new value.
func (p *Preferences) ToggleDarkMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.darkMode = !p.darkMode
	return p.darkMode
}

func (p *Preferences) SidebarOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sidebarOpen
}

func (p *Preferences) DarkMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.darkMode
}

// SetView records the layout for a page such as "tasks" or "teams".
func (p *Preferences) SetView(page string, v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views[page] = v
}

// View returns the layout for page, grid by default.
func (p *Preferences) View(page string) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.views[page]; ok {
		return v
	}
	return ViewGrid
}
