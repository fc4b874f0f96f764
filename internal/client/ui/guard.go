package ui

// AuthRoute is where unauthenticated visitors are sent.
const AuthRoute = "/auth"

type Action string

const (
	ActionPlaceholder Action = "placeholder"
	ActionRender      Action = "render"
	ActionRedirect    Action = "redirect"
)

type GuardInput struct {
	Authenticated bool
	Loading       bool
	Requested     string
}

// Decision tells a frontend what to do with a protected route. From carries
// the requested location so sign-in can return to it.
type Decision struct {
	Action Action
	To     string
	From   string
}

// Guard decides how a protected route is handled.
func Guard(in GuardInput) Decision {
	switch {
	case in.Loading:
		return Decision{Action: ActionPlaceholder}
	case in.Authenticated:
		return Decision{Action: ActionRender}
	default:
		return Decision{Action: ActionRedirect, To: AuthRoute, From: in.Requested}
	}
}
