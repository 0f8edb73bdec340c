package views

import "github.com/miportal/portal/internal/sessions"

// Screen is the top level screen selected from the session state.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenDashboard
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenLogin:
		return "login"
	case ScreenDashboard:
		return "dashboard"
	}
	return "unknown"
}

// Route picks the screen for a session state. A restore in progress always
// wins over the presence of a user.
func Route(state sessions.State) Screen {
	if state.Loading {
		return ScreenLoading
	}
	if state.User == nil {
		return ScreenLogin
	}
	return ScreenDashboard
}
