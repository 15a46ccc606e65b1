package auth

// Decision is the route guard's verdict for a protected view.
type Decision int

const (
	// ShowLoading renders a loading placeholder and nothing else.
	ShowLoading Decision = iota
	// RedirectToLogin sends the user to the login entry point, replacing
	// history so the protected page is not reachable via back-navigation.
	RedirectToLogin
	// Render grants access to the guarded children.
	Render
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect-to-login"
	case Render:
		return "render"
	default:
		return "show-loading"
	}
}

// Decide is the route guard: a pure function of the auth state, re-evaluated
// on every state change. No retries, no side effects.
func Decide(state State) Decision {
	switch state {
	case StateAuthenticated:
		return Render
	case StateAnonymous:
		return RedirectToLogin
	default:
		return ShowLoading
	}
}
