package navigation

import "github.com/jrsteele09/go-finance-client/sessions"

// Screen identifies a routable screen.
type Screen string

const (
	ScreenEntry       Screen = "index"
	ScreenMasterLogin Screen = "master-login"
	ScreenProfile     Screen = "profile"
	ScreenDashboard   Screen = "dashboard"
	ScreenAdminPanel  Screen = "admin-panel"
	ScreenAddExpense  Screen = "add-expense"
)

// Public reports whether the screen is reachable without a session.
func (s Screen) Public() bool {
	return s == ScreenEntry || s == ScreenMasterLogin
}

// ResolveHomeRoute is where a freshly authenticated session lands.
func ResolveHomeRoute(role sessions.RoleType) Screen {
	if role.IsAdministrative() {
		return ScreenAdminPanel
	}
	return ScreenDashboard
}

// RequireAuth reports whether the session may reach guarded screens.
// Role is not checked; the backend enforces privileges.
func RequireAuth(session sessions.Session) bool {
	return session.Authenticated()
}
