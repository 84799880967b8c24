package navigation

import (
	"sync"

	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
)

// Navigator is a stack of screens guarded by the session store.
// Every transition to a non-public screen re-reads the session; without a
// token the stack is reset to the entry screen instead.
type Navigator struct {
	sessions sessions.Repo
	stack    []Screen
	lock     sync.Mutex
}

func NewNavigator(sessionRepo sessions.Repo) *Navigator {
	return &Navigator{
		sessions: sessionRepo,
		stack:    []Screen{ScreenEntry},
	}
}

// Start picks the first screen on app launch. A session carried over from a
// previous run goes straight to its home route.
func (n *Navigator) Start() Screen {
	session := n.readSession()

	n.lock.Lock()
	defer n.lock.Unlock()

	target := ScreenEntry
	if RequireAuth(session) {
		target = ResolveHomeRoute(session.ResolvedRole())
	}
	n.stack = []Screen{target}
	log.Debug().Str("screen", string(target)).Msg("Navigation start")
	return target
}

// Push opens screen on top of the stack and returns the screen actually shown.
func (n *Navigator) Push(screen Screen) Screen {
	if !n.allowed(screen) {
		return n.redirectToEntry(screen)
	}

	n.lock.Lock()
	defer n.lock.Unlock()
	n.stack = append(n.stack, screen)
	log.Debug().Str("screen", string(screen)).Msg("Navigation push")
	return screen
}

// Replace discards the stack and shows screen, so there is no way back.
func (n *Navigator) Replace(screen Screen) Screen {
	if !n.allowed(screen) {
		return n.redirectToEntry(screen)
	}

	n.lock.Lock()
	defer n.lock.Unlock()
	n.stack = []Screen{screen}
	log.Debug().Str("screen", string(screen)).Msg("Navigation replace")
	return screen
}

// Back pops the current screen. The root screen is never popped.
func (n *Navigator) Back() Screen {
	n.lock.Lock()
	defer n.lock.Unlock()

	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
	current := n.stack[len(n.stack)-1]
	log.Debug().Str("screen", string(current)).Msg("Navigation back")
	return current
}

func (n *Navigator) Current() Screen {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.stack[len(n.stack)-1]
}

// Stack returns a copy of the screens, root first.
func (n *Navigator) Stack() []Screen {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]Screen(nil), n.stack...)
}

func (n *Navigator) allowed(screen Screen) bool {
	if screen.Public() {
		return true
	}
	return RequireAuth(n.readSession())
}

func (n *Navigator) redirectToEntry(requested Screen) Screen {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.stack = []Screen{ScreenEntry}
	log.Info().Str("requested", string(requested)).Msg("No session, redirecting to entry screen")
	return ScreenEntry
}

func (n *Navigator) readSession() sessions.Session {
	session, err := n.sessions.Read()
	if err != nil {
		log.Err(err).Msg("Failed to read session, treating as logged out")
		return sessions.Session{}
	}
	return session
}
