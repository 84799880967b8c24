// Package screens holds one controller per application screen. Controllers
// own their form state, talk to the backend through the gateway, and react to
// the outcome by writing the session store and moving the navigator.
package screens

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-finance-client/gateway"
	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
)

// User-facing copy
const (
	titleError   = "Erro"
	titleSuccess = "Sucesso"

	titleSessionExpired   = "Sessão expirada"
	messageSessionExpired = "Faça login novamente"

	labelCancel = "Cancelar"
)

// Alerter shows a blocking message box.
type Alerter interface {
	Alert(title, message string)
}

// Confirmer shows a two-button dialog whose confirm button is destructive.
// It returns true only when the confirm button was chosen.
type Confirmer interface {
	Confirm(title, message, cancelLabel, confirmLabel string) bool
}

// Caller is the part of the request gateway the screens use.
type Caller interface {
	CallJSON(ctx context.Context, method, path string, body, out any, options ...gateway.CallOption) error
}

var _ Caller = (*gateway.Client)(nil)

// Deps are the collaborators every controller needs.
type Deps struct {
	Gateway   Caller
	Sessions  sessions.Repo
	Navigator *navigation.Navigator
	Alerter   Alerter
	Confirmer Confirmer
	NowTime   func() time.Time // Injectable for testing, defaults to time.Now
}

func (d Deps) now() time.Time {
	if d.NowTime == nil {
		return time.Now()
	}
	return d.NowTime()
}

// State is where a form is in its submit cycle.
type State string

const (
	StateIdle          State = "idle"
	StateSubmitting    State = "submitting"
	StateAuthenticated State = "authenticated"
)

// submitGuard disables a screen's primary action while its request is out.
type submitGuard struct {
	lock  sync.Mutex
	state State
}

func (g *submitGuard) begin() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.state == StateSubmitting {
		return apperrors.ErrSubmissionInFlight
	}
	g.state = StateSubmitting
	return nil
}

func (g *submitGuard) finish(next State) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.state = next
}

// State returns the current submit state.
func (g *submitGuard) State() State {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.state == "" {
		return StateIdle
	}
	return g.state
}

// Submitting reports whether the primary action should be disabled.
func (g *submitGuard) Submitting() bool {
	return g.State() == StateSubmitting
}

// invalid alerts a local validation failure and returns it as an error.
func (d Deps) invalid(message string) error {
	d.Alerter.Alert(titleError, message)
	return gateway.Validation(message)
}

// fail surfaces a request failure. An expired session is cleared and the user
// is sent back to the entry screen to log in again.
func (d Deps) fail(err error, fallback string) error {
	if apperrors.Is(err, apperrors.ErrSessionExpired) {
		d.expireSession()
		return err
	}
	d.Alerter.Alert(titleError, gateway.MessageOr(err, fallback))
	return err
}

// failQuietly is fail for background loads: errors are logged, not alerted.
func (d Deps) failQuietly(err error, msg string) error {
	if apperrors.Is(err, apperrors.ErrSessionExpired) {
		d.expireSession()
		return err
	}
	log.Err(err).Msg(msg)
	return err
}

func (d Deps) expireSession() {
	log.Info().Msg("Session rejected by backend, logging out")
	d.Alerter.Alert(titleSessionExpired, messageSessionExpired)
	if err := d.Sessions.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear expired session")
	}
	d.Navigator.Replace(navigation.ScreenEntry)
}

// logout clears all session fields and returns to the entry screen.
func (d Deps) logout() error {
	if err := d.Sessions.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear session on logout")
		d.Alerter.Alert(titleError, "Erro ao sair")
		return apperrors.Wrapf(err, "logout")
	}
	d.Navigator.Replace(navigation.ScreenEntry)
	log.Info().Msg("Logged out")
	return nil
}
