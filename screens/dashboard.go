package screens

import (
	"context"
	"net/http"
	"sync"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/rs/zerolog/log"
)

const (
	gamificationPath = "/api/gamification"

	titleLogout   = "Sair"
	messageLogout = "Deseja realmente sair?"
	labelLogout   = "Sair"
)

// Gamification is the dashboard's points and streak display.
type Gamification struct {
	Points     int `json:"points"`
	StreakDays int `json:"streak_days"`
}

// DashboardController drives the primary user's home screen.
type DashboardController struct {
	deps Deps

	lock         sync.Mutex
	username     string
	gamification Gamification
}

func NewDashboardController(deps Deps) *DashboardController {
	return &DashboardController{deps: deps}
}

// Load reads the username from the session and fetches gamification. A failed
// fetch is logged and the zero values stay on screen.
func (c *DashboardController) Load(ctx context.Context) error {
	session, err := c.deps.Sessions.Read()
	if err != nil {
		log.Err(err).Msg("Failed to read session for dashboard")
	}
	c.lock.Lock()
	c.username = session.Username
	c.lock.Unlock()

	var g Gamification
	if err := c.deps.Gateway.CallJSON(ctx, http.MethodGet, gamificationPath, nil, &g); err != nil {
		return c.deps.failQuietly(err, "Failed to load gamification")
	}

	c.lock.Lock()
	c.gamification = g
	c.lock.Unlock()
	return nil
}

func (c *DashboardController) Username() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.username
}

func (c *DashboardController) Gamification() Gamification {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.gamification
}

// AddExpense opens the expense entry screen on top of the dashboard.
func (c *DashboardController) AddExpense() navigation.Screen {
	return c.deps.Navigator.Push(navigation.ScreenAddExpense)
}

// Logout asks for confirmation first. Declining leaves everything as is and
// returns ErrCancelled.
func (c *DashboardController) Logout() (navigation.Screen, error) {
	if !c.deps.Confirmer.Confirm(titleLogout, messageLogout, labelCancel, labelLogout) {
		return c.deps.Navigator.Current(), apperrors.ErrCancelled
	}
	if err := c.deps.logout(); err != nil {
		return c.deps.Navigator.Current(), err
	}
	return c.deps.Navigator.Current(), nil
}
