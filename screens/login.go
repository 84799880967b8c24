package screens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-finance-client/gateway"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
)

const (
	loginPath       = "/api/login"
	masterLoginPath = "/api/master-login"

	messageFillAllFields = "Por favor, preencha todos os campos"
	messageInvalidLogin  = "Credenciais inválidas"
	messageMissingToken  = "Resposta de login inválida"
	messageSessionSave   = "Erro ao salvar sessão"
)

// LoginMode selects which login endpoint a LoginController talks to.
type LoginMode int

const (
	LoginStandard LoginMode = iota
	LoginMaster
)

func (m LoginMode) path() string {
	if m == LoginMaster {
		return masterLoginPath
	}
	return loginPath
}

// LoginForm holds the raw credentials as typed.
type LoginForm struct {
	Username string
	Password string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse covers both login endpoints. HasProfile is only sent by the
// standard login; an absent role means a regular user.
type LoginResponse struct {
	Token      string `json:"token"`
	UserID     flexID `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	HasProfile bool   `json:"has_profile"`
}

// LoginController drives the standard and master login screens.
type LoginController struct {
	submitGuard
	deps Deps
	mode LoginMode

	lock       sync.Mutex
	form       LoginForm
	hasProfile bool
}

func NewLoginController(deps Deps, mode LoginMode) *LoginController {
	return &LoginController{deps: deps, mode: mode}
}

// SetForm replaces the typed credentials.
func (c *LoginController) SetForm(form LoginForm) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.form = form
}

func (c *LoginController) Form() LoginForm {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.form
}

// HasProfile reports the has_profile flag of the last standard login.
func (c *LoginController) HasProfile() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.hasProfile
}

// Submit logs in with the current form. On success the whole session is
// written in one go and the navigator is replaced with the role's home route.
// On failure the form is kept so the user can retry.
func (c *LoginController) Submit(ctx context.Context) (navigation.Screen, error) {
	form := c.Form()
	if form.Username == "" || form.Password == "" {
		return c.deps.Navigator.Current(), c.deps.invalid(messageFillAllFields)
	}
	if err := c.begin(); err != nil {
		return c.deps.Navigator.Current(), err
	}

	var resp LoginResponse
	err := c.deps.Gateway.CallJSON(ctx, http.MethodPost, c.mode.path(), loginRequest{
		Username: form.Username,
		Password: form.Password,
	}, &resp, gateway.WithoutAuth())
	if err != nil {
		c.finish(StateIdle)
		log.Info().Str("username", form.Username).Int("mode", int(c.mode)).Msg("Login failed")
		return c.deps.Navigator.Current(), c.deps.fail(err, messageInvalidLogin)
	}
	if resp.Token == "" {
		c.finish(StateIdle)
		return c.deps.Navigator.Current(), c.deps.invalid(messageMissingToken)
	}

	role := sessions.ParseRole(resp.Role)
	session := sessions.Session{
		Token:    resp.Token,
		UserID:   string(resp.UserID),
		Username: resp.Username,
		Role:     role,
	}
	if err := c.deps.Sessions.Write(session); err != nil {
		c.finish(StateIdle)
		log.Err(err).Msg("Failed to persist session")
		return c.deps.Navigator.Current(), c.deps.fail(err, messageSessionSave)
	}

	c.lock.Lock()
	c.hasProfile = resp.HasProfile
	c.lock.Unlock()
	c.finish(StateAuthenticated)

	log.Info().Str("username", session.Username).Str("role", string(role)).Msg("Logged in")
	return c.deps.Navigator.Replace(navigation.ResolveHomeRoute(role)), nil
}

// flexID accepts an identifier sent either as a JSON string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(strings.TrimSpace(n.String()))
	return nil
}
