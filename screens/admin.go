package screens

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
)

const (
	adminUsersPath = "/api/admin/users"

	messageLoadUsersFailed = "Erro ao carregar usuários"
	messageFillFields      = "Preencha todos os campos"
	messageUserCreated     = "Usuário criado com sucesso!"
	messageCreateFailed    = "Erro ao criar usuário"
	titleConfirmDelete     = "Confirmar Exclusão"
	messageConfirmDelete   = "Deseja excluir o usuário %s?"
	labelDelete            = "Excluir"
	messageUserDeleted     = "Usuário excluído"
	messageDeleteFailed    = "Erro ao excluir"
	noNameLabel            = "Sem nome"
)

// AdminUser is one row of the admin user list.
type AdminUser struct {
	ID       flexID  `json:"id"`
	RecordID flexID  `json:"_id"`
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

// DisplayName is the full name, or a placeholder when none was set.
func (u AdminUser) DisplayName() string {
	if u.FullName == nil || *u.FullName == "" {
		return noNameLabel
	}
	return *u.FullName
}

// DeleteKey is the identifier used in the delete path.
func (u AdminUser) DeleteKey() string {
	if u.RecordID != "" {
		return string(u.RecordID)
	}
	return string(u.ID)
}

// NewUserForm is the create-user modal form.
type NewUserForm struct {
	Username string
	Password string
	FullName string
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// RoleLabel is the header badge for an administrative role.
func RoleLabel(role sessions.RoleType) string {
	if role == sessions.RoleMaster {
		return "Master"
	}
	return "Admin"
}

// AdminController drives the admin panel: user list, create modal and delete.
type AdminController struct {
	submitGuard
	deps Deps

	lock      sync.Mutex
	role      sessions.RoleType
	users     []AdminUser
	modalOpen bool
	form      NewUserForm
}

func NewAdminController(deps Deps) *AdminController {
	return &AdminController{deps: deps}
}

// Enter reads the role for display and loads the user list.
func (c *AdminController) Enter(ctx context.Context) error {
	session, err := c.deps.Sessions.Read()
	if err != nil {
		log.Err(err).Msg("Failed to read session for admin panel")
	}
	c.lock.Lock()
	c.role = session.ResolvedRole()
	c.lock.Unlock()
	return c.LoadUsers(ctx)
}

func (c *AdminController) Role() sessions.RoleType {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.role
}

// LoadUsers re-fetches the user list.
func (c *AdminController) LoadUsers(ctx context.Context) error {
	var users []AdminUser
	if err := c.deps.Gateway.CallJSON(ctx, http.MethodGet, adminUsersPath, nil, &users); err != nil {
		return c.deps.fail(err, messageLoadUsersFailed)
	}
	c.lock.Lock()
	c.users = users
	c.lock.Unlock()
	return nil
}

// Users returns a copy of the loaded list.
func (c *AdminController) Users() []AdminUser {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]AdminUser(nil), c.users...)
}

func (c *AdminController) OpenModal() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.modalOpen = true
}

// CloseModal hides the modal. The typed form is kept.
func (c *AdminController) CloseModal() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.modalOpen = false
}

func (c *AdminController) ModalOpen() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.modalOpen
}

func (c *AdminController) SetForm(form NewUserForm) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.form = form
}

func (c *AdminController) Form() NewUserForm {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.form
}

// CreateUser submits the modal form. On success the form is cleared, the
// modal closed and the list reloaded.
func (c *AdminController) CreateUser(ctx context.Context) error {
	form := c.Form()
	if anyEmpty(form.Username, form.Password, form.FullName) {
		return c.deps.invalid(messageFillFields)
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish(StateIdle)

	err := c.deps.Gateway.CallJSON(ctx, http.MethodPost, adminUsersPath, createUserRequest{
		Username: form.Username,
		Password: form.Password,
		FullName: form.FullName,
	}, nil)
	if err != nil {
		return c.deps.fail(err, messageCreateFailed)
	}

	log.Info().Str("username", form.Username).Msg("User created")
	c.deps.Alerter.Alert(titleSuccess, messageUserCreated)
	c.lock.Lock()
	c.form = NewUserForm{}
	c.modalOpen = false
	c.lock.Unlock()
	return c.LoadUsers(ctx)
}

// DeleteUser asks for confirmation, deletes the user and reloads the list.
// Declining sends nothing and returns ErrCancelled.
func (c *AdminController) DeleteUser(ctx context.Context, user AdminUser) error {
	message := fmt.Sprintf(messageConfirmDelete, user.Username)
	if !c.deps.Confirmer.Confirm(titleConfirmDelete, message, labelCancel, labelDelete) {
		return apperrors.ErrCancelled
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish(StateIdle)

	path := adminUsersPath + "/" + url.PathEscape(user.DeleteKey())
	if err := c.deps.Gateway.CallJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return c.deps.fail(err, messageDeleteFailed)
	}

	log.Info().Str("username", user.Username).Msg("User deleted")
	c.deps.Alerter.Alert(titleSuccess, messageUserDeleted)
	return c.LoadUsers(ctx)
}

// Logout clears the session without asking.
func (c *AdminController) Logout() (navigation.Screen, error) {
	if err := c.deps.logout(); err != nil {
		return c.deps.Navigator.Current(), err
	}
	return c.deps.Navigator.Current(), nil
}
