package screens

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/rs/zerolog/log"
)

const (
	profilePath = "/api/profile"

	messageFullNameRequired = "Nome completo é obrigatório"
	messageInvalidIncome    = "Renda mensal inválida"
	messageInvalidIncomeDay = "Dia de recebimento inválido"
	messageProfileUpdated   = "Perfil atualizado com sucesso!"
	messageProfileFailed    = "Erro ao atualizar perfil"
)

// ProfileForm is the profile completion form as typed.
type ProfileForm struct {
	FullName      string
	CPF           string
	Address       string
	FamilyID      string
	MonthlyIncome string
	IncomeDate    string
	Notes         string
}

// ProfileRequest is the body of POST /api/profile. Empty optional fields are
// sent as null.
type ProfileRequest struct {
	FullName      string   `json:"full_name"`
	CPF           *string  `json:"cpf"`
	Address       *string  `json:"address"`
	FamilyID      *string  `json:"family_id"`
	MonthlyIncome *float64 `json:"monthly_income"`
	IncomeDate    *int     `json:"income_date"`
	Notes         *string  `json:"notes"`
}

type profileResponse struct {
	FullName      *string  `json:"full_name"`
	CPF           *string  `json:"cpf"`
	Address       *string  `json:"address"`
	FamilyID      *string  `json:"family_id"`
	MonthlyIncome *float64 `json:"monthly_income"`
	IncomeDate    *int     `json:"income_date"`
	Notes         *string  `json:"notes"`
}

// BuildProfileRequest validates the form and converts it to a request body.
// Numeric fields that are filled in but do not parse are rejected.
func BuildProfileRequest(form ProfileForm) (ProfileRequest, string, bool) {
	if form.FullName == "" {
		return ProfileRequest{}, messageFullNameRequired, false
	}
	income, ok := parseOptionalAmount(form.MonthlyIncome)
	if !ok {
		return ProfileRequest{}, messageInvalidIncome, false
	}
	incomeDay, ok := parseOptionalInt(form.IncomeDate)
	if !ok {
		return ProfileRequest{}, messageInvalidIncomeDay, false
	}
	return ProfileRequest{
		FullName:      form.FullName,
		CPF:           utils.NilIfEmpty(form.CPF),
		Address:       utils.NilIfEmpty(form.Address),
		FamilyID:      utils.NilIfEmpty(form.FamilyID),
		MonthlyIncome: income,
		IncomeDate:    incomeDay,
		Notes:         utils.NilIfEmpty(form.Notes),
	}, "", true
}

// ProfileController drives the profile completion screen.
type ProfileController struct {
	submitGuard
	deps Deps

	lock sync.Mutex
	form ProfileForm
}

func NewProfileController(deps Deps) *ProfileController {
	return &ProfileController{deps: deps}
}

func (c *ProfileController) SetForm(form ProfileForm) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.form = form
}

func (c *ProfileController) Form() ProfileForm {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.form
}

// Load pre-fills the form with the stored profile. Failures are logged and
// leave the form untouched.
func (c *ProfileController) Load(ctx context.Context) error {
	var resp profileResponse
	if err := c.deps.Gateway.CallJSON(ctx, http.MethodGet, profilePath, nil, &resp); err != nil {
		return c.deps.failQuietly(err, "Failed to load profile")
	}

	form := ProfileForm{
		FullName: utils.Value(resp.FullName),
		CPF:      utils.Value(resp.CPF),
		Address:  utils.Value(resp.Address),
		FamilyID: utils.Value(resp.FamilyID),
		Notes:    utils.Value(resp.Notes),
	}
	if resp.MonthlyIncome != nil {
		form.MonthlyIncome = strconv.FormatFloat(*resp.MonthlyIncome, 'f', -1, 64)
	}
	if resp.IncomeDate != nil {
		form.IncomeDate = strconv.Itoa(*resp.IncomeDate)
	}
	c.SetForm(form)
	return nil
}

// Submit saves the profile and moves on to the dashboard.
func (c *ProfileController) Submit(ctx context.Context) (navigation.Screen, error) {
	req, message, ok := BuildProfileRequest(c.Form())
	if !ok {
		return c.deps.Navigator.Current(), c.deps.invalid(message)
	}
	if err := c.begin(); err != nil {
		return c.deps.Navigator.Current(), err
	}
	defer c.finish(StateIdle)

	if err := c.deps.Gateway.CallJSON(ctx, http.MethodPost, profilePath, req, nil); err != nil {
		return c.deps.Navigator.Current(), c.deps.fail(err, messageProfileFailed)
	}

	log.Info().Msg("Profile updated")
	c.deps.Alerter.Alert(titleSuccess, messageProfileUpdated)
	return c.deps.Navigator.Replace(navigation.ScreenDashboard), nil
}
