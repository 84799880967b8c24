package screens

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/rs/zerolog/log"
)

const (
	expensesPath = "/api/expenses"

	messageExpenseRequired = "Categoria e valor são obrigatórios"
	messageInvalidAmount   = "Valor inválido"
	messageInvalidCategory = "Categoria inválida"
	messageInvalidMonths   = "Número de meses inválido"
	messageExpenseAdded    = "Gasto adicionado com sucesso!"
	messageExpenseFailed   = "Erro ao adicionar gasto"
)

// Categories are the selectable expense categories, in display order.
var Categories = []string{
	"Alimentação",
	"Transporte",
	"Moradia",
	"Saúde",
	"Educação",
	"Lazer",
	"Vestuário",
	"Conta",
	"Outros",
}

// ExpenseForm is the expense entry form as typed.
type ExpenseForm struct {
	Category         string
	Location         string
	Amount           string
	Notes            string
	IsRecurring      bool
	RecurrenceMonths string
}

// ExpenseRequest is the body of POST /api/expenses.
type ExpenseRequest struct {
	Category         string  `json:"category"`
	Location         *string `json:"location"`
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	Notes            *string `json:"notes"`
	IsRecurring      bool    `json:"is_recurring"`
	RecurrenceMonths *int    `json:"recurrence_months"`
}

// BuildExpenseRequest validates the form and stamps it with today's date.
func BuildExpenseRequest(form ExpenseForm, now time.Time) (ExpenseRequest, string, bool) {
	if form.Category == "" || form.Amount == "" {
		return ExpenseRequest{}, messageExpenseRequired, false
	}
	if !slices.Contains(Categories, form.Category) {
		return ExpenseRequest{}, messageInvalidCategory, false
	}
	amount, ok := ParsePositiveAmount(form.Amount)
	if !ok {
		return ExpenseRequest{}, messageInvalidAmount, false
	}

	var months *int
	if form.IsRecurring {
		n, ok := ParsePositiveInt(form.RecurrenceMonths)
		if !ok {
			return ExpenseRequest{}, messageInvalidMonths, false
		}
		months = &n
	}

	return ExpenseRequest{
		Category:         form.Category,
		Location:         utils.NilIfEmpty(form.Location),
		Date:             now.Format(time.DateOnly),
		Amount:           amount,
		Notes:            utils.NilIfEmpty(form.Notes),
		IsRecurring:      form.IsRecurring,
		RecurrenceMonths: months,
	}, "", true
}

// ExpenseController drives the add-expense screen.
type ExpenseController struct {
	submitGuard
	deps Deps

	lock sync.Mutex
	form ExpenseForm
}

func NewExpenseController(deps Deps) *ExpenseController {
	return &ExpenseController{deps: deps}
}

func (c *ExpenseController) SetForm(form ExpenseForm) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.form = form
}

func (c *ExpenseController) Form() ExpenseForm {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.form
}

// Submit records the expense and returns to the previous screen. The
// dashboard does not refresh on its own.
func (c *ExpenseController) Submit(ctx context.Context) (navigation.Screen, error) {
	req, message, ok := BuildExpenseRequest(c.Form(), c.deps.now())
	if !ok {
		return c.deps.Navigator.Current(), c.deps.invalid(message)
	}
	if err := c.begin(); err != nil {
		return c.deps.Navigator.Current(), err
	}
	defer c.finish(StateIdle)

	if err := c.deps.Gateway.CallJSON(ctx, http.MethodPost, expensesPath, req, nil); err != nil {
		return c.deps.Navigator.Current(), c.deps.fail(err, messageExpenseFailed)
	}

	log.Info().Str("category", req.Category).Bool("recurring", req.IsRecurring).Msg("Expense added")
	c.deps.Alerter.Alert(titleSuccess, messageExpenseAdded)
	return c.deps.Navigator.Back(), nil
}
