package screens_test

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/screens"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Load(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "Ana")
	f.loginAs(t, "ana", "pw")

	ctl := screens.NewDashboardController(f.deps)
	require.NoError(t, ctl.Load(context.Background()))
	require.Equal(t, "ana", ctl.Username())
	require.Equal(t, screens.Gamification{}, ctl.Gamification())

	expense := screens.NewExpenseController(f.deps)
	expense.SetForm(screens.ExpenseForm{Category: "Lazer", Amount: "30"})
	_, err := expense.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctl.Load(context.Background()))
	require.Equal(t, screens.Gamification{Points: 1, StreakDays: 1}, ctl.Gamification())
}

func TestDashboard_LoadFailureIsQuiet(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "Ana")
	f.loginAs(t, "ana", "pw")
	f.server.Close()

	ctl := screens.NewDashboardController(f.deps)
	require.Error(t, ctl.Load(context.Background()))
	require.Equal(t, "ana", ctl.Username())
	require.Equal(t, screens.Gamification{}, ctl.Gamification())
	require.Empty(t, f.alerter.all())
}

func TestDashboard_AddExpenseWithoutSession(t *testing.T) {
	f := setupTestFixture(t)
	ctl := screens.NewDashboardController(f.deps)
	require.Equal(t, navigation.ScreenEntry, ctl.AddExpense())
}

func TestDashboard_LogoutDeclined(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "Ana")
	f.loginAs(t, "ana", "pw")
	f.confirmer.setAnswer(false)
	before := f.repo.Snapshot()

	screen, err := screens.NewDashboardController(f.deps).Logout()
	require.ErrorIs(t, err, apperrors.ErrCancelled)
	require.Equal(t, navigation.ScreenDashboard, screen)
	require.Equal(t, before, f.repo.Snapshot())
	require.Equal(t, []confirmation{{Title: "Sair", Message: "Deseja realmente sair?", Cancel: "Cancelar", Confirm: "Sair"}}, f.confirmer.all())

	_, _, clears := f.repo.Counts()
	require.Zero(t, clears)
}
