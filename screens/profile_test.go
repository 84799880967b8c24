package screens_test

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/screens"
	"github.com/stretchr/testify/require"
)

func TestBuildProfileRequest(t *testing.T) {
	t.Run("name required", func(t *testing.T) {
		_, msg, ok := screens.BuildProfileRequest(screens.ProfileForm{CPF: "123"})
		require.False(t, ok)
		require.Equal(t, "Nome completo é obrigatório", msg)
	})

	t.Run("empty optionals are null", func(t *testing.T) {
		req, _, ok := screens.BuildProfileRequest(screens.ProfileForm{FullName: "Ana"})
		require.True(t, ok)
		require.Equal(t, screens.ProfileRequest{FullName: "Ana"}, req)
	})

	t.Run("numbers parsed", func(t *testing.T) {
		req, _, ok := screens.BuildProfileRequest(screens.ProfileForm{
			FullName: "Ana", MonthlyIncome: "3500,75", IncomeDate: "5", Notes: "n",
		})
		require.True(t, ok)
		require.Equal(t, utils.Ptr(3500.75), req.MonthlyIncome)
		require.Equal(t, utils.Ptr(5), req.IncomeDate)
		require.Equal(t, utils.Ptr("n"), req.Notes)
	})

	t.Run("unparseable numbers rejected", func(t *testing.T) {
		_, msg, ok := screens.BuildProfileRequest(screens.ProfileForm{FullName: "Ana", MonthlyIncome: "muito"})
		require.False(t, ok)
		require.Equal(t, "Renda mensal inválida", msg)

		_, msg, ok = screens.BuildProfileRequest(screens.ProfileForm{FullName: "Ana", IncomeDate: "dia 5"})
		require.False(t, ok)
		require.Equal(t, "Dia de recebimento inválido", msg)
	})
}

func TestProfile_Submit(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "")
	f.loginAs(t, "ana", "pw")
	require.Equal(t, navigation.ScreenProfile, f.navigator.Push(navigation.ScreenProfile))
	f.backend.ResetRequests()

	ctl := screens.NewProfileController(f.deps)
	ctl.SetForm(screens.ProfileForm{FullName: "Ana Souza", MonthlyIncome: "1000.5"})
	screen, err := ctl.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, navigation.ScreenDashboard, screen)
	require.Equal(t, []navigation.Screen{navigation.ScreenDashboard}, f.navigator.Stack())
	require.Equal(t, alert{"Sucesso", "Perfil atualizado com sucesso!"}, f.alerter.last(t))
	require.JSONEq(t, `{
		"full_name": "Ana Souza",
		"cpf": null,
		"address": null,
		"family_id": null,
		"monthly_income": 1000.5,
		"income_date": null,
		"notes": null
	}`, f.backend.Requests()[0].Body)

	users := f.backend.Users()
	require.Equal(t, "Ana Souza", utils.Value(users[0].FullName))
}

func TestProfile_InvalidFormSendsNothing(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "")
	f.loginAs(t, "ana", "pw")
	f.backend.ResetRequests()

	ctl := screens.NewProfileController(f.deps)
	ctl.SetForm(screens.ProfileForm{CPF: "123"})
	_, err := ctl.Submit(context.Background())
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Empty(t, f.backend.Requests())
	require.Equal(t, alert{"Erro", "Nome completo é obrigatório"}, f.alerter.last(t))
}

func TestProfile_Load(t *testing.T) {
	f := setupTestFixture(t)
	f.addUser(t, "ana", "pw", "")
	f.loginAs(t, "ana", "pw")

	ctl := screens.NewProfileController(f.deps)
	ctl.SetForm(screens.ProfileForm{FullName: "Ana", CPF: "111", MonthlyIncome: "2500", IncomeDate: "10"})
	_, err := ctl.Submit(context.Background())
	require.NoError(t, err)

	reloaded := screens.NewProfileController(f.deps)
	require.NoError(t, reloaded.Load(context.Background()))
	require.Equal(t, screens.ProfileForm{FullName: "Ana", CPF: "111", MonthlyIncome: "2500", IncomeDate: "10"}, reloaded.Form())
}
