package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-finance-client/backendfake"
	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testFixture struct {
	backend *backendfake.Server
	url     string
	repo    *sessions.FileRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	backend := backendfake.New("cli-secret", backendfake.WithBcryptCost(bcrypt.MinCost))
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return &testFixture{
		backend: backend,
		url:     srv.URL,
		repo:    sessions.NewFileRepo(filepath.Join(t.TempDir(), "session.json")),
	}
}

// exec runs one command with a fresh app, as a new process would.
func (f *testFixture) exec(t *testing.T, stdin string, yes bool, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(f.url, f.repo, strings.NewReader(stdin), &out, yes)
	err := a.dispatch(context.Background(), args[0], args[1:])
	return out.String(), err
}

func TestCLI_UserJourney(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.backend.AddUser("ana", "pw", "")
	require.NoError(t, err)

	_, err = f.exec(t, "", false, "dashboard")
	require.ErrorIs(t, err, errLoginFirst)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	out, err := f.exec(t, "", false, "login", "-u", "ana", "-p", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "Tela: dashboard")
	require.Contains(t, out, "Complete seu perfil")

	out, err = f.exec(t, "", false, "profile", "-name", "Ana Souza", "-income", "1500,50")
	require.NoError(t, err)
	require.Contains(t, out, "[Sucesso] Perfil atualizado com sucesso!")

	out, err = f.exec(t, "", false, "add-expense", "-category", "lazer", "-amount", "12,5")
	require.NoError(t, err)
	require.Contains(t, out, "[Sucesso] Gasto adicionado com sucesso!")

	out, err = f.exec(t, "", false, "dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "Olá, ana!")
	require.Contains(t, out, "Pontos: 1")

	out, err = f.exec(t, "", false, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Papel: user")
	require.Contains(t, out, "Token válido")

	out, err = f.exec(t, "n\n", false, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Operação cancelada")
	require.NotContains(t, out, "Sessão encerrada")
	session, err := f.repo.Read()
	require.NoError(t, err)
	require.True(t, session.Authenticated())

	out, err = f.exec(t, "s\n", false, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Sessão encerrada")
	session, err = f.repo.Read()
	require.NoError(t, err)
	require.Equal(t, sessions.Session{}, session)
}

func TestCLI_AdminJourney(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.backend.AddMasterUser("root", "pw", sessions.RoleMaster))

	out, err := f.exec(t, "", false, "master-login", "-u", "root", "-p", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "Tela: admin-panel")

	out, err = f.exec(t, "", false, "admin", "create", "-u", "bia", "-p", "x", "-name", "Bia")
	require.NoError(t, err)
	require.Contains(t, out, "Painel Master")
	require.Contains(t, out, "bia")

	out, err = f.exec(t, "", true, "admin", "delete", "-id", "bia")
	require.NoError(t, err)
	require.Contains(t, out, "[Sucesso] Usuário excluído")
	require.Contains(t, out, "Nenhum usuário")
	require.Empty(t, f.backend.Users())

	out, err = f.exec(t, "", false, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Sessão encerrada")
}

func TestCLI_AdminDelete(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.backend.AddMasterUser("root", "pw", sessions.RoleMaster))
	_, err := f.backend.AddUser("bia", "x", "Bia")
	require.NoError(t, err)
	_, err = f.exec(t, "", false, "master-login", "-u", "root", "-p", "pw")
	require.NoError(t, err)

	t.Run("declined keeps the user", func(t *testing.T) {
		out, err := f.exec(t, "n\n", false, "admin", "delete", "-id", "bia")
		require.NoError(t, err)
		require.Contains(t, out, "Operação cancelada")
		require.Len(t, f.backend.Users(), 1)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.exec(t, "", true, "admin", "delete", "-id", "ghost")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		require.Len(t, f.backend.Users(), 1)
	})
}

func TestCLI_LoginValidation(t *testing.T) {
	f := setupTestFixture(t)
	out, err := f.exec(t, "", false, "login", "-u", "ana")
	require.Error(t, err)
	require.Contains(t, out, "[Erro] Por favor, preencha todos os campos")
	require.Empty(t, f.backend.Requests())
}

func TestTerminalConfirmer(t *testing.T) {
	var out bytes.Buffer
	for answer, want := range map[string]bool{"s\n": true, "sim\n": true, "y\n": true, "n\n": false, "\n": false, "": false} {
		c := &terminalConfirmer{in: bufioReader(answer), out: &out}
		require.Equal(t, want, c.Confirm("Sair", "Deseja realmente sair?", "Cancelar", "Sair"), answer)
	}
	require.True(t, (&terminalConfirmer{in: bufioReader(""), out: &out, assumeYes: true}).Confirm("a", "b", "c", "d"))
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
