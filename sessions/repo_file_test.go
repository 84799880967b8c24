package sessions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/stretchr/testify/require"
)

func newFileRepo(t *testing.T) *sessions.FileRepo {
	t.Helper()
	return sessions.NewFileRepo(filepath.Join(t.TempDir(), "nested", "session.json"))
}

func TestFileRepo_ReadEmpty(t *testing.T) {
	repo := newFileRepo(t)

	s, err := repo.Read()
	require.NoError(t, err)
	require.Equal(t, sessions.Session{}, s)
}

func TestFileRepo_WriteReadClear(t *testing.T) {
	repo := newFileRepo(t)
	want := sessions.Session{Token: "tok", UserID: "1", Username: "ana", Role: sessions.RoleMaster}

	require.NoError(t, repo.Write(want))

	got, err := repo.Read()
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(repo.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, repo.Clear())
	got, err = repo.Read()
	require.NoError(t, err)
	require.Equal(t, sessions.Session{}, got)

	// Clearing twice is fine
	require.NoError(t, repo.Clear())
}

func TestFileRepo_WriteOverwrites(t *testing.T) {
	repo := newFileRepo(t)

	require.NoError(t, repo.Write(sessions.Session{Token: "old", UserID: "1", Username: "a", Role: sessions.RoleAdmin}))
	require.NoError(t, repo.Write(sessions.Session{Token: "new", UserID: "2", Username: "b", Role: sessions.RoleUser}))

	got, err := repo.Read()
	require.NoError(t, err)
	require.Equal(t, sessions.Session{Token: "new", UserID: "2", Username: "b", Role: sessions.RoleUser}, got)
}

func TestFileRepo_PartialRead(t *testing.T) {
	repo := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0o700))
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`{"token":"tok"}`), 0o600))

	got, err := repo.Read()
	require.NoError(t, err)
	require.Equal(t, "tok", got.Token)
	require.Empty(t, got.UserID)
	require.Equal(t, sessions.RoleUser, got.ResolvedRole())
}

func TestFileRepo_CorruptFile(t *testing.T) {
	repo := newFileRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0o700))
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`{`), 0o600))

	_, err := repo.Read()
	require.Error(t, err)
}
