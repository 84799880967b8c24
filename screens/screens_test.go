package screens_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-finance-client/backendfake"
	"github.com/jrsteele09/go-finance-client/gateway"
	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/screens"
	"github.com/jrsteele09/go-finance-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-finance-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type alert struct {
	Title   string
	Message string
}

type fakeAlerter struct {
	lock   sync.Mutex
	alerts []alert
}

func (a *fakeAlerter) Alert(title, message string) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.alerts = append(a.alerts, alert{Title: title, Message: message})
}

func (a *fakeAlerter) all() []alert {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]alert(nil), a.alerts...)
}

func (a *fakeAlerter) last(t *testing.T) alert {
	t.Helper()
	all := a.all()
	require.NotEmpty(t, all, "expected an alert")
	return all[len(all)-1]
}

type confirmation struct {
	Title, Message, Cancel, Confirm string
}

type fakeConfirmer struct {
	lock   sync.Mutex
	answer bool
	asked  []confirmation
}

func (c *fakeConfirmer) Confirm(title, message, cancelLabel, confirmLabel string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.asked = append(c.asked, confirmation{title, message, cancelLabel, confirmLabel})
	return c.answer
}

func (c *fakeConfirmer) setAnswer(answer bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.answer = answer
}

func (c *fakeConfirmer) all() []confirmation {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]confirmation(nil), c.asked...)
}

type testFixture struct {
	backend   *backendfake.Server
	server    *httptest.Server
	repo      *fakesessionrepo.FakeSessionRepo
	navigator *navigation.Navigator
	alerter   *fakeAlerter
	confirmer *fakeConfirmer
	deps      screens.Deps
	now       time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{now: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)}
	f.backend = backendfake.New("test-secret",
		backendfake.WithBcryptCost(bcrypt.MinCost),
		backendfake.WithNowTime(func() time.Time { return f.now }),
	)
	f.server = httptest.NewServer(f.backend)
	t.Cleanup(f.server.Close)

	f.repo = fakesessionrepo.NewFakeSessionRepo()
	f.navigator = navigation.NewNavigator(f.repo)
	f.alerter = &fakeAlerter{}
	f.confirmer = &fakeConfirmer{}
	f.deps = screens.Deps{
		Gateway:   gateway.New(f.server.URL, f.repo),
		Sessions:  f.repo,
		Navigator: f.navigator,
		Alerter:   f.alerter,
		Confirmer: f.confirmer,
		NowTime:   func() time.Time { return f.now },
	}
	return f
}

func (f *testFixture) addUser(t *testing.T, username, password, fullName string) int {
	t.Helper()
	id, err := f.backend.AddUser(username, password, fullName)
	require.NoError(t, err)
	return id
}

// loginAs runs the standard login screen for a primary user.
func (f *testFixture) loginAs(t *testing.T, username, password string) {
	t.Helper()
	ctl := screens.NewLoginController(f.deps, screens.LoginStandard)
	ctl.SetForm(screens.LoginForm{Username: username, Password: password})
	screen, err := ctl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, navigation.ScreenDashboard, screen)
}

// loginAsMaster runs the master login screen for an administrative user.
func (f *testFixture) loginAsMaster(t *testing.T, username, password string, role sessions.RoleType) {
	t.Helper()
	require.NoError(t, f.backend.AddMasterUser(username, password, role))
	ctl := screens.NewLoginController(f.deps, screens.LoginMaster)
	ctl.SetForm(screens.LoginForm{Username: username, Password: password})
	screen, err := ctl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, navigation.ScreenAdminPanel, screen)
}

// requestLines renders each request as "METHOD /path".
func requestLines(reqs []backendfake.Request) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

// blockingCaller holds every call until released so tests can observe the
// Submitting state.
type blockingCaller struct {
	entered chan struct{}
	release chan struct{}
	calls   int
	lock    sync.Mutex
}

func newBlockingCaller() *blockingCaller {
	return &blockingCaller{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingCaller) CallJSON(ctx context.Context, method, path string, body, out any, options ...gateway.CallOption) error {
	b.lock.Lock()
	b.calls++
	b.lock.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return &gateway.APIError{Kind: gateway.KindBackend, Status: http.StatusBadRequest, Detail: "nope"}
}

func (b *blockingCaller) callCount() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.calls
}

func TestLogoutFromEveryScreen(t *testing.T) {
	t.Run("dashboard", func(t *testing.T) {
		f := setupTestFixture(t)
		f.addUser(t, "ana", "pw", "Ana")
		f.loginAs(t, "ana", "pw")
		f.confirmer.setAnswer(true)

		screen, err := screens.NewDashboardController(f.deps).Logout()
		require.NoError(t, err)
		require.Equal(t, navigation.ScreenEntry, screen)
		require.Equal(t, sessions.Session{}, f.repo.Snapshot())
		require.Equal(t, []navigation.Screen{navigation.ScreenEntry}, f.navigator.Stack())
	})

	t.Run("admin panel", func(t *testing.T) {
		f := setupTestFixture(t)
		f.loginAsMaster(t, "root", "pw", sessions.RoleMaster)

		screen, err := screens.NewAdminController(f.deps).Logout()
		require.NoError(t, err)
		require.Equal(t, navigation.ScreenEntry, screen)
		require.Equal(t, sessions.Session{}, f.repo.Snapshot())
		require.Empty(t, f.confirmer.all())
	})
}

func TestSessionExpiry(t *testing.T) {
	f := setupTestFixture(t)
	f.repo = fakesessionrepo.NewFakeSessionRepoWith(sessions.Session{
		Token: "stale-token", UserID: "1", Username: "ana", Role: sessions.RoleUser,
	})
	f.navigator = navigation.NewNavigator(f.repo)
	f.deps.Sessions = f.repo
	f.deps.Navigator = f.navigator
	f.deps.Gateway = gateway.New(f.server.URL, f.repo)
	require.Equal(t, navigation.ScreenDashboard, f.navigator.Start())

	err := screens.NewDashboardController(f.deps).Load(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, alertSessionExpired, f.alerter.last(t))
	require.Equal(t, sessions.Session{}, f.repo.Snapshot())
	require.Equal(t, navigation.ScreenEntry, f.navigator.Current())
}

var alertSessionExpired = alert{Title: "Sessão expirada", Message: "Faça login novamente"}

var errWriteFailed = fakesessionrepo.ErrWriteFailed
