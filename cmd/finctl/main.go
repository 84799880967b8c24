// finctl is a terminal front end for the finance tracker. Each subcommand
// drives one screen controller against the configured backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-finance-client/gateway"
	"github.com/jrsteele09/go-finance-client/internal/config"
	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/logging"
	"github.com/jrsteele09/go-finance-client/navigation"
	"github.com/jrsteele09/go-finance-client/screens"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/rs/zerolog/log"
)

var errLoginFirst = apperrors.Wrapf(apperrors.ErrNotAuthenticated, "faça login primeiro")

const usage = `Uso: finctl [-backend URL] [-yes] <comando> [opções]

Comandos:
  login          -u usuario -p senha
  master-login   -u usuario -p senha
  status
  dashboard
  profile        [-show] -name nome [-cpf] [-address] [-family] [-income] [-income-day] [-notes]
  add-expense    -category cat -amount valor [-location] [-notes] [-recurring -months n]
  admin list
  admin create   -u usuario -p senha -name nome
  admin delete   -id id
  logout
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	global := flag.NewFlagSet("finctl", flag.ContinueOnError)
	global.SetOutput(out)
	global.Usage = func() { fmt.Fprint(out, usage) }
	backendURL := global.String("backend", "", "backend base URL (overrides BACKEND_URL)")
	assumeYes := global.Bool("yes", false, "answer yes to confirmations")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("nenhum comando informado")
	}

	c, err := config.New()
	if err != nil {
		return err
	}
	log.Logger = logging.New(c.GetEnv(), c.GetLogLevel())

	baseURL := c.GetBackendURL()
	if *backendURL != "" {
		baseURL = strings.TrimRight(*backendURL, "/")
	}

	a := newApp(baseURL, sessions.NewFileRepo(c.GetSessionFile()), in, out, *assumeYes)
	return a.dispatch(context.Background(), global.Arg(0), global.Args()[1:])
}

type app struct {
	deps      screens.Deps
	sessions  sessions.Repo
	navigator *navigation.Navigator
	out       io.Writer
}

func newApp(baseURL string, repo sessions.Repo, in io.Reader, out io.Writer, assumeYes bool) *app {
	navigator := navigation.NewNavigator(repo)
	return &app{
		deps: screens.Deps{
			Gateway:   gateway.New(baseURL, repo),
			Sessions:  repo,
			Navigator: navigator,
			Alerter:   terminalAlerter{out: out},
			Confirmer: &terminalConfirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes},
			NowTime:   time.Now,
		},
		sessions:  repo,
		navigator: navigator,
		out:       out,
	}
}

// dispatch runs one command. A declined confirmation is not a failure.
func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	a.navigator.Start()

	err := a.command(ctx, command, args)
	if errors.Is(err, apperrors.ErrCancelled) {
		fmt.Fprintln(a.out, "Operação cancelada")
		return nil
	}
	return err
}

func (a *app) command(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, screens.LoginStandard, args)
	case "master-login":
		return a.login(ctx, screens.LoginMaster, args)
	case "status":
		return a.status()
	case "dashboard":
		return a.dashboard(ctx)
	case "profile":
		return a.profile(ctx, args)
	case "add-expense":
		return a.addExpense(ctx, args)
	case "admin":
		return a.admin(ctx, args)
	case "logout":
		return a.logout()
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("comando desconhecido %q", command)
	}
}

// open asks the navigator for screen. The guard answers with the entry
// screen when there is no session.
func (a *app) open(screen navigation.Screen, push bool) error {
	var shown navigation.Screen
	if push {
		shown = a.navigator.Push(screen)
	} else {
		shown = a.navigator.Replace(screen)
	}
	if shown != screen {
		return errLoginFirst
	}
	return nil
}

func (a *app) login(ctx context.Context, mode screens.LoginMode, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctl := screens.NewLoginController(a.deps, mode)
	ctl.SetForm(screens.LoginForm{Username: *username, Password: *password})
	screen, err := ctl.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Bem-vindo, %s! Tela: %s\n", *username, screen)
	if mode == screens.LoginStandard && !ctl.HasProfile() {
		fmt.Fprintln(a.out, "Complete seu perfil com: finctl profile -name \"Seu Nome\"")
	}
	return nil
}

func (a *app) status() error {
	session, err := a.sessions.Read()
	if err != nil {
		return err
	}
	if !session.Authenticated() {
		fmt.Fprintln(a.out, "Nenhuma sessão ativa")
		return nil
	}
	fmt.Fprintf(a.out, "Usuário: %s (id %s)\nPapel: %s\nTela inicial: %s\n",
		session.Username, session.UserID, session.ResolvedRole(), navigation.ResolveHomeRoute(session.ResolvedRole()))

	claims, err := session.Claims()
	if err != nil {
		log.Debug().Err(err).Msg("Token claims unavailable")
		return nil
	}
	if claims.ExpiresAt.IsZero() {
		return nil
	}
	state := "válido"
	if claims.Expired(time.Now()) {
		state = "expirado"
	}
	fmt.Fprintf(a.out, "Token %s até %s\n", state, claims.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	if err := a.open(navigation.ScreenDashboard, false); err != nil {
		return err
	}
	ctl := screens.NewDashboardController(a.deps)
	if err := ctl.Load(ctx); err != nil && a.navigator.Current() == navigation.ScreenEntry {
		return err
	}
	g := ctl.Gamification()
	fmt.Fprintf(a.out, "Olá, %s!\nPontos: %d\nSequência: %d dias\n", ctl.Username(), g.Points, g.StreakDays)
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(a.out)
	show := fs.Bool("show", false, "print the stored profile")
	name := fs.String("name", "", "full name")
	cpf := fs.String("cpf", "", "CPF")
	address := fs.String("address", "", "address")
	family := fs.String("family", "", "family id")
	income := fs.String("income", "", "monthly income")
	incomeDay := fs.String("income-day", "", "day of the month income arrives")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.open(navigation.ScreenProfile, true); err != nil {
		return err
	}

	ctl := screens.NewProfileController(a.deps)
	if *show {
		if err := ctl.Load(ctx); err != nil {
			return err
		}
		form := ctl.Form()
		fmt.Fprintf(a.out, "Nome: %s\nCPF: %s\nEndereço: %s\nFamília: %s\nRenda: %s\nDia: %s\nNotas: %s\n",
			form.FullName, form.CPF, form.Address, form.FamilyID, form.MonthlyIncome, form.IncomeDate, form.Notes)
		return nil
	}

	ctl.SetForm(screens.ProfileForm{
		FullName:      *name,
		CPF:           *cpf,
		Address:       *address,
		FamilyID:      *family,
		MonthlyIncome: *income,
		IncomeDate:    *incomeDay,
		Notes:         *notes,
	})
	_, err := ctl.Submit(ctx)
	return err
}

func (a *app) addExpense(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-expense", flag.ContinueOnError)
	fs.SetOutput(a.out)
	category := fs.String("category", "", "one of: "+strings.Join(screens.Categories, ", "))
	amount := fs.String("amount", "", "amount, comma or dot as decimal separator")
	location := fs.String("location", "", "where the money was spent")
	notes := fs.String("notes", "", "notes")
	recurring := fs.Bool("recurring", false, "repeat monthly")
	months := fs.String("months", "", "number of months when recurring")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.open(navigation.ScreenDashboard, false); err != nil {
		return err
	}
	if err := a.open(navigation.ScreenAddExpense, true); err != nil {
		return err
	}

	ctl := screens.NewExpenseController(a.deps)
	ctl.SetForm(screens.ExpenseForm{
		Category:         resolveCategory(*category),
		Location:         *location,
		Amount:           *amount,
		Notes:            *notes,
		IsRecurring:      *recurring,
		RecurrenceMonths: *months,
	})
	_, err := ctl.Submit(ctx)
	return err
}

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("informe list, create ou delete")
	}
	if err := a.open(navigation.ScreenAdminPanel, false); err != nil {
		return err
	}
	ctl := screens.NewAdminController(a.deps)

	switch args[0] {
	case "list":
		if err := ctl.Enter(ctx); err != nil {
			return err
		}
		a.printUsers(ctl)
		return nil
	case "create":
		fs := flag.NewFlagSet("admin create", flag.ContinueOnError)
		fs.SetOutput(a.out)
		username := fs.String("u", "", "username")
		password := fs.String("p", "", "password")
		name := fs.String("name", "", "full name")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		ctl.OpenModal()
		ctl.SetForm(screens.NewUserForm{Username: *username, Password: *password, FullName: *name})
		if err := ctl.CreateUser(ctx); err != nil {
			return err
		}
		a.printUsers(ctl)
		return nil
	case "delete":
		fs := flag.NewFlagSet("admin delete", flag.ContinueOnError)
		fs.SetOutput(a.out)
		id := fs.String("id", "", "user id or username")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := ctl.Enter(ctx); err != nil {
			return err
		}
		user, ok := findUser(ctl.Users(), *id)
		if !ok {
			return apperrors.Wrapf(apperrors.ErrNotFound, "usuário %q", *id)
		}
		if err := ctl.DeleteUser(ctx, user); err != nil {
			return err
		}
		a.printUsers(ctl)
		return nil
	default:
		return fmt.Errorf("subcomando admin desconhecido %q", args[0])
	}
}

func (a *app) printUsers(ctl *screens.AdminController) {
	session, _ := a.sessions.Read()
	fmt.Fprintf(a.out, "Painel %s\n", screens.RoleLabel(session.ResolvedRole()))
	users := ctl.Users()
	if len(users) == 0 {
		fmt.Fprintln(a.out, "Nenhum usuário")
		return
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%-6s %-20s %s\n", u.DeleteKey(), u.Username, u.DisplayName())
	}
}

func findUser(users []screens.AdminUser, key string) (screens.AdminUser, bool) {
	for _, u := range users {
		if u.DeleteKey() == key || u.Username == key {
			return u, true
		}
	}
	return screens.AdminUser{}, false
}

// logout follows the screen the session lands on: the admin panel logs out
// straight away, the dashboard asks first.
func (a *app) logout() error {
	session, err := a.sessions.Read()
	if err != nil {
		return err
	}
	if !session.Authenticated() {
		fmt.Fprintln(a.out, "Nenhuma sessão ativa")
		return nil
	}
	if session.ResolvedRole().IsAdministrative() {
		_, err = screens.NewAdminController(a.deps).Logout()
	} else {
		_, err = screens.NewDashboardController(a.deps).Logout()
	}
	if err != nil {
		return err
	}
	if a.navigator.Current() == navigation.ScreenEntry {
		fmt.Fprintln(a.out, "Sessão encerrada")
	}
	return nil
}

type terminalAlerter struct {
	out io.Writer
}

func (t terminalAlerter) Alert(title, message string) {
	fmt.Fprintf(t.out, "[%s] %s\n", title, message)
}

type terminalConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (t *terminalConfirmer) Confirm(title, message, cancelLabel, confirmLabel string) bool {
	if t.assumeYes {
		return true
	}
	fmt.Fprintf(t.out, "%s: %s [%s = n / %s = s] ", title, message, cancelLabel, confirmLabel)
	answer, err := t.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
