// Package backendfake is an in-memory stand-in for the finance backend. It
// speaks the same HTTP contract the client screens consume and is used by
// tests and by cmd/fakebackend for local runs.
package backendfake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	RouteLogin        = "/api/login"
	RouteMasterLogin  = "/api/master-login"
	RouteProfile      = "/api/profile"
	RouteGamification = "/api/gamification"
	RouteExpenses     = "/api/expenses"
	RouteAdminUsers   = "/api/admin/users"
)

type Server struct {
	mux         *http.ServeMux
	handler     http.HandlerFunc
	metrics     *serverMetrics
	routes      []string
	secret      []byte
	tokenExpiry time.Duration
	bcryptCost  int
	nowTime     func() time.Time

	lock         sync.Mutex
	nextID       int
	users        map[int]*User
	masterUsers  map[string]*MasterUser
	expenses     []*Expense
	gamification map[int]*Gamification
	requests     []Request
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithTokenExpiry sets how long issued tokens stay valid.
func WithTokenExpiry(expiry time.Duration) ServerOption {
	return func(s *Server) {
		s.tokenExpiry = expiry
	}
}

// WithBcryptCost lowers the hashing cost, tests use bcrypt.MinCost.
func WithBcryptCost(cost int) ServerOption {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

func New(secret string, options ...ServerOption) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		metrics:      newServerMetrics(),
		secret:       []byte(secret),
		tokenExpiry:  24 * time.Hour,
		bcryptCost:   bcrypt.DefaultCost,
		nowTime:      time.Now,
		nextID:       1,
		users:        make(map[int]*User),
		masterUsers:  make(map[string]*MasterUser),
		gamification: make(map[int]*Gamification),
	}
	for _, opt := range options {
		opt(s)
	}
	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.APIMiddleware()...)
	return s
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteMasterLogin, s.MasterLoginHandler())

	s.RegisterRouteFunc("GET "+RouteProfile, s.GetProfileHandler())
	s.RegisterRouteFunc("POST "+RouteProfile, s.UpdateProfileHandler())
	s.RegisterRouteFunc("GET "+RouteGamification, s.GamificationHandler())
	s.RegisterRouteFunc("POST "+RouteExpenses, s.CreateExpenseHandler())

	s.RegisterRouteFunc("GET "+RouteAdminUsers, s.ListUsersHandler())
	s.RegisterRouteFunc("POST "+RouteAdminUsers, s.CreateUserHandler())
	s.RegisterRouteFunc("DELETE "+RouteAdminUsers+"/{id}", s.DeleteUserHandler())
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// Requests returns every request received so far, oldest first.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = nil
}

// AddUser seeds a primary user. An empty fullName leaves the profile incomplete.
func (s *Server) AddUser(username, password, fullName string) (int, error) {
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return 0, errors.Wrap(err, "[AddUser] hash password")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.primaryByUsername(username) != nil {
		return 0, fmt.Errorf("[AddUser] username %q already exists", username)
	}
	u := &User{ID: s.allocID(), Username: username, PasswordHash: hash}
	if fullName != "" {
		u.FullName = &fullName
	}
	s.users[u.ID] = u
	return u.ID, nil
}

// AddMasterUser seeds an administrative account.
func (s *Server) AddMasterUser(username, password string, role sessions.RoleType) error {
	if !role.IsAdministrative() {
		return errors.Wrapf(apperrors.ErrInvalidRole, "[AddMasterUser] role %q is not administrative", role)
	}
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "[AddMasterUser] hash password")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.masterUsers[username]; ok {
		return fmt.Errorf("[AddMasterUser] username %q already exists", username)
	}
	s.masterUsers[username] = &MasterUser{ID: s.allocID(), Username: username, PasswordHash: hash, Role: string(role)}
	return nil
}

// Users returns the primary users ordered by id.
func (s *Server) Users() []User {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sortedUsers()
}

// Expenses returns copies of the stored expenses.
func (s *Server) Expenses() []Expense {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, *e)
	}
	return out
}

// GamificationFor returns the user's points and streak.
func (s *Server) GamificationFor(userID int) Gamification {
	s.lock.Lock()
	defer s.lock.Unlock()
	if g, ok := s.gamification[userID]; ok {
		return *g
	}
	return Gamification{}
}

func (s *Server) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) primaryByUsername(username string) *User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Server) sortedUsers() []User {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Err(err).Msg("Failed to encode fake backend response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeFieldRequired(w http.ResponseWriter, field string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"detail": []map[string]interface{}{
			{"loc": []string{"body", field}, "msg": "field required", "type": "value_error.missing"},
		},
	})
}

func writeValueError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"detail": []map[string]interface{}{
			{"loc": []string{"body", field}, "msg": field + " " + msg, "type": "value_error"},
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]string{{"msg": "invalid JSON body"}},
		})
		return false
	}
	return true
}
