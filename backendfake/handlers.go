package backendfake

import (
	"net/http"
	"strconv"
	"time"
)

type credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type profilePayload struct {
	FullName      *string  `json:"full_name"`
	CPF           *string  `json:"cpf"`
	Address       *string  `json:"address"`
	FamilyID      *string  `json:"family_id"`
	MonthlyIncome *float64 `json:"monthly_income"`
	IncomeDate    *int     `json:"income_date"`
	Notes         *string  `json:"notes"`
}

type expensePayload struct {
	Category         *string  `json:"category"`
	Location         *string  `json:"location"`
	Date             *string  `json:"date"`
	Amount           *float64 `json:"amount"`
	Notes            *string  `json:"notes"`
	IsRecurring      bool     `json:"is_recurring"`
	RecurrenceMonths *int     `json:"recurrence_months"`
}

// maxRecurrenceMonths bounds how many occurrences one request may create.
const maxRecurrenceMonths = 120

type createUserPayload struct {
	credentials
	profilePayload
}

func (c credentials) missing() string {
	if c.Username == nil {
		return "username"
	}
	if c.Password == nil {
		return "password"
	}
	return ""
}

// LoginHandler authenticates a primary user.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if !decodeBody(w, r, &req) {
			return
		}
		if field := req.missing(); field != "" {
			writeFieldRequired(w, field)
			return
		}

		s.lock.Lock()
		user := s.primaryByUsername(*req.Username)
		var u User
		if user != nil {
			u = *user
		}
		s.lock.Unlock()

		if user == nil || !checkPasswordHash(*req.Password, u.PasswordHash) {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := s.createToken(u.ID, u.Username, userTypePrimary)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":       token,
			"user_id":     strconv.Itoa(u.ID),
			"username":    u.Username,
			"has_profile": u.FullName != nil,
		})
	}
}

// MasterLoginHandler authenticates an administrative user.
func (s *Server) MasterLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if !decodeBody(w, r, &req) {
			return
		}
		if field := req.missing(); field != "" {
			writeFieldRequired(w, field)
			return
		}

		s.lock.Lock()
		master, ok := s.masterUsers[*req.Username]
		var m MasterUser
		if ok {
			m = *master
		}
		s.lock.Unlock()

		if !ok || !checkPasswordHash(*req.Password, m.PasswordHash) {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := s.createToken(m.ID, m.Username, m.Role)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":    token,
			"user_id":  strconv.Itoa(m.ID),
			"username": m.Username,
			"role":     m.Role,
		})
	}
}

// UpdateProfileHandler replaces the caller's profile fields.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if payload.UserType != userTypePrimary {
			writeDetail(w, http.StatusForbidden, "Only primary users can update profile")
			return
		}

		var req profilePayload
		if !decodeBody(w, r, &req) {
			return
		}
		if req.FullName == nil {
			writeFieldRequired(w, "full_name")
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		user, found := s.users[payload.UserID]
		if !found {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		applyProfile(user, req)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
	}
}

// GetProfileHandler returns the caller's profile.
func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if payload.UserType != userTypePrimary {
			writeDetail(w, http.StatusForbidden, "Only primary users can view profile")
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		user, found := s.users[payload.UserID]
		if !found {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":             user.ID,
			"username":       user.Username,
			"full_name":      user.FullName,
			"cpf":            user.CPF,
			"address":        user.Address,
			"family_id":      user.FamilyID,
			"monthly_income": user.MonthlyIncome,
			"income_date":    user.IncomeDate,
			"notes":          user.Notes,
		})
	}
}

// GamificationHandler returns points and streak; users with no entries get zeros.
func (s *Server) GamificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if payload.UserType != userTypePrimary {
			writeDetail(w, http.StatusForbidden, "Unauthorized")
			return
		}

		g := s.GamificationFor(payload.UserID)
		writeJSON(w, http.StatusOK, map[string]int{
			"points":      g.Points,
			"streak_days": g.StreakDays,
		})
	}
}

// CreateExpenseHandler stores an expense, expands recurring ones month by
// month and scores the entry.
func (s *Server) CreateExpenseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if payload.UserType != userTypePrimary {
			writeDetail(w, http.StatusForbidden, "Unauthorized")
			return
		}

		var req expensePayload
		if !decodeBody(w, r, &req) {
			return
		}
		switch {
		case req.Category == nil:
			writeFieldRequired(w, "category")
			return
		case req.Date == nil:
			writeFieldRequired(w, "date")
			return
		case req.Amount == nil:
			writeFieldRequired(w, "amount")
			return
		}
		baseDate, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid date")
			return
		}
		if req.IsRecurring && req.RecurrenceMonths != nil {
			if n := *req.RecurrenceMonths; n < 1 || n > maxRecurrenceMonths {
				writeValueError(w, "recurrence_months", "must be between 1 and "+strconv.Itoa(maxRecurrenceMonths))
				return
			}
		}

		s.lock.Lock()
		defer s.lock.Unlock()

		first := &Expense{
			ID:               s.allocID(),
			UserID:           payload.UserID,
			Category:         *req.Category,
			Location:         req.Location,
			Date:             *req.Date,
			Amount:           *req.Amount,
			Notes:            req.Notes,
			IsRecurring:      req.IsRecurring,
			RecurrenceMonths: req.RecurrenceMonths,
		}
		s.expenses = append(s.expenses, first)

		if req.IsRecurring && req.RecurrenceMonths != nil {
			for i := 1; i < *req.RecurrenceMonths; i++ {
				parentID := first.ID
				s.expenses = append(s.expenses, &Expense{
					ID:          s.allocID(),
					UserID:      payload.UserID,
					Category:    first.Category,
					Location:    first.Location,
					Date:        addMonths(baseDate, i).Format(time.DateOnly),
					Amount:      first.Amount,
					Notes:       first.Notes,
					IsRecurring: true,
					ParentID:    &parentID,
				})
			}
		}

		g, found := s.gamification[payload.UserID]
		if !found {
			g = &Gamification{}
			s.gamification[payload.UserID] = g
		}
		scoreEntry(g, s.nowTime())

		writeJSON(w, http.StatusOK, map[string]string{
			"message":    "Expense created successfully",
			"expense_id": strconv.Itoa(first.ID),
		})
	}
}

// ListUsersHandler lists primary users for administrators.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if !payload.isAdministrative() {
			writeDetail(w, http.StatusForbidden, "Unauthorized")
			return
		}

		users := s.Users()
		out := make([]map[string]interface{}, 0, len(users))
		for _, u := range users {
			out = append(out, map[string]interface{}{
				"id":        u.ID,
				"_id":       strconv.Itoa(u.ID),
				"username":  u.Username,
				"full_name": u.FullName,
				"cpf":       u.CPF,
				"address":   u.Address,
				"family_id": u.FamilyID,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateUserHandler creates a primary user on behalf of an administrator.
func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if !payload.isAdministrative() {
			writeDetail(w, http.StatusForbidden, "Unauthorized")
			return
		}

		var req createUserPayload
		if !decodeBody(w, r, &req) {
			return
		}
		if field := req.missing(); field != "" {
			writeFieldRequired(w, field)
			return
		}
		if req.FullName == nil {
			writeFieldRequired(w, "full_name")
			return
		}

		hash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		if s.primaryByUsername(*req.Username) != nil {
			writeDetail(w, http.StatusBadRequest, "Username already exists")
			return
		}
		user := &User{ID: s.allocID(), Username: *req.Username, PasswordHash: hash}
		applyProfile(user, req.profilePayload)
		s.users[user.ID] = user

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "User created successfully",
			"user_id": strconv.Itoa(user.ID),
		})
	}
}

// DeleteUserHandler removes a primary user and everything they own.
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := s.verifyToken(w, r)
		if !ok {
			return
		}
		if !payload.isAdministrative() {
			writeDetail(w, http.StatusForbidden, "Unauthorized")
			return
		}

		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"detail": []map[string]string{{"msg": "value is not a valid integer"}},
			})
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		if _, found := s.users[id]; !found {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		delete(s.users, id)
		delete(s.gamification, id)
		kept := s.expenses[:0]
		for _, e := range s.expenses {
			if e.UserID != id {
				kept = append(kept, e)
			}
		}
		s.expenses = kept

		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
	}
}

func applyProfile(user *User, p profilePayload) {
	user.FullName = p.FullName
	user.CPF = p.CPF
	user.Address = p.Address
	user.FamilyID = p.FamilyID
	user.MonthlyIncome = p.MonthlyIncome
	user.IncomeDate = p.IncomeDate
	user.Notes = p.Notes
}
