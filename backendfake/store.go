package backendfake

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User types carried in the token's user_type claim
const (
	userTypePrimary = "primary"
	userTypeMaster  = "master"
	userTypeAdmin   = "admin"
)

// User is a primary (non-administrative) account with its profile.
type User struct {
	ID            int
	Username      string
	PasswordHash  string
	FullName      *string
	CPF           *string
	Address       *string
	FamilyID      *string
	MonthlyIncome *float64
	IncomeDate    *int
	Notes         *string
}

// MasterUser is an administrative account, role "master" or "admin".
type MasterUser struct {
	ID           int
	Username     string
	PasswordHash string
	Role         string
}

// Expense is a stored expense row. Recurring expenses are expanded into one
// row per month, linked to the first through ParentID.
type Expense struct {
	ID               int
	UserID           int
	Category         string
	Location         *string
	Date             string
	Amount           float64
	Notes            *string
	IsRecurring      bool
	RecurrenceMonths *int
	ParentID         *int
}

// Gamification is the per-user points and streak state.
type Gamification struct {
	Points        int
	StreakDays    int
	LastEntryDate time.Time
}

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// addMonths adds n calendar months, clamping to the last day of the target
// month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// scoreEntry applies one new expense entry to the gamification state.
// First entry: 1 point, 1 day. Next day: +1 point +5 bonus, streak grows.
// Same day: +1 point. Longer gap: +1 point, streak restarts at 1.
func scoreEntry(g *Gamification, today time.Time) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if g.LastEntryDate.IsZero() {
		g.Points = 1
		g.StreakDays = 1
		g.LastEntryDate = today
		return
	}

	g.Points++
	days := int(today.Sub(g.LastEntryDate).Hours() / 24)
	switch {
	case days == 1:
		g.StreakDays++
		g.Points += 5
	case days > 1:
		g.StreakDays = 1
	}
	g.LastEntryDate = today
}
