package fakesessionrepo

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-finance-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session store that counts calls so tests
// can assert exactly how a screen touched the session.
type FakeSessionRepo struct {
	session sessions.Session
	lock    sync.RWMutex

	Writes int
	Reads  int
	Clears int

	// WriteErr, when set, is returned by Write without storing anything
	WriteErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a store pre-populated with a session, as if
// carried over from a previous run.
func NewFakeSessionRepoWith(session sessions.Session) *FakeSessionRepo {
	return &FakeSessionRepo{session: session}
}

func (sr *FakeSessionRepo) Write(session sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Writes++
	if sr.WriteErr != nil {
		return sr.WriteErr
	}
	sr.session = session
	return nil
}

func (sr *FakeSessionRepo) Read() (sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Reads++
	return sr.session, nil
}

func (sr *FakeSessionRepo) Clear() error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.Clears++
	sr.session = sessions.Session{}
	return nil
}

// Snapshot returns the stored session without counting as a read.
func (sr *FakeSessionRepo) Snapshot() sessions.Session {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.session
}

// Counts returns writes, reads and clears under the lock.
func (sr *FakeSessionRepo) Counts() (writes, reads, clears int) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.Writes, sr.Reads, sr.Clears
}

// ErrWriteFailed is a ready-made error for WriteErr.
var ErrWriteFailed = errors.New("fake write failed")
