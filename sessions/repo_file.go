package sessions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo keeps the session as a small JSON object on disk so it survives restarts.
type FileRepo struct {
	path string
	lock sync.Mutex
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Path returns the location of the session file.
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Write(session Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo Write] create session directory")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[FileRepo Write] encode session")
	}

	// Temp file + rename: the four fields land together or not at all.
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "[FileRepo Write] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileRepo Write] write temp file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileRepo Write] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileRepo Write] close temp file")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.Wrap(err, "[FileRepo Write] replace session file")
	}
	return nil
}

func (r *FileRepo) Read() (Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "[FileRepo Read] read session file")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, errors.Wrap(err, "[FileRepo Read] decode session file")
	}
	return session, nil
}

func (r *FileRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo Clear] remove session file")
	}
	return nil
}
