package sessions

// Repo is the durable store holding the current session.
// There is exactly one session per device; the last writer wins.
type Repo interface {
	// Write persists all four session fields as a unit, replacing any prior session
	Write(session Session) error

	// Read returns whatever fields are stored; missing fields are empty
	Read() (Session, error)

	// Clear removes every session field
	Clear() error
}
