package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements SessionStore using environment variables.
// This supports unattended runs where cookies are injected externally.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based session store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets the session from environment variables
func (e *EnvironmentStore) Retrieve(username string) (*Session, error) {
	cUser := os.Getenv("FBSWEEP_C_USER")
	xs := os.Getenv("FBSWEEP_XS")
	userAgent := os.Getenv("FBSWEEP_USER_AGENT")

	if cUser == "" || xs == "" {
		return nil, ErrSessionNotFound
	}

	// Environment variables don't carry a username
	if username == "" {
		username = "default"
	}

	return &Session{
		Username:     username,
		CUser:        cUser,
		XS:           xs,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List returns a single session if environment variables are set
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment session cookies exist
func (e *EnvironmentStore) Exists(username string) bool {
	return os.Getenv("FBSWEEP_C_USER") != "" && os.Getenv("FBSWEEP_XS") != ""
}
