package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	errs "fbsweep/pkg/errors"
)

// storageState is the browser storage-state export format: a top-level
// "cookies" array of name/value entries.
type storageState struct {
	Cookies []storedCookie `json:"cookies"`
}

type storedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// ImportCookieFile reads a cookies.json export and builds a Session
// from the c_user and xs cookies. Both must be present.
func ImportCookieFile(path, username, userAgent string) (*Session, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.ErrorTypePersistence, "cookie file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var state storageState
	if err := json.Unmarshal(content, &state); err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, "invalid cookie file %s: expected {\"cookies\": [...]}", path)
	}
	if state.Cookies == nil {
		return nil, errs.New(errs.ErrorTypeParsing, "cookie file %s has no \"cookies\" array", path)
	}

	session := &Session{
		Username:     username,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	for _, cookie := range state.Cookies {
		switch cookie.Name {
		case "c_user":
			session.CUser = cookie.Value
		case "xs":
			session.XS = cookie.Value
		}
	}

	var missing []string
	if session.CUser == "" {
		missing = append(missing, "c_user")
	}
	if session.XS == "" {
		missing = append(missing, "xs")
	}
	if len(missing) > 0 {
		return nil, errs.New(errs.ErrorTypeSessionExpired, "cookie file %s is missing required cookies: %v", path, missing)
	}

	// The c_user cookie is the numeric account ID; use it when no
	// username was given.
	if session.Username == "" {
		session.Username = session.CUser
	}

	return session, nil
}
