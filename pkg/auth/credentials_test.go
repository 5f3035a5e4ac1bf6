package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSessionManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	session := &Session{
		Username:     "testuser",
		CUser:        "100001234567890",
		XS:           "45%3Aabcdefghij%3A2%3A1700000000",
		UserAgent:    "TestAgent/1.0",
		LastModified: time.Now(),
	}

	if err := manager.Store(session); err != nil {
		t.Errorf("Failed to store session: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Errorf("Failed to retrieve session: %v", err)
	}

	if retrieved.Username != session.Username {
		t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, session.Username)
	}
	if retrieved.CUser != session.CUser {
		t.Errorf("CUser mismatch: got %s, want %s", retrieved.CUser, session.CUser)
	}
	if retrieved.XS != session.XS {
		t.Errorf("XS mismatch: got %s, want %s", retrieved.XS, session.XS)
	}

	sessions, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		t.Error("Expected at least one session in list")
	}

	// Sanitization masks cookies but not the username
	sanitized := SanitizeSession(session)
	if sanitized.CUser == session.CUser {
		t.Error("CUser should be masked")
	}
	if sanitized.XS == session.XS {
		t.Error("XS should be masked")
	}
	if sanitized.Username != session.Username {
		t.Error("Username should not be masked")
	}

	if err := manager.Delete("testuser"); err != nil {
		t.Errorf("Failed to delete session: %v", err)
	}

	if _, err := manager.Retrieve("testuser"); err == nil {
		t.Error("Expected error retrieving deleted session")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 sessions after deletion, got %d", mockStore.Count())
	}
}

func TestManagerValidation(t *testing.T) {
	manager, _ := NewMockManager()

	tests := []struct {
		name    string
		session *Session
	}{
		{"missing username", &Session{CUser: "123", XS: "token"}},
		{"missing c_user", &Session{Username: "u", XS: "token"}},
		{"missing xs", &Session{Username: "u", CUser: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Store(tt.session); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("FBSWEEP_C_USER", "100001234567890")
	os.Setenv("FBSWEEP_XS", "env_xs_token_value")
	os.Setenv("FBSWEEP_USER_AGENT", "EnvAgent/1.0")
	defer func() {
		os.Unsetenv("FBSWEEP_C_USER")
		os.Unsetenv("FBSWEEP_XS")
		os.Unsetenv("FBSWEEP_USER_AGENT")
	}()

	store := NewEnvironmentStore()

	if !store.Exists("") {
		t.Error("Expected environment session to exist")
	}

	session, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if session.Username != "default" {
		t.Errorf("Expected default username, got %s", session.Username)
	}
	if session.CUser != "100001234567890" {
		t.Errorf("Unexpected c_user: %s", session.CUser)
	}
	if session.UserAgent != "EnvAgent/1.0" {
		t.Errorf("Unexpected user agent: %s", session.UserAgent)
	}

	// Store and Delete are unsupported
	if err := store.Store(session); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete("default"); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestEnvironmentStoreMissingCookies(t *testing.T) {
	os.Unsetenv("FBSWEEP_C_USER")
	os.Unsetenv("FBSWEEP_XS")

	store := NewEnvironmentStore()
	if store.Exists("") {
		t.Error("Expected no environment session")
	}
	if _, err := store.Retrieve(""); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("FBSWEEP_PASSPHRASE", "test-passphrase")
	defer os.Unsetenv("FBSWEEP_PASSPHRASE")

	store, err := NewEncryptedFileStore(filepath.Join(dir, "sessions.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	session := &Session{
		Username: "testuser",
		CUser:    "100001234567890",
		XS:       "encrypted_xs_token",
	}

	if err := store.Store(session); err != nil {
		t.Fatalf("Failed to store session: %v", err)
	}

	// The file on disk must not contain the cookies in the clear
	content, err := os.ReadFile(filepath.Join(dir, "sessions.enc"))
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}
	if string(content) == "" {
		t.Fatal("Store file is empty")
	}
	for _, secret := range []string{session.CUser, session.XS} {
		if strings.Contains(string(content), secret) {
			t.Errorf("Secret %q stored in plaintext", secret)
		}
	}

	retrieved, err := store.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Failed to retrieve session: %v", err)
	}
	if retrieved.XS != session.XS {
		t.Errorf("XS mismatch after round trip: got %s", retrieved.XS)
	}

	if !store.Exists("testuser") {
		t.Error("Expected session to exist")
	}

	if err := store.Delete("testuser"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if store.Exists("testuser") {
		t.Error("Expected session to be gone after delete")
	}
}

func TestSanitizeSessionNil(t *testing.T) {
	if SanitizeSession(nil) != nil {
		t.Error("Expected nil for nil session")
	}
}

func TestMaskString(t *testing.T) {
	if got := maskString("short"); got != "********" {
		t.Errorf("Short strings should be fully masked, got %s", got)
	}
	if got := maskString("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Errorf("Unexpected mask: %s", got)
	}
}

func TestImportCookieFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid export", func(t *testing.T) {
		path := filepath.Join(dir, "cookies.json")
		content := `{"cookies":[
			{"name":"c_user","value":"100001234567890","domain":".facebook.com","path":"/"},
			{"name":"xs","value":"45%3Aabc%3A2","domain":".facebook.com","path":"/"},
			{"name":"datr","value":"ignored","domain":".facebook.com","path":"/"}
		],"origins":[]}`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		session, err := ImportCookieFile(path, "jane.doe", "Agent/1.0")
		if err != nil {
			t.Fatalf("ImportCookieFile() error = %v", err)
		}
		if session.CUser != "100001234567890" {
			t.Errorf("Unexpected c_user: %s", session.CUser)
		}
		if session.XS != "45%3Aabc%3A2" {
			t.Errorf("Unexpected xs: %s", session.XS)
		}
		if session.Username != "jane.doe" {
			t.Errorf("Unexpected username: %s", session.Username)
		}
	})

	t.Run("username defaults to c_user", func(t *testing.T) {
		path := filepath.Join(dir, "cookies2.json")
		content := `{"cookies":[
			{"name":"c_user","value":"42"},
			{"name":"xs","value":"tok"}
		]}`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		session, err := ImportCookieFile(path, "", "")
		if err != nil {
			t.Fatalf("ImportCookieFile() error = %v", err)
		}
		if session.Username != "42" {
			t.Errorf("Expected username from c_user, got %s", session.Username)
		}
	})

	t.Run("missing required cookie", func(t *testing.T) {
		path := filepath.Join(dir, "cookies3.json")
		content := `{"cookies":[{"name":"c_user","value":"42"}]}`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := ImportCookieFile(path, "", ""); err == nil {
			t.Error("Expected error for missing xs cookie")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ImportCookieFile(filepath.Join(dir, "nope.json"), "", ""); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "cookies4.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ImportCookieFile(path, "", ""); err == nil {
			t.Error("Expected error for malformed file")
		}
	})
}
