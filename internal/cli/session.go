package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/solconf/solconf/internal/models"
)

const credentialsFileName = "credentials.json"

// Credentials is the persisted session file (~/.solconf/credentials.json).
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Remember bool   `json:"remember"`
}

// Store reads and writes the credentials file.
type Store struct {
	dir string
}

// NewStore creates a credentials store rooted at dir. An empty dir
// means ~/.solconf.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		dir = filepath.Join(home, ".solconf")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credentialsFileName)
}

// Load reads stored credentials. A missing or unreadable file, or one
// without a token, yields nil credentials, not an error.
func (s *Store) Load() *Credentials {
	creds := s.loadRaw()
	if creds == nil || creds.Token == "" {
		return nil
	}
	return creds
}

// loadRaw reads the file as-is; a token-less remembered-username file
// still comes back.
func (s *Store) loadRaw() *Credentials {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil
	}
	return &creds
}

// RememberedUsername returns the username retained across logouts,
// empty when the user never asked to be remembered.
func (s *Store) RememberedUsername() string {
	if creds := s.loadRaw(); creds != nil && creds.Remember {
		return creds.Username
	}
	return ""
}

// Save persists credentials with owner-only permissions.
func (s *Store) Save(creds *Credentials) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credentials file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearToken discards the stored token. When the user asked to be
// remembered, the file survives with the token blanked and the
// username kept; otherwise it is removed.
func (s *Store) ClearToken() error {
	creds := s.loadRaw()
	if creds == nil || !creds.Remember || creds.Username == "" {
		return s.Clear()
	}
	return s.Save(&Credentials{Username: creds.Username, Remember: true})
}

// State is the session lifecycle phase.
type State int

const (
	// StateLoading means the stored token has not been verified yet.
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session tracks the authenticated identity for one process. It starts
// in the loading state and settles after a single startup probe of the
// identity endpoint.
type Session struct {
	mu      sync.Mutex
	store   *Store
	client  *Client
	state   State
	user    *models.User
	cleared bool
}

// NewSession wires the session to its store and API client. The
// client's unauthorized hook points back at Invalidate, so any 401
// tears the session down.
func NewSession(store *Store, client *Client) *Session {
	s := &Session{
		store:  store,
		client: client,
		state:  StateLoading,
	}
	client.SetUnauthorizedHook(s.Invalidate)
	return s
}

// Bootstrap restores the persisted session, verifying the stored token
// against the server exactly once. Without stored credentials the
// session settles unauthenticated immediately, no request made.
func (s *Session) Bootstrap() error {
	creds := s.store.Load()
	if creds == nil {
		s.setState(StateUnauthenticated, nil)
		return nil
	}

	s.client.SetToken(creds.Token)

	user, err := s.client.Me()
	if err != nil {
		if IsUnauthorized(err) {
			// Invalidate already ran via the client hook
			s.setState(StateUnauthenticated, nil)
			return nil
		}
		// The probe decides in one shot: any failure, transport
		// included, discards the stored token.
		s.client.SetToken("")
		s.store.ClearToken()
		s.setState(StateUnauthenticated, nil)
		return err
	}

	s.setState(StateAuthenticated, user)
	return nil
}

// Establish records a fresh login.
func (s *Session) Establish(token string, user *models.User, remember bool) error {
	s.client.SetToken(token)
	s.setState(StateAuthenticated, user)
	if remember {
		return s.store.Save(&Credentials{
			Token:    token,
			Username: user.Username,
			Remember: true,
		})
	}
	return s.store.Clear()
}

// Invalidate clears the session. It runs its side effects at most
// once per process regardless of how many callers race into it.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return
	}
	s.cleared = true
	s.state = StateUnauthenticated
	s.user = nil
	s.client.SetToken("")
	s.store.ClearToken()
}

// Logout drops the session deliberately. The remembered username
// survives so the next login can offer it back.
func (s *Session) Logout() error {
	s.client.SetToken("")
	s.setState(StateUnauthenticated, nil)
	return s.store.ClearToken()
}

// IsAuthenticated reports whether a verified user identity is present.
// The token alone is never enough.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the verified identity, nil when unauthenticated.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) setState(state State, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
	if state == StateAuthenticated {
		s.cleared = false
	}
}
