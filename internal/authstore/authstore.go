// Package authstore persists folder access grants between sessions.
//
// A grant records that the user explicitly picked a folder for a role
// (origin or destination). Grants are stored as opaque tokens in a TOML
// file under the state directory and resolved back into live handles at
// startup, so the app reopens the same folders without asking again.
package authstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/ren/shuttle/internal/log"
)

// Role names the slot a grant occupies.
type Role string

// The two folder roles.
const (
	RoleOrigin      Role = "origin"
	RoleDestination Role = "destination"
)

const grantsFileName = "grants.toml"

// grantsFile is the on-disk TOML shape.
type grantsFile struct {
	Version int               `toml:"version"`
	Grants  map[string]string `toml:"grants"`
}

// Handle is a live, resolved grant. Release it when the app no longer
// needs the folder; releasing twice is safe and only the first call
// counts.
type Handle struct {
	mu      sync.Mutex
	path    string
	release func()
	once    sync.Once
}

// Path returns the granted folder path, empty once released.
func (h *Handle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.path
}

// Release ends the handle's liveness and invalidates its path.
// Idempotent.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.release()

		h.mu.Lock()
		h.path = ""
		h.mu.Unlock()
	})
}

// Store owns the grant file and the set of live handles.
type Store struct {
	mu     sync.Mutex
	file   string
	tokens map[Role]string
	live   map[*Handle]struct{}
}

// Open loads the grant file from stateDir, creating the directory if
// needed. A missing file is not an error; an unreadable or malformed
// one is.
func Open(stateDir string) (*Store, error) {
	err := os.MkdirAll(stateDir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store := &Store{
		file:   filepath.Join(stateDir, grantsFileName),
		tokens: make(map[Role]string),
		live:   make(map[*Handle]struct{}),
	}

	data, err := os.ReadFile(store.file)
	if os.IsNotExist(err) {
		return store, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read grant file: %w", err)
	}

	var persisted grantsFile

	err = toml.Unmarshal(data, &persisted)
	if err != nil {
		return nil, fmt.Errorf("failed to parse grant file: %w", err)
	}

	for role, token := range persisted.Grants {
		store.tokens[Role(role)] = token
	}

	return store, nil
}

// Grant records a fresh grant for the role, replacing any previous one,
// and persists the file.
func (s *Store) Grant(role Role, path string) error {
	token, err := encodeToken(path)
	if err != nil {
		return fmt.Errorf("failed to encode grant token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[role] = token

	return s.persistLocked()
}

// Resolve turns a persisted grant back into a live handle. Returns nil
// when no grant exists for the role, when the token is unreadable, or
// when the folder no longer exists; all failures are logged, never
// fatal. A stale token (older format or past its refresh window) that
// still resolves is transparently re-issued and persisted.
func (s *Store) Resolve(role Role) *Handle {
	logger := log.WithComponent("authstore")

	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[role]
	if !ok {
		return nil
	}

	path, stale, err := decodeToken(token)
	if err != nil {
		logger.Warn("dropping unreadable grant", "role", role, "error", err)
		delete(s.tokens, role)

		if persistErr := s.persistLocked(); persistErr != nil {
			logger.Warn("failed to persist grant file", "error", persistErr)
		}

		return nil
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		logger.Warn("granted folder is gone", "role", role, "path", path)
		return nil
	}

	if stale {
		fresh, encodeErr := encodeToken(path)
		if encodeErr == nil {
			s.tokens[role] = fresh

			if persistErr := s.persistLocked(); persistErr != nil {
				logger.Warn("failed to persist refreshed grant", "error", persistErr)
			}
		}
	}

	handle := &Handle{path: path}
	handle.release = func() { s.drop(handle) }
	s.live[handle] = struct{}{}

	return handle
}

// ReleaseAll releases every outstanding live handle exactly once. The
// persisted grants are kept for the next session.
func (s *Store) ReleaseAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.live))

	for handle := range s.live {
		handles = append(handles, handle)
	}
	s.mu.Unlock()

	for _, handle := range handles {
		handle.Release()
	}
}

// LiveCount reports how many handles are currently live.
func (s *Store) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.live)
}

func (s *Store) drop(handle *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.live, handle)
}

// persistLocked writes the grant file. Callers hold s.mu.
func (s *Store) persistLocked() error {
	persisted := grantsFile{Version: tokenVersion, Grants: make(map[string]string, len(s.tokens))}
	for role, token := range s.tokens {
		persisted.Grants[string(role)] = token
	}

	data, err := toml.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to encode grant file: %w", err)
	}

	err = os.WriteFile(s.file, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write grant file: %w", err)
	}

	return nil
}
