package wikispace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// RegistryFile is the persistence port for the user registry. The default
// implementation writes a JSON array of usernames, compatible with the
// flat-file layout the engine has always used.
type RegistryFile interface {
	Load() ([]string, error)
	Save(users []string) error
}

// Registry holds the list of registered usernames in memory, in insertion
// order, and flushes to its RegistryFile after every mutation. The in-memory
// copy is the source of truth for the process lifetime; external edits to
// the durable copy are not picked up until restart. Mutations are serialized
// under one mutex since load-mutate-persist must not interleave.
type Registry struct {
	mu     sync.Mutex
	users  []string
	file   RegistryFile
	spaces *SpaceStore
	super  Identity
}

// NewRegistry loads the registry from file once. The super-user is implicit
// and never appears in the list.
func NewRegistry(file RegistryFile, spaces *SpaceStore, super Identity) (*Registry, error) {
	users, err := file.Load()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return &Registry{users: users, file: file, spaces: spaces, super: super}, nil
}

// Users returns the registered usernames in insertion order.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.users))
	copy(out, r.users)
	return out
}

// Has reports whether name is a registered user.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(name) >= 0
}

// Add registers a new user and provisions an empty space. The super-user's
// identity string is reserved and can never be registered.
func (r *Registry) Add(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidName)
	}
	if name == r.super.Name() {
		return fmt.Errorf("%w: %q", ErrReservedIdentity, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateUser, name)
	}
	r.users = append(r.users, name)
	if err := r.file.Save(r.users); err != nil {
		r.users = r.users[:len(r.users)-1]
		return fmt.Errorf("persist registry: %w", err)
	}
	return r.spaces.Ensure(User(name))
}

// Remove deletes a user and recursively wipes their entire space. The space
// is deleted before the registry change is persisted, so a crash in between
// leaves a user with an empty space rather than a dangling registry entry
// pointing at nothing.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}
	if err := r.spaces.DeleteSpace(User(name)); err != nil {
		return err
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	if err := r.file.Save(r.users); err != nil {
		return fmt.Errorf("persist registry: %w", err)
	}
	return nil
}

func (r *Registry) indexOf(name string) int {
	for i, u := range r.users {
		if u == name {
			return i
		}
	}
	return -1
}

// jsonRegistryFile persists the registry as a JSON array of strings.
type jsonRegistryFile struct {
	path string
}

// NewJSONRegistryFile returns a RegistryFile backed by a JSON file at path.
func NewJSONRegistryFile(path string) RegistryFile {
	return &jsonRegistryFile{path: path}
}

func (f *jsonRegistryFile) Load() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		// First boot: create an empty registry so later saves have a home.
		if err := f.Save(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var users []string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return users, nil
}

func (f *jsonRegistryFile) Save(users []string) error {
	if users == nil {
		users = []string{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0o644)
}
