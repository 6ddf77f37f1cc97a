package wikispace

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func setupTestRegistry(t *testing.T) (*Registry, *SpaceStore, string) {
	t.Helper()
	dir := t.TempDir()
	spaces, err := NewSpaceStore(filepath.Join(dir, "spaces"))
	if err != nil {
		t.Fatalf("failed to create space store: %v", err)
	}
	usersFile := filepath.Join(dir, "users.json")
	reg, err := NewRegistry(NewJSONRegistryFile(usersFile), spaces, Super("Postman"))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return reg, spaces, usersFile
}

func TestAddUser(t *testing.T) {
	reg, spaces, _ := setupTestRegistry(t)

	if err := reg.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !reg.Has("alice") {
		t.Fatal("alice should be registered")
	}

	// Space is provisioned as a side effect.
	pages, err := spaces.ListPages(User("alice"))
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("new space should be empty, got %v", pages)
	}
}

func TestAddUserPreservesInsertionOrder(t *testing.T) {
	reg, _, _ := setupTestRegistry(t)

	for _, u := range []string{"zoe", "alice", "mike"} {
		if err := reg.Add(u); err != nil {
			t.Fatalf("Add(%s) failed: %v", u, err)
		}
	}
	want := []string{"zoe", "alice", "mike"}
	if got := reg.Users(); !reflect.DeepEqual(got, want) {
		t.Errorf("Users = %v, want %v", got, want)
	}
}

func TestAddDuplicateUser(t *testing.T) {
	reg, _, _ := setupTestRegistry(t)

	if err := reg.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	err := reg.Add("alice")
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("err = %v, want ErrDuplicateUser", err)
	}
}

func TestAddReservedIdentity(t *testing.T) {
	reg, _, _ := setupTestRegistry(t)

	err := reg.Add("Postman")
	if !errors.Is(err, ErrReservedIdentity) {
		t.Errorf("err = %v, want ErrReservedIdentity", err)
	}
	if reg.Has("Postman") {
		t.Fatal("reserved identity must not be registered")
	}
}

func TestAddEmptyUsername(t *testing.T) {
	reg, _, _ := setupTestRegistry(t)

	if err := reg.Add(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
}

func TestRemoveUserWipesSpace(t *testing.T) {
	reg, spaces, _ := setupTestRegistry(t)

	if err := reg.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := spaces.SavePage(User("alice"), "Secret", "<p>hi</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	if err := reg.Remove("alice"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if reg.Has("alice") {
		t.Fatal("alice should be gone from the registry")
	}

	pages, err := spaces.ListPages(User("alice"))
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("space should be wiped, got %v", pages)
	}
}

func TestRemoveUnknownUser(t *testing.T) {
	reg, _, _ := setupTestRegistry(t)

	if err := reg.Remove("ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestRegistryPersistsAcrossReload(t *testing.T) {
	reg, spaces, usersFile := setupTestRegistry(t)

	for _, u := range []string{"alice", "bob"} {
		if err := reg.Add(u); err != nil {
			t.Fatalf("Add(%s) failed: %v", u, err)
		}
	}

	reloaded, err := NewRegistry(NewJSONRegistryFile(usersFile), spaces, Super("Postman"))
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	want := []string{"alice", "bob"}
	if got := reloaded.Users(); !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded Users = %v, want %v", got, want)
	}
}
