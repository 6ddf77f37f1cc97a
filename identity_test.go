package wikispace

import "testing"

func TestCanEdit(t *testing.T) {
	super := Super("Postman")
	alice := User("alice")
	bob := User("bob")

	tests := []struct {
		name   string
		actor  *Identity
		target Identity
		want   bool
	}{
		{"anonymous cannot edit public space", nil, super, false},
		{"anonymous cannot edit user space", nil, alice, false},
		{"user edits own space", &alice, alice, true},
		{"user cannot edit another space", &alice, bob, false},
		{"user cannot edit super space", &alice, super, false},
		{"super edits any user space", &super, alice, true},
		{"super edits own space", &super, super, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEdit(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanEdit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityDoesNotConfuseSuperWithSameName(t *testing.T) {
	// A regular user who happens to carry the super-user's name string is
	// still not the super-user.
	impostor := User("Postman")
	super := Super("Postman")

	if impostor.IsSuper() {
		t.Fatal("regular identity must not be super")
	}
	if impostor.Equal(super) {
		t.Fatal("regular and super identities with the same name must differ")
	}
	if CanEdit(&impostor, User("alice")) {
		t.Fatal("impostor must not edit other spaces")
	}
}

func TestIdentityDisplay(t *testing.T) {
	if got := Super("Postman").Display(); got != "Super User" {
		t.Errorf("super display = %q, want %q", got, "Super User")
	}
	if got := User("alice").Display(); got != "alice" {
		t.Errorf("user display = %q, want %q", got, "alice")
	}
}
