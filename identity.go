package wikispace

// Identity names the owner of a space. It is either the singleton
// super-user or a regular registered user. The zero value is not a valid
// identity; use Super or User.
type Identity struct {
	super bool
	name  string
}

// Super returns the super-user identity. The super-user is never stored in
// the registry and is authorized for every space.
func Super(name string) Identity {
	return Identity{super: true, name: name}
}

// User returns the identity of a regular registered user.
func User(name string) Identity {
	return Identity{name: name}
}

// IsSuper reports whether the identity is the super-user.
func (id Identity) IsSuper() bool {
	return id.super
}

// Name returns the identity string used as the space key on disk.
func (id Identity) Name() string {
	return id.name
}

// Display returns the name shown in the UI. The super-user's real identity
// string is hidden from every rendered page.
func (id Identity) Display() string {
	if id.super {
		return "Super User"
	}
	return id.name
}

// Equal reports whether two identities name the same space owner.
func (id Identity) Equal(other Identity) bool {
	return id.super == other.super && id.name == other.name
}

// CanEdit decides whether actor may mutate pages in the target space.
// A nil actor is anonymous and may never edit. The super-user may edit any
// space; a regular user only their own. Every mutating handler consults
// this before calling into storage.
func CanEdit(actor *Identity, target Identity) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuper() {
		return true
	}
	return actor.Equal(target)
}

// Authorize is CanEdit as an error, for callers that propagate rather than
// branch.
func Authorize(actor *Identity, target Identity) error {
	if !CanEdit(actor, target) {
		return ErrUnauthorized
	}
	return nil
}
