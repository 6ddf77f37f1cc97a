package wikispace

// resolveSpace determines the effective "current space" for a request given
// the acting identity and the optional ?space= selector.
//
// Only the super-user may select an arbitrary space, and only among known
// identities; anything else falls back to the super-user's own space.
// Regular users are pinned to their own space regardless of what the
// request claims, so parameter tampering cannot widen what they browse.
// Anonymous visitors always land on the super-user's space, the one
// publicly browsable space.
//
// Mutation handlers run CanEdit against the space returned here; being
// "current" never grants edit rights by itself.
func (a *App) resolveSpace(actor *Identity, requested string) Identity {
	switch {
	case actor == nil:
		return a.super
	case actor.IsSuper():
		if requested == a.super.Name() {
			return a.super
		}
		if a.Registry.Has(requested) {
			return User(requested)
		}
		return a.super
	default:
		return *actor
	}
}
