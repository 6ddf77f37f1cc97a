package views

import "html/template"

// SiteConfig holds the site-wide settings templates read. Populated from
// the application config so nothing is hardcoded in a template.
type SiteConfig struct {
	Name string
	URL  string
}

// Space is one entry in the super-user's space selector. Key is the value
// carried in the ?space= query parameter; Display is what the UI shows
// (the super-user's real identity string is never displayed).
type Space struct {
	Key     string
	Display string
}

// Flash is a one-shot notice rendered at the top of the next page.
type Flash struct {
	Level   string // "success", "warning", "danger", "info"
	Message string
}

// Layout is the view model for the page shell: navbar, sidebar page list,
// and flash area. Handlers build it explicitly per request; templates
// receive exactly these fields and nothing ambient.
type Layout struct {
	Site         SiteConfig
	Display      string // logged-in display name, empty when anonymous
	IsSuper      bool
	SpaceKey     string // ?space= selector value, set only for the super-user
	SpaceDisplay string
	Pages        []string
	Spaces       []Space // selector options, super-user only
	CanEdit      bool
	CSRF         string
	Flashes      []Flash
}

// IndexData renders the space's page list with an optional search filter.
// Results is the filtered list; Layout.Pages stays unfiltered for the
// sidebar.
type IndexData struct {
	Layout
	Query   string
	Results []string
}

// PageData renders one page. Content is the stored HTML blob, injected
// unescaped: authorization is the gate on content, not sanitization.
type PageData struct {
	Layout
	Name    string
	Content template.HTML
}

// EditData renders the edit form with the raw HTML source.
type EditData struct {
	Layout
	Name    string
	Content string
}

// LoginData renders the login form. Next is the in-site path to return to
// after a successful login, carried through the form as a hidden field.
type LoginData struct {
	Layout
	Next string
}

// UsersData renders the super-user's user management screen.
type UsersData struct {
	Layout
	Users []string
}

// PageViews is one row of the analytics screen.
type PageViews struct {
	Space string
	Page  string
	Views int64
}

// AnalyticsData renders per-page view counts for the super-user.
type AnalyticsData struct {
	Layout
	Rows []PageViews
}
