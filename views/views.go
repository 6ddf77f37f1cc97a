// Package views renders the wiki UI. Components are html/template shells
// wrapped as templ components via templ.FromGoHTML, so handlers and the
// render layer deal only in templ.Component.
package views

import (
	"html/template"

	"github.com/a-h/templ"
)

var base = template.Must(template.New("layout").Parse(layoutHTML))

// page clones the layout and overrides its blocks with a page body.
func page(defs string) *template.Template {
	t := template.Must(base.Clone())
	return template.Must(t.Parse(defs))
}

var (
	indexTmpl     = page(indexBody)
	pageTmpl      = page(pageBody)
	editTmpl      = page(editBody)
	newTmpl       = page(newBody)
	loginTmpl     = page(loginBody)
	usersTmpl     = page(usersBody)
	analyticsTmpl = page(analyticsBody)

	notFoundTmpl    = template.Must(template.New("notfound").Parse(notFoundHTML))
	serverErrorTmpl = template.Must(template.New("servererror").Parse(serverErrorHTML))
)

// Index renders the space's page list with search results.
func Index(d IndexData) templ.Component {
	return templ.FromGoHTML(indexTmpl, d)
}

// Page renders a single wiki page.
func Page(d PageData) templ.Component {
	return templ.FromGoHTML(pageTmpl, d)
}

// Edit renders the edit form for an existing page.
func Edit(d EditData) templ.Component {
	return templ.FromGoHTML(editTmpl, d)
}

// NewPage renders the create-page form.
func NewPage(l Layout) templ.Component {
	return templ.FromGoHTML(newTmpl, l)
}

// Login renders the username-only login form.
func Login(d LoginData) templ.Component {
	return templ.FromGoHTML(loginTmpl, d)
}

// Users renders the super-user's user management screen.
func Users(d UsersData) templ.Component {
	return templ.FromGoHTML(usersTmpl, d)
}

// Analytics renders per-page view counts.
func Analytics(d AnalyticsData) templ.Component {
	return templ.FromGoHTML(analyticsTmpl, d)
}

// NotFound renders the styled 404 page.
func NotFound(site SiteConfig) templ.Component {
	return templ.FromGoHTML(notFoundTmpl, site)
}

// ServerError renders the styled 500 page.
func ServerError(site SiteConfig) templ.Component {
	return templ.FromGoHTML(serverErrorTmpl, site)
}
