package wikispace

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wikispace/views"
)

// layout builds the view model for the page shell: navbar state, sidebar
// page list, space selector, and flashes. Every handler builds one
// explicitly; nothing is injected ambiently into templates.
func (a *App) layout(c echo.Context, actor *Identity, space Identity) (views.Layout, error) {
	pages, err := a.Spaces.ListPages(space)
	if err != nil {
		return views.Layout{}, err
	}
	l := views.Layout{
		Site:         a.siteConfig(),
		SpaceDisplay: space.Display(),
		Pages:        pages,
		CanEdit:      CanEdit(actor, space),
		CSRF:         CsrfToken(c),
		Flashes:      takeFlashes(c),
	}
	if actor != nil {
		l.Display = actor.Display()
		l.IsSuper = actor.IsSuper()
	}
	if l.IsSuper {
		// The selector exposes every space; only the super-user sees it.
		l.SpaceKey = space.Name()
		l.Spaces = append(l.Spaces, views.Space{Key: a.super.Name(), Display: a.super.Display()})
		for _, u := range a.Registry.Users() {
			l.Spaces = append(l.Spaces, views.Space{Key: u, Display: u})
		}
	}
	return l, nil
}

// spaceQuery builds the ?space= suffix for redirects, kept only when the
// actor is the super-user (for everyone else the parameter is ignored
// anyway).
func spaceQuery(actor *Identity, space Identity) string {
	if actor == nil || !actor.IsSuper() {
		return ""
	}
	return "?space=" + url.QueryEscape(space.Name())
}

func (a *App) handleIndex(c echo.Context) error {
	actor := a.currentIdentity(c)
	space := a.resolveSpace(actor, c.QueryParam("space"))
	l, err := a.layout(c, actor, space)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	results := l.Pages
	if query != "" {
		needle := strings.ToLower(query)
		results = nil
		for _, p := range l.Pages {
			if strings.Contains(strings.ToLower(p), needle) {
				results = append(results, p)
			}
		}
	}
	return Render(c, views.Index(views.IndexData{Layout: l, Query: query, Results: results}))
}

func (a *App) handlePage(c echo.Context) error {
	actor := a.currentIdentity(c)
	space := a.resolveSpace(actor, c.QueryParam("space"))
	name := c.Param("name")

	content, ok, err := a.Spaces.LoadPage(space, name)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			return ErrPageNotFound
		}
		return err
	}
	if !ok {
		return ErrPageNotFound
	}

	if a.analyticsStore != nil {
		if err := a.analyticsStore.RecordVisit(space.Name(), name, c.RealIP()); err != nil {
			c.Logger().Errorf("record visit: %v", err)
		}
	}

	l, err := a.layout(c, actor, space)
	if err != nil {
		return err
	}
	return Render(c, views.Page(views.PageData{
		Layout: l,
		Name:   name,
		// Raw HTML blob, rendered unescaped. Authorization is the gate on
		// content, not sanitization.
		Content: template.HTML(content),
	}))
}

func (a *App) handleImage(c echo.Context) error {
	path, err := a.Images.Path(c.Param("filename"))
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.File(path)
}

func (a *App) handleNewForm(c echo.Context) error {
	actor, space, redirect := a.requireEdit(c, "/")
	if redirect != "" {
		return c.Redirect(http.StatusSeeOther, redirect)
	}
	l, err := a.layout(c, actor, space)
	if err != nil {
		return err
	}
	return Render(c, views.NewPage(l))
}

func (a *App) handleNewSave(c echo.Context) error {
	actor, space, redirect := a.requireEdit(c, "/")
	if redirect != "" {
		return c.Redirect(http.StatusSeeOther, redirect)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if err := a.Spaces.CreatePage(space, name); err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			addFlash(c, "danger", "Page name cannot be empty or contain spaces or slashes.")
		case errors.Is(err, ErrDuplicatePage):
			addFlash(c, "danger", "Page already exists. Choose a different name.")
		default:
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/new/"+spaceQuery(actor, space))
	}
	addFlash(c, "success", fmt.Sprintf("Page %q created successfully.", name))
	return c.Redirect(http.StatusSeeOther, "/page/"+url.PathEscape(name)+"/"+spaceQuery(actor, space))
}

func (a *App) handleEditForm(c echo.Context) error {
	name := c.Param("name")
	actor, space, redirect := a.requireEdit(c, "/page/"+url.PathEscape(name)+"/")
	if redirect != "" {
		return c.Redirect(http.StatusSeeOther, redirect)
	}

	// Editing a page that does not exist yet starts from empty content,
	// so a dangling sidebar link is just a blank editor.
	content, _, err := a.Spaces.LoadPage(space, name)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			return echo.ErrNotFound
		}
		return err
	}
	l, err := a.layout(c, actor, space)
	if err != nil {
		return err
	}
	return Render(c, views.Edit(views.EditData{Layout: l, Name: name, Content: content}))
}

func (a *App) handleEditSave(c echo.Context) error {
	name := c.Param("name")
	actor, space, redirect := a.requireEdit(c, "/page/"+url.PathEscape(name)+"/")
	if redirect != "" {
		return c.Redirect(http.StatusSeeOther, redirect)
	}
	if err := ValidatePageName(name); err != nil {
		return echo.ErrNotFound
	}

	// Content is saved before the attached image is looked at, matching
	// the page-first contract: a bad image never loses an edit.
	if err := a.Spaces.SavePage(space, name, c.FormValue("content")); err != nil {
		return err
	}

	if file, err := c.FormFile("image"); err == nil && file.Filename != "" {
		if file.Size > maxUploadSize {
			addFlash(c, "warning", "Image too large (max 10MB).")
			return c.Redirect(http.StatusSeeOther, "/edit/"+url.PathEscape(name)+"/"+spaceQuery(actor, space))
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		stored, err := a.Images.SaveImage(file.Filename, src)
		if err != nil {
			if errors.Is(err, ErrDisallowedExtension) || errors.Is(err, ErrInvalidName) {
				addFlash(c, "warning", "File type not allowed for image upload.")
				return c.Redirect(http.StatusSeeOther, "/edit/"+url.PathEscape(name)+"/"+spaceQuery(actor, space))
			}
			return err
		}
		addFlash(c, "success", fmt.Sprintf("Image %q uploaded. Add it in content as <img src=\"/images/%s\">.", stored, stored))
		return c.Redirect(http.StatusSeeOther, "/edit/"+url.PathEscape(name)+"/"+spaceQuery(actor, space))
	}

	addFlash(c, "success", "Page saved successfully.")
	return c.Redirect(http.StatusSeeOther, "/page/"+url.PathEscape(name)+"/"+spaceQuery(actor, space))
}

func (a *App) handleDelete(c echo.Context) error {
	name := c.Param("name")
	actor, space, redirect := a.requireEdit(c, "/page/"+url.PathEscape(name)+"/")
	if redirect != "" {
		return c.Redirect(http.StatusSeeOther, redirect)
	}

	deleted, err := a.Spaces.DeletePage(space, name)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			return echo.ErrNotFound
		}
		return err
	}
	if deleted {
		addFlash(c, "success", fmt.Sprintf("Page %q deleted.", name))
	} else {
		addFlash(c, "danger", "Page not found.")
	}
	return c.Redirect(http.StatusSeeOther, "/"+spaceQuery(actor, space))
}

// requireEdit resolves the acting identity and target space for a mutating
// request and applies the authorization policy. A non-empty redirect means
// the caller must bounce the request there instead of proceeding.
func (a *App) requireEdit(c echo.Context, deniedTarget string) (actor *Identity, space Identity, redirect string) {
	actor = a.currentIdentity(c)
	space = a.resolveSpace(actor, c.QueryParam("space"))
	if actor == nil {
		addFlash(c, "warning", "Please login first.")
		return nil, space, "/login/?next=" + url.QueryEscape(c.Request().RequestURI)
	}
	if err := Authorize(actor, space); err != nil {
		addFlash(c, "danger", "You do not have permission to edit pages in this space.")
		return actor, space, deniedTarget + spaceQuery(actor, space)
	}
	return actor, space, ""
}

func (a *App) handleLoginForm(c echo.Context) error {
	l, err := a.layout(c, nil, a.super)
	if err != nil {
		return err
	}
	next := safeReturnPath(c.QueryParam("next"))
	if next == "/" {
		next = ""
	}
	return Render(c, views.Login(views.LoginData{Layout: l, Next: next}))
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := strings.TrimSpace(c.FormValue("username"))
	next := safeReturnPath(c.FormValue("next"))
	switch {
	case username == "":
		addFlash(c, "danger", "Please enter a username.")
	case username != a.super.Name() && !a.Registry.Has(username):
		addFlash(c, "danger", "Username not registered. Contact super user for registration.")
	default:
		if err := setUserSession(c, username); err != nil {
			return err
		}
		display := username
		if username == a.super.Name() {
			display = a.super.Display()
		}
		addFlash(c, "success", "Logged in as "+display)
		return c.Redirect(http.StatusSeeOther, next)
	}
	retry := "/login/"
	if next != "/" {
		retry += "?next=" + url.QueryEscape(next)
	}
	return c.Redirect(http.StatusSeeOther, retry)
}

// safeReturnPath accepts only in-site paths for the post-login redirect, so
// a crafted next parameter cannot bounce a visitor off-site.
func safeReturnPath(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.ContainsAny(next, "\\") {
		return next
	}
	return "/"
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	addFlash(c, "info", "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}
