package wikispace

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wikispace/views"
)

// requireSuper gates the admin surface. Only the super-user may manage the
// user list; everyone else is bounced to the index with a flash.
func (a *App) requireSuper(c echo.Context) (*Identity, bool) {
	actor := a.currentIdentity(c)
	if actor == nil || !actor.IsSuper() {
		addFlash(c, "danger", "You do not have permission to access that page.")
		return nil, false
	}
	return actor, true
}

func (a *App) handleAdminUsers(c echo.Context) error {
	actor, ok := a.requireSuper(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return a.renderAdminUsers(c, actor)
}

func (a *App) handleAdminUsersPost(c echo.Context) error {
	if _, ok := a.requireSuper(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	action := c.FormValue("action")
	username := strings.TrimSpace(c.FormValue("username"))

	switch action {
	case "add":
		err := a.Registry.Add(username)
		switch {
		case err == nil:
			addFlash(c, "success", fmt.Sprintf("User %q added.", username))
		case errors.Is(err, ErrInvalidName):
			addFlash(c, "danger", "Enter a username to add.")
		case errors.Is(err, ErrReservedIdentity):
			addFlash(c, "danger", "Cannot add super user.")
		case errors.Is(err, ErrDuplicateUser):
			addFlash(c, "danger", "User already exists.")
		default:
			return err
		}
	case "remove":
		err := a.Registry.Remove(username)
		switch {
		case err == nil:
			addFlash(c, "success", fmt.Sprintf("User %q removed.", username))
		case errors.Is(err, ErrUserNotFound):
			addFlash(c, "danger", fmt.Sprintf("User %q not found.", username))
		default:
			return err
		}
	default:
		addFlash(c, "danger", "Unknown action.")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/users/")
}

func (a *App) renderAdminUsers(c echo.Context, actor *Identity) error {
	l, err := a.layout(c, actor, a.super)
	if err != nil {
		return err
	}
	return Render(c, views.Users(views.UsersData{Layout: l, Users: a.Registry.Users()}))
}

func (a *App) handleAdminAnalytics(c echo.Context) error {
	actor, ok := a.requireSuper(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	counts, err := a.analyticsStore.TopPages(100)
	if err != nil {
		return err
	}
	rows := make([]views.PageViews, 0, len(counts))
	for _, pc := range counts {
		rows = append(rows, views.PageViews{Space: pc.Space, Page: pc.Page, Views: pc.Views})
	}
	l, err := a.layout(c, actor, a.super)
	if err != nil {
		return err
	}
	return Render(c, views.Analytics(views.AnalyticsData{Layout: l, Rows: rows}))
}
