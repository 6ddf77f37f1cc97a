// Package wikispace is a multi-tenant wiki engine built with Go, Echo, and
// templ. Every registered user owns a "space" of raw HTML pages stored as
// flat files; a hidden super-user overlays all spaces and manages the user
// list. There is no versioning and no password auth: login is
// username-only, and authorization is the only gate on content.
package wikispace

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wikispace/analytics"
	"github.com/eringen/wikispace/views"
)

// App is the central wikispace application. It wires together the registry,
// the space and image stores, handlers, middleware, and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Registry *Registry
	Spaces   *SpaceStore
	Images   *ImageStore

	super          Identity
	loginLimiter   *LoginLimiter
	analyticsStore *analytics.Store
	customRoutes   []func(*App)
	staticDir      string
	registryFile   RegistryFile
}

// New creates a new wikispace App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes storage, middleware, and routes, then starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}

	if a.Config.AnalyticsEnabled {
		stopCleanup := a.analyticsStore.StartCleanupScheduler(a.Config.AnalyticsRetention, 24*time.Hour)
		defer stopCleanup()
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init builds every dependency short of the listening socket. Split out of
// Start so tests can exercise the full wired app with httptest.
func (a *App) init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("wikispace: SessionSecret is required")
	}

	a.super = Super(a.Config.SuperUser)

	spaces, err := NewSpaceStore(a.Config.DataDir)
	if err != nil {
		return fmt.Errorf("wikispace: init space store: %w", err)
	}
	a.Spaces = spaces

	images, err := NewImageStore(a.Config.ImageDir)
	if err != nil {
		return fmt.Errorf("wikispace: init image store: %w", err)
	}
	a.Images = images

	if a.registryFile == nil {
		a.registryFile = NewJSONRegistryFile(a.Config.UsersFile)
	}
	registry, err := NewRegistry(a.registryFile, spaces, a.super)
	if err != nil {
		return fmt.Errorf("wikispace: init registry: %w", err)
	}
	a.Registry = registry

	// Provision every known space up front, the super-user's included.
	// Spaces are also re-ensured lazily on every reference.
	if err := spaces.Ensure(a.super); err != nil {
		return err
	}
	for _, u := range registry.Users() {
		if err := spaces.Ensure(User(u)); err != nil {
			return err
		}
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("wikispace: init analytics: %w", err)
		}
		a.analyticsStore = store
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Public browsing — anonymous visitors see the super-user's space.
	e.GET("/", a.handleIndex)
	e.GET("/page/:name/", a.handlePage)
	e.GET("/images/:filename", a.handleImage)

	// Authenticated mutation — every handler consults CanEdit against the
	// resolved space before touching storage.
	e.GET("/new/", a.handleNewForm)
	e.POST("/new/", a.handleNewSave)
	e.GET("/edit/:name/", a.handleEditForm)
	e.POST("/edit/:name/", a.handleEditSave)
	e.POST("/delete/:name/", a.handleDelete)

	// Sessions
	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.GET("/logout/", a.handleLogout)

	// Super-user administration
	e.GET("/admin/users/", a.handleAdminUsers)
	e.POST("/admin/users/", a.handleAdminUsersPost)

	if a.Config.AnalyticsEnabled {
		e.GET("/admin/analytics/", a.handleAdminAnalytics)
	}
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /edit/\nDisallow: /new/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("wikispace: required environment variable %s is not set", key)
	}
	return v
}
