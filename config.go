package wikispace

import "time"

// SiteConfig holds all configuration for a wikispace site.
type SiteConfig struct {
	Name string // Site name (default "Personal Wiki")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr      string // Listen address (default ":3000")
	DataDir   string // Parent directory of the per-user spaces (default "wiki_pages")
	ImageDir  string // Shared image directory (default "wiki_images")
	UsersFile string // Registry JSON file (default "users.json")

	SuperUser string // Hidden super-user identity (default "Postman")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	AnalyticsEnabled      bool          // Enable page-view tracking (default off)
	AnalyticsDatabasePath string        // Analytics SQLite path (default "data/analytics.db")
	AnalyticsRetention    time.Duration // How long to keep visits (default 365 days)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Personal Wiki"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "wiki_pages"
	}
	if c.ImageDir == "" {
		c.ImageDir = "wiki_images"
	}
	if c.UsersFile == "" {
		c.UsersFile = "users.json"
	}
	if c.SuperUser == "" {
		c.SuperUser = "Postman"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365 * 24 * time.Hour
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithRegistryFile overrides the registry persistence port, mainly for
// tests and embedders that keep users somewhere other than a JSON file.
func WithRegistryFile(f RegistryFile) Option {
	return func(a *App) {
		a.registryFile = f
	}
}
