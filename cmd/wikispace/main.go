// Command wikispace starts the wiki server. All configuration comes from
// environment variables.
package main

import (
	"log"
	"strings"

	"github.com/eringen/wikispace"
)

func main() {
	cfg := wikispace.SiteConfig{
		Name:          wikispace.EnvOr("SITE_NAME", "Personal Wiki"),
		URL:           strings.TrimSuffix(wikispace.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
		Addr:          wikispace.EnvOr("ADDR", ":3000"),
		DataDir:       wikispace.EnvOr("DATA_DIR", "wiki_pages"),
		ImageDir:      wikispace.EnvOr("IMAGE_DIR", "wiki_images"),
		UsersFile:     wikispace.EnvOr("USERS_FILE", "users.json"),
		SuperUser:     wikispace.EnvOr("SUPER_USER", "Postman"),
		SessionSecret: wikispace.MustEnv("SESSION_SECRET"),
		CookieSecure:  strings.EqualFold(wikispace.EnvOr("COOKIE_SECURE", ""), "true"),

		AnalyticsEnabled:      strings.EqualFold(wikispace.EnvOr("ANALYTICS_ENABLED", ""), "true"),
		AnalyticsDatabasePath: wikispace.EnvOr("ANALYTICS_DATABASE_PATH", "data/analytics.db"),
	}

	app := wikispace.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
