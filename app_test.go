package wikispace

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	a := New(SiteConfig{
		DataDir:       filepath.Join(dir, "wiki_pages"),
		ImageDir:      filepath.Join(dir, "wiki_images"),
		UsersFile:     filepath.Join(dir, "users.json"),
		SessionSecret: "test-secret",
	})
	if err := a.init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func ptr(id Identity) *Identity { return &id }

// fetchCSRF loads the login form to obtain a CSRF cookie and its token.
func fetchCSRF(t *testing.T, a *App) (*http.Cookie, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/login/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "_csrf" {
			return ck, ck.Value
		}
	}
	t.Fatal("no CSRF cookie issued")
	return nil, ""
}

// loginAs performs a full form login and returns the cookies (session plus
// CSRF) and the CSRF token for follow-up requests.
func loginAs(t *testing.T, a *App, username string) ([]*http.Cookie, string) {
	t.Helper()
	csrf, token := fetchCSRF(t, a)
	form := url.Values{"username": {username}, "_csrf": {token}}
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}
	return append(rec.Result().Cookies(), csrf), token
}

func TestResolveSpace(t *testing.T) {
	a := newTestApp(t)
	if err := a.Registry.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	super := a.super
	alice := User("alice")

	tests := []struct {
		name      string
		actor     *Identity
		requested string
		want      Identity
	}{
		{"anonymous ignores space param", nil, "alice", super},
		{"anonymous defaults to public space", nil, "", super},
		{"regular user pinned to own space", ptr(alice), "", alice},
		{"regular user cannot tamper via param", ptr(alice), "Postman", alice},
		{"super defaults to own space", ptr(super), "", super},
		{"super selects a known space", ptr(super), "alice", alice},
		{"super selects own space by name", ptr(super), "Postman", super},
		{"super falls back on unknown space", ptr(super), "mallory", super},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.resolveSpace(tt.actor, tt.requested)
			if !got.Equal(tt.want) {
				t.Errorf("resolveSpace = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnonymousIndexShowsOnlyPublicSpace(t *testing.T) {
	a := newTestApp(t)
	if err := a.Registry.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := a.Spaces.SavePage(a.super, "PublicPage", "<p>hello</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}
	if err := a.Spaces.SavePage(User("alice"), "AliceSecret", "<p>private</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	// The space parameter must be ignored server-side for anonymous
	// visitors; only the public space's pages may appear.
	req := httptest.NewRequest(http.MethodGet, "/?space=alice", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "PublicPage") {
		t.Error("index should list the public space's pages")
	}
	if strings.Contains(body, "AliceSecret") {
		t.Error("index leaked a private space's pages")
	}
}

func TestAnonymousCannotViewPrivatePage(t *testing.T) {
	a := newTestApp(t)
	if err := a.Registry.Add("alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := a.Spaces.SavePage(User("alice"), "Secret", "<p>private</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/page/Secret/?space=alice", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (space param ignored, page not in public space)", rec.Code)
	}
}

func TestViewPublicPage(t *testing.T) {
	a := newTestApp(t)
	if err := a.Spaces.SavePage(a.super, "Welcome", "<p>raw <b>html</b></p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/page/Welcome/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>raw <b>html</b></p>") {
		t.Error("page content should be rendered unescaped")
	}
}

func TestViewMissingPage404(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/page/Nope/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	// The sentinel from the page handler must land on the styled screen,
	// not Echo's JSON error body.
	if !strings.Contains(rec.Body.String(), "<h1>404</h1>") {
		t.Error("missing page should render the styled not-found screen")
	}
}

func TestAnonymousEditRedirectsToLogin(t *testing.T) {
	a := newTestApp(t)
	if err := a.Spaces.SavePage(a.super, "Welcome", "<p>hi</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/edit/Welcome/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	want := "/login/?next=" + url.QueryEscape("/edit/Welcome/")
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("redirect = %q, want %q", loc, want)
	}
}

func TestLoginFollowsNextPath(t *testing.T) {
	a := newTestApp(t)
	if err := a.Spaces.SavePage(a.super, "Welcome", "<p>hi</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	csrf, token := fetchCSRF(t, a)
	form := url.Values{
		"username": {a.super.Name()},
		"next":     {"/edit/Welcome/"},
		"_csrf":    {token},
	}
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/edit/Welcome/" {
		t.Errorf("redirect = %q, want /edit/Welcome/", loc)
	}
}

func TestSafeReturnPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/edit/Welcome/", "/edit/Welcome/"},
		{"/page/Foo/?space=alice", "/page/Foo/?space=alice"},
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{"/\\evil.example", "/"},
		{"relative/path", "/"},
	}
	for _, tt := range tests {
		if got := safeReturnPath(tt.next); got != tt.want {
			t.Errorf("safeReturnPath(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestSuperManagesUsers(t *testing.T) {
	a := newTestApp(t)
	cookies, token := loginAs(t, a, a.super.Name())

	req := httptest.NewRequest(http.MethodGet, "/admin/users/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin screen status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Manage Users") {
		t.Error("admin screen should render the user management form")
	}

	form := url.Values{"action": {"add"}, "username": {"bob"}, "_csrf": {token}}
	req = httptest.NewRequest(http.MethodPost, "/admin/users/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("add user status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/users/" {
		t.Errorf("redirect = %q, want /admin/users/", loc)
	}
	if !a.Registry.Has("bob") {
		t.Error("user should be registered after the add action")
	}

	form = url.Values{"action": {"remove"}, "username": {"bob"}, "_csrf": {token}}
	req = httptest.NewRequest(http.MethodPost, "/admin/users/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("remove user status = %d, want 303", rec.Code)
	}
	if a.Registry.Has("bob") {
		t.Error("user should be gone after the remove action")
	}
}

func TestServeUploadedImage(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.Images.SaveImage("pic.png", strings.NewReader("fakepng")); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/images/pic.png", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "fakepng" {
		t.Errorf("body = %q, want stored bytes", rec.Body.String())
	}
}

func TestSitemapListsPublicPages(t *testing.T) {
	a := newTestApp(t)
	if err := a.Spaces.SavePage(a.super, "Welcome", "<p>hi</p>"); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/page/Welcome/") {
		t.Error("sitemap should contain the public page URL")
	}
}
