package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestHandler(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc := newTestService(t)
	return NewHTTPServer(svc).Handler(), svc
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, handler http.Handler, user, pass string) {
	t.Helper()
	rr := postForm(t, handler, "/login", url.Values{"user": {user}, "pass": {pass}})
	if rr.Code != http.StatusFound {
		t.Fatalf("login %s: expected redirect, got %d body=%s", user, rr.Code, rr.Body.String())
	}
}

func TestRoutesRedirectToLoginWithoutSession(t *testing.T) {
	handler, _ := newTestHandler(t)

	for _, path := range []string{"/", "/projects", "/project/Roman", "/list/Roman/characters", "/search", "/history", "/logout"} {
		rr := get(t, handler, path)
		if rr.Code != http.StatusFound {
			t.Fatalf("GET %s: expected 302, got %d", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/login" {
			t.Fatalf("GET %s: expected redirect to /login, got %q", path, loc)
		}
	}
}

func TestHealthzNeedsNoSession(t *testing.T) {
	handler, _ := newTestHandler(t)
	rr := get(t, handler, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestLoginSuccessRedirectsToProjects(t *testing.T) {
	handler, _ := newTestHandler(t)
	rr := postForm(t, handler, "/login", url.Values{"user": {"autor1"}, "pass": {"passwort1"}})
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/projects" {
		t.Fatalf("expected redirect to /projects, got %q", loc)
	}

	rr = get(t, handler, "/projects")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Projekt erstellen") {
		t.Fatalf("projects page missing create form: %s", rr.Body.String())
	}
}

func TestLoginFailureReShowsForm(t *testing.T) {
	handler, _ := newTestHandler(t)
	rr := postForm(t, handler, "/login", url.Values{"user": {"autor1"}, "pass": {"falsch"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<form method=\"post\">") {
		t.Fatalf("expected the login form again, got %s", rr.Body.String())
	}

	// The slot stays empty, so the overview still bounces to /login.
	rr = get(t, handler, "/")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLogoutClearsSlot(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")

	rr := get(t, handler, "/logout")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = get(t, handler, "/projects")
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302 after logout, got %d", rr.Code)
	}
}

func TestProjectPageAndChatFlow(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")

	rr := postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/projects" {
		t.Fatalf("create project: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(t, handler, "/project/Roman")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Projekt-Chat") {
		t.Fatalf("project page missing chat: %s", rr.Body.String())
	}

	rr = postForm(t, handler, "/project/Roman", url.Values{"text": {"Hallo zusammen"}})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/project/Roman" {
		t.Fatalf("chat post: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(t, handler, "/project/Roman")
	if !strings.Contains(rr.Body.String(), "Hallo zusammen") {
		t.Fatalf("chat message missing: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "<b>autor1</b>") {
		t.Fatalf("chat sender missing: %s", rr.Body.String())
	}
}

func TestEntityRoutes(t *testing.T) {
	handler, svc := newTestHandler(t)
	login(t, handler, "autor2", "passwort2")

	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})

	rr := postForm(t, handler, "/list/Roman/characters", url.Values{"name": {"Ada"}, "desc": {"Protagonistin"}})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/list/Roman/characters" {
		t.Fatalf("create entity: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(t, handler, "/list/Roman/characters")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Ada") {
		t.Fatalf("list page: %d %s", rr.Code, rr.Body.String())
	}

	entities, err := svc.Entities(t.Context(), "Roman", "characters")
	if err != nil || len(entities) != 1 {
		t.Fatalf("entities: %v %+v", err, entities)
	}
	id := entities[0].ID

	rr = get(t, handler, "/edit/Roman/characters/"+id)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Protagonistin") {
		t.Fatalf("edit page: %d %s", rr.Code, rr.Body.String())
	}

	rr = postForm(t, handler, "/edit/Roman/characters/"+id, url.Values{"name": {"Ada"}, "desc": {"Heldin"}})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/list/Roman/characters" {
		t.Fatalf("edit submit: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(t, handler, "/delete/Roman/characters/"+id)
	if rr.Code != http.StatusFound {
		t.Fatalf("delete: expected 302, got %d", rr.Code)
	}
	rr = get(t, handler, "/list/Roman/characters")
	if strings.Contains(rr.Body.String(), "Heldin") {
		t.Fatalf("entity still listed after delete: %s", rr.Body.String())
	}
}

func TestUnknownEntityIDRendersNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})

	rr := get(t, handler, "/edit/Roman/characters/keine-id")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Nicht gefunden") {
		t.Fatalf("expected Nicht gefunden page, got %s", rr.Body.String())
	}
}

func TestUnknownProjectRendersNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")

	for _, path := range []string{"/project/Gibtsnicht", "/list/Gibtsnicht/characters", "/list/Roman/monsters"} {
		rr := get(t, handler, path)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("GET %s: expected 404, got %d", path, rr.Code)
		}
	}
}

func TestDeleteProjectRouteIsIdempotent(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})

	for i := 0; i < 2; i++ {
		rr := get(t, handler, "/delete_project/Roman")
		if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/projects" {
			t.Fatalf("delete %d: got %d %q", i, rr.Code, rr.Header().Get("Location"))
		}
	}
}

func TestSearchPage(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})
	postForm(t, handler, "/list/Roman/places", url.Values{"name": {"Drachenfels"}, "desc": {"Berg"}})

	rr := get(t, handler, "/search?q=drachen")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Drachenfels") {
		t.Fatalf("search result missing: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "1 Treffer") {
		t.Fatalf("hit count missing: %s", rr.Body.String())
	}
}

func TestHistoryPage(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})

	rr := get(t, handler, "/history")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "angelegt") {
		t.Fatalf("expected a recorded change, got %s", rr.Body.String())
	}
}

func TestSnapshotDownloadRoute(t *testing.T) {
	handler, svc := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})

	revisions, err := svc.Revisions(t.Context(), 1)
	if err != nil || len(revisions) == 0 {
		t.Fatalf("revisions: %v %+v", err, revisions)
	}

	rr := get(t, handler, "/history/"+revisions[0].Hash)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "\"Roman\"") {
		t.Fatalf("snapshot missing project: %s", rr.Body.String())
	}

	rr = get(t, handler, "/history/abcdef1")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown snapshot, got %d", rr.Code)
	}
}

func TestExportHTMLRoute(t *testing.T) {
	handler, _ := newTestHandler(t)
	login(t, handler, "autor1", "passwort1")
	postForm(t, handler, "/projects", url.Values{"name": {"Roman"}})
	postForm(t, handler, "/list/Roman/chapters", url.Values{"name": {"Anfang"}, "desc": {"Es beginnt."}})

	rr := get(t, handler, "/export/Roman?format=html")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.Contains(rr.Body.String(), "Anfang") {
		t.Fatalf("export missing chapter: %s", rr.Body.String())
	}
}
