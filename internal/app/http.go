package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"autorentool/api/internal/export"
	"autorentool/api/internal/search"
)

type HTTPServer struct {
	service *Service
}

func NewHTTPServer(service *Service) *HTTPServer {
	return &HTTPServer{service: service}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/healthz" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		return
	}

	if r.URL.Path == "/login" {
		switch r.Method {
		case http.MethodGet:
			s.renderLogin(w)
		case http.MethodPost:
			s.handleLogin(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Everything below requires the session slot to be occupied.
	user, ok := s.service.CurrentUser(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/logout" {
		if err := s.service.Logout(r.Context()); err != nil {
			s.renderServerError(w, user, err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if r.URL.Path == "/" || r.URL.Path == "/projects" {
		switch r.Method {
		case http.MethodGet:
			s.handleProjects(w, r, user)
		case http.MethodPost:
			s.handleCreateProject(w, r, user)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/search" {
		s.handleSearch(w, r, user)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/history" {
		s.handleHistory(w, r, user)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) == 0 {
		s.renderNotFound(w, user)
		return
	}

	switch parts[0] {
	case "delete_project":
		if r.Method == http.MethodGet && len(parts) == 2 {
			if err := s.service.DeleteProject(r.Context(), parts[1]); err != nil {
				s.renderError(w, user, err)
				return
			}
			http.Redirect(w, r, "/projects", http.StatusFound)
			return
		}
	case "project":
		if len(parts) == 2 {
			switch r.Method {
			case http.MethodGet:
				s.handleProject(w, r, user, parts[1])
				return
			case http.MethodPost:
				s.handleChat(w, r, user, parts[1])
				return
			}
		}
	case "list":
		if len(parts) == 3 {
			switch r.Method {
			case http.MethodGet:
				s.handleListEntities(w, r, user, parts[1], parts[2])
				return
			case http.MethodPost:
				s.handleCreateEntity(w, r, user, parts[1], parts[2])
				return
			}
		}
	case "edit":
		if len(parts) == 4 {
			switch r.Method {
			case http.MethodGet:
				s.handleEditForm(w, r, user, parts[1], parts[2], parts[3])
				return
			case http.MethodPost:
				s.handleEditSubmit(w, r, user, parts[1], parts[2], parts[3])
				return
			}
		}
	case "delete":
		if r.Method == http.MethodGet && len(parts) == 4 {
			s.handleDeleteEntity(w, r, user, parts[1], parts[2], parts[3])
			return
		}
	case "export":
		if r.Method == http.MethodGet && len(parts) == 2 {
			s.handleExport(w, r, user, parts[1])
			return
		}
	case "history":
		if r.Method == http.MethodGet && len(parts) == 2 {
			s.handleSnapshotDownload(w, r, user, parts[1])
			return
		}
	}

	s.renderNotFound(w, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	user := r.FormValue("user")
	pass := r.FormValue("pass")
	if err := s.service.Login(r.Context(), user, pass); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			// Re-show the form; the original gives no hint which part was wrong.
			s.renderLogin(w)
			return
		}
		s.renderServerError(w, "", err)
		return
	}
	http.Redirect(w, r, "/projects", http.StatusFound)
}

func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, user string) {
	projects, err := s.service.ListProjects(r.Context())
	if err != nil {
		s.renderServerError(w, user, err)
		return
	}
	s.renderProjects(w, user, projects)
}

func (s *HTTPServer) handleCreateProject(w http.ResponseWriter, r *http.Request, user string) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name != "" {
		if err := s.service.CreateProject(r.Context(), name); err != nil {
			s.renderServerError(w, user, err)
			return
		}
	}
	http.Redirect(w, r, "/projects", http.StatusFound)
}

func (s *HTTPServer) handleProject(w http.ResponseWriter, r *http.Request, user, name string) {
	project, err := s.service.Project(r.Context(), name)
	if err != nil {
		s.renderError(w, user, err)
		return
	}
	s.renderProject(w, user, name, project)
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request, user, name string) {
	text := r.FormValue("text")
	if text != "" {
		if err := s.service.AppendChat(r.Context(), name, text); err != nil {
			s.renderError(w, user, err)
			return
		}
	}
	http.Redirect(w, r, "/project/"+pathEscape(name), http.StatusFound)
}

func (s *HTTPServer) handleListEntities(w http.ResponseWriter, r *http.Request, user, name, key string) {
	entities, err := s.service.Entities(r.Context(), name, key)
	if err != nil {
		s.renderError(w, user, err)
		return
	}
	s.renderList(w, user, name, key, entities)
}

func (s *HTTPServer) handleCreateEntity(w http.ResponseWriter, r *http.Request, user, name, key string) {
	entityName := r.FormValue("name")
	desc := r.FormValue("desc")
	if _, err := s.service.CreateEntity(r.Context(), name, key, entityName, desc); err != nil {
		s.renderError(w, user, err)
		return
	}
	http.Redirect(w, r, "/list/"+pathEscape(name)+"/"+key, http.StatusFound)
}

func (s *HTTPServer) handleEditForm(w http.ResponseWriter, r *http.Request, user, name, key, id string) {
	entity, err := s.service.Entity(r.Context(), name, key, id)
	if err != nil {
		s.renderError(w, user, err)
		return
	}
	s.renderEdit(w, user, name, key, entity)
}

func (s *HTTPServer) handleEditSubmit(w http.ResponseWriter, r *http.Request, user, name, key, id string) {
	entityName := r.FormValue("name")
	desc := r.FormValue("desc")
	if _, err := s.service.UpdateEntity(r.Context(), name, key, id, entityName, desc); err != nil {
		s.renderError(w, user, err)
		return
	}
	http.Redirect(w, r, "/list/"+pathEscape(name)+"/"+key, http.StatusFound)
}

func (s *HTTPServer) handleDeleteEntity(w http.ResponseWriter, r *http.Request, user, name, key, id string) {
	if err := s.service.DeleteEntity(r.Context(), name, key, id); err != nil {
		s.renderError(w, user, err)
		return
	}
	http.Redirect(w, r, "/list/"+pathEscape(name)+"/"+key, http.StatusFound)
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request, user string) {
	q := search.Query{
		Text:          r.URL.Query().Get("q"),
		FilterProject: r.URL.Query().Get("project"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if q.Text == "" {
		s.renderSearch(w, user, search.Response{Results: []search.Result{}})
		return
	}
	resp, err := s.service.Search(r.Context(), q)
	if err != nil {
		s.renderServerError(w, user, err)
		return
	}
	s.renderSearch(w, user, resp)
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request, user string) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	revisions, err := s.service.Revisions(r.Context(), limit)
	if err != nil {
		s.renderServerError(w, user, err)
		return
	}
	s.renderHistory(w, user, revisions)
}

func (s *HTTPServer) handleSnapshotDownload(w http.ResponseWriter, r *http.Request, user, hash string) {
	data, err := s.service.SnapshotContent(r.Context(), hash)
	if err != nil {
		s.renderError(w, user, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"document-"+hash+".json\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, user, name string) {
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatHTML
	}
	result, err := s.service.ExportProject(r.Context(), name, format)
	if err != nil {
		s.renderError(w, user, err)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// renderError routes domain failures to the 404 page and everything else to
// the generic error page.
func (s *HTTPServer) renderError(w http.ResponseWriter, user string, err error) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Status == http.StatusNotFound {
		s.renderNotFound(w, user)
		return
	}
	if errors.Is(err, ErrEntityNotFound) {
		s.renderNotFound(w, user)
		return
	}
	s.renderServerError(w, user, err)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		writer.Header().Set("X-Request-ID", requestID)
		writer.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// pathEscape escapes a single path segment for use in a redirect Location.
func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
