package app

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"autorentool/api/internal/history"
	"autorentool/api/internal/search"
	"autorentool/api/internal/store"
)

// categoryTitles maps category keys to the headings shown in the UI.
var categoryTitles = map[string]string{
	"chapters":   "Kapitel",
	"characters": "Charaktere",
	"places":     "Orte",
	"plots":      "Plots",
	"times":      "Zeiten",
}

type layoutData struct {
	Title   string
	User    string
	Sidebar template.HTML
	Content template.HTML
}

var (
	layoutTmpl          = template.Must(template.New("layout").Parse(layoutText))
	loginTmpl           = template.Must(template.New("login").Parse(loginText))
	projectsContentTmpl = template.Must(template.New("projects").Parse(projectsContentText))
	projectContentTmpl  = template.Must(template.New("project").Parse(projectContentText))
	listContentTmpl     = template.Must(template.New("list").Parse(listContentText))
	editContentTmpl     = template.Must(template.New("edit").Parse(editContentText))
	searchContentTmpl   = template.Must(template.New("search").Parse(searchContentText))
	historyContentTmpl  = template.Must(template.New("history").Parse(historyContentText))
	projectSidebarTmpl  = template.Must(template.New("projectSidebar").Parse(projectSidebarText))
	listSidebarTmpl     = template.Must(template.New("listSidebar").Parse(listSidebarText))
)

func execute(tmpl *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("render: %s: %v", tmpl.Name(), err)
		return ""
	}
	return template.HTML(buf.String())
}

func writePage(w http.ResponseWriter, status int, data layoutData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layoutTmpl.Execute(w, data); err != nil {
		log.Printf("render: layout: %v", err)
	}
}

func (s *HTTPServer) renderLogin(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTmpl.Execute(w, nil); err != nil {
		log.Printf("render: login: %v", err)
	}
}

func (s *HTTPServer) renderProjects(w http.ResponseWriter, user string, projects []string) {
	content := execute(projectsContentTmpl, struct{ Projects []string }{projects})
	writePage(w, http.StatusOK, layoutData{Title: "Projekte", User: user, Content: content})
}

func (s *HTTPServer) renderProject(w http.ResponseWriter, user, name string, project *store.Project) {
	content := execute(projectContentTmpl, struct {
		Project string
		Chat    []store.ChatMessage
	}{name, project.Chat})
	sidebar := execute(projectSidebarTmpl, struct{ Project string }{name})
	writePage(w, http.StatusOK, layoutData{Title: name, User: user, Sidebar: sidebar, Content: content})
}

func (s *HTTPServer) renderList(w http.ResponseWriter, user, name, key string, entities []store.Entity) {
	content := execute(listContentTmpl, struct {
		Project  string
		Key      string
		Entities []store.Entity
	}{name, key, entities})
	sidebar := execute(listSidebarTmpl, struct{ Project string }{name})
	title := categoryTitles[key]
	if title == "" {
		title = key
	}
	writePage(w, http.StatusOK, layoutData{Title: title, User: user, Sidebar: sidebar, Content: content})
}

func (s *HTTPServer) renderEdit(w http.ResponseWriter, user, name, key string, entity store.Entity) {
	content := execute(editContentTmpl, struct {
		Project string
		Key     string
		Entity  store.Entity
	}{name, key, entity})
	writePage(w, http.StatusOK, layoutData{Title: "Bearbeiten", User: user, Content: content})
}

func (s *HTTPServer) renderSearch(w http.ResponseWriter, user string, resp search.Response) {
	content := execute(searchContentTmpl, resp)
	writePage(w, http.StatusOK, layoutData{Title: "Suche", User: user, Content: content})
}

func (s *HTTPServer) renderHistory(w http.ResponseWriter, user string, revisions []history.Revision) {
	content := execute(historyContentTmpl, struct{ Revisions []history.Revision }{revisions})
	writePage(w, http.StatusOK, layoutData{Title: "Verlauf", User: user, Content: content})
}

func (s *HTTPServer) renderNotFound(w http.ResponseWriter, user string) {
	writePage(w, http.StatusNotFound, layoutData{
		Title:   "Nicht gefunden",
		User:    user,
		Content: template.HTML("<div class=\"card\">Nicht gefunden</div>"),
	})
}

func (s *HTTPServer) renderServerError(w http.ResponseWriter, user string, err error) {
	log.Printf("request failed: %v", err)
	writePage(w, http.StatusInternalServerError, layoutData{
		Title:   "Fehler",
		User:    user,
		Content: template.HTML(fmt.Sprintf("<div class=\"card\">Interner Fehler: %s</div>", template.HTMLEscapeString(err.Error()))),
	})
}

const layoutText = `<!DOCTYPE html>
<html lang="de">
<head>
<title>{{.Title}}</title>
<meta charset="utf-8">
<style>
body { margin:0; font-family:Arial; background:#0f172a; color:#e5e7eb; }
a { color:#7dd3fc; text-decoration:none }
.app { display:flex; height:100vh }
.sidebar { width:240px; background:#020617; padding:20px }
.sidebar h2 { color:#38bdf8 }
.main { flex:1; padding:20px; overflow:auto }
.card { background:#020617; padding:15px; border-radius:12px; margin-bottom:15px }
.top { display:flex; justify-content:space-between; align-items:center }
input, textarea, button { width:100%; padding:10px; border-radius:8px; border:none; margin:5px 0 }
button { background:#38bdf8; color:#020617; font-weight:bold }
.chat { background:#000; padding:10px; border-radius:10px; max-height:300px; overflow:auto }
.muted { color:#64748b; font-size:0.85em }
</style>
</head>
<body>
<div class="app">
  <div class="sidebar">
    <h2>✍ AutorenTool</h2>
    {{.Sidebar}}
    <hr>
    <a href="/projects">📚 Projekte</a><br><br>
    <a href="/search">🔍 Suche</a><br><br>
    <a href="/history">🕘 Verlauf</a><br><br>
    <a href="/logout">🚪 Logout</a>
  </div>
  <div class="main">
    <div class="top">
      <h1>{{.Title}}</h1>
      <div>👤 {{.User}}</div>
    </div>
    {{.Content}}
  </div>
</div>
</body>
</html>`

const loginText = `<!DOCTYPE html>
<html lang="de">
<head><title>Login</title><meta charset="utf-8"></head>
<body>
<h2>Login</h2>
<form method="post">
<input name="user" placeholder="Benutzer"><br>
<input name="pass" type="password" placeholder="Passwort"><br>
<button>Login</button>
</form>
</body>
</html>`

const projectsContentText = `<div class="card">
<form method="post">
<input name="name" placeholder="Neues Projekt">
<button>Projekt erstellen</button>
</form>
</div>
{{range .Projects}}<div class="card">
<a href="/project/{{.}}">📂 {{.}}</a><br><br>
<a href="/delete_project/{{.}}">🗑 Löschen</a>
</div>
{{end}}`

const projectContentText = `<div class="card">
<h3>💬 Projekt-Chat</h3>
<form method="post">
<textarea name="text"></textarea>
<button>Senden</button>
</form>
<div class="chat">
{{range .Chat}}<b>{{.User}}</b>: {{.Text}}<br>
{{end}}</div>
</div>
<div class="card">
<a href="/export/{{.Project}}?format=html">⬇ Export (HTML)</a> |
<a href="/export/{{.Project}}?format=pdf">⬇ Export (PDF)</a>
</div>`

const listContentText = `<div class="card">
<form method="post">
<input name="name" placeholder="Name">
<textarea name="desc" placeholder="Beschreibung"></textarea>
<button>Hinzufügen</button>
</form>
</div>
{{$project := .Project}}{{$key := .Key}}
{{range .Entities}}<div class="card">
<b>{{.Name}}</b><br>{{.Desc}}<br><br>
<a href="/edit/{{$project}}/{{$key}}/{{.ID}}">✏ Bearbeiten</a> |
<a href="/delete/{{$project}}/{{$key}}/{{.ID}}">🗑 Löschen</a>
</div>
{{end}}`

const editContentText = `<div class="card">
<form method="post">
<input name="name" value="{{.Entity.Name}}">
<textarea name="desc">{{.Entity.Desc}}</textarea>
<button>Speichern</button>
</form>
</div>`

const searchContentText = `<div class="card">
<form method="get">
<input name="q" value="{{.Query}}" placeholder="Suchbegriff">
<button>Suchen</button>
</form>
</div>
{{range .Results}}<div class="card">
<b>{{.Name}}</b> <span class="muted">{{.Category}} in {{.Project}}</span><br>
{{.Desc}}<br><br>
<a href="/edit/{{.Project}}/{{.Category}}/{{.ID}}">✏ Bearbeiten</a>
</div>
{{end}}
{{if .Query}}<div class="muted">{{.Total}} Treffer</div>{{end}}`

const historyContentText = `{{range .Revisions}}<div class="card">
<b>{{.Message}}</b><br>
<span class="muted">{{.Hash}} · {{.Author}} · {{.CreatedAt.Format "02.01.2006 15:04:05"}}</span><br><br>
<a href="/history/{{.Hash}}">⬇ Stand herunterladen</a>
</div>
{{else}}<div class="card">Noch keine Änderungen aufgezeichnet.</div>
{{end}}`

const projectSidebarText = `<b>📂 {{.Project}}</b><br><br>
<a href="/list/{{.Project}}/chapters">📖 Kapitel</a><br>
<a href="/list/{{.Project}}/characters">👤 Charaktere</a><br>
<a href="/list/{{.Project}}/places">🏙 Orte</a><br>
<a href="/list/{{.Project}}/plots">🧠 Plots</a><br>
<a href="/list/{{.Project}}/times">⏳ Zeiten</a><br>`

const listSidebarText = `<b>📂 {{.Project}}</b><br><br>
<a href="/project/{{.Project}}">⬅ Übersicht</a><br>
<hr>
<a href="/list/{{.Project}}/chapters">📖 Kapitel</a><br>
<a href="/list/{{.Project}}/characters">👤 Charaktere</a><br>
<a href="/list/{{.Project}}/places">🏙 Orte</a><br>
<a href="/list/{{.Project}}/plots">🧠 Plots</a><br>
<a href="/list/{{.Project}}/times">⏳ Zeiten</a><br>`
