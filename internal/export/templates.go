package export

import (
	"bytes"
	"html/template"
	"time"
)

// TemplateData holds everything the project template renders.
type TemplateData struct {
	Project    string
	ExportedAt time.Time
	Sections   []TemplateSection
	Chat       []TemplateChatMessage
}

// TemplateSection is one entity category with its entries.
type TemplateSection struct {
	Title   string
	Entries []TemplateEntry
}

// TemplateEntry is one entity.
type TemplateEntry struct {
	Name string
	Desc string
}

// TemplateChatMessage is one chat log line.
type TemplateChatMessage struct {
	User string
	Text string
	Time string
}

var projectTemplate = template.Must(template.New("project").Parse(projectTemplateText))

// RenderProjectHTML renders the printable project document.
func RenderProjectHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := projectTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const projectTemplateText = `<!DOCTYPE html>
<html lang="de">
<head>
  <meta charset="UTF-8">
  <title>{{.Project}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; color: #111; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    h2 { margin-top: 2rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .entry { background: #f5f5f5; padding: 1rem; margin: 1rem 0; border-left: 3px solid #333; }
    .entry b { display: block; margin-bottom: 0.3rem; }
    .chat { font-size: 0.9em; }
    .chat .line { margin: 0.3rem 0; }
    .chat .when { color: #999; }
  </style>
</head>
<body>
  <h1>{{.Project}}</h1>
  <div class="meta">Exportiert am {{.ExportedAt.Format "02.01.2006 15:04"}}</div>
  {{range .Sections}}{{if .Entries}}
  <h2>{{.Title}}</h2>
  {{range .Entries}}<div class="entry"><b>{{.Name}}</b>{{.Desc}}</div>
  {{end}}{{end}}{{end}}
  {{if .Chat}}
  <h2>Projekt-Chat</h2>
  <div class="chat">
    {{range .Chat}}<div class="line"><b>{{.User}}</b>: {{.Text}} <span class="when">{{.Time}}</span></div>
    {{end}}
  </div>
  {{end}}
</body>
</html>`
