package export

import (
	"fmt"
	"time"

	"autorentool/api/internal/store"
)

// sectionTitles maps category keys to the headings used in the UI.
var sectionTitles = map[string]string{
	"chapters":   "Kapitel",
	"characters": "Charaktere",
	"places":     "Orte",
	"plots":      "Plots",
	"times":      "Zeiten",
}

// Export renders the project in the requested format.
func Export(name string, project *store.Project, format Format) (*Result, error) {
	data := TemplateData{
		Project:    name,
		ExportedAt: time.Now(),
	}
	for _, key := range store.Categories {
		list, _ := project.List(key)
		section := TemplateSection{Title: sectionTitles[key]}
		for _, entity := range *list {
			section.Entries = append(section.Entries, TemplateEntry{
				Name: entity.Name,
				Desc: entity.Desc,
			})
		}
		data.Sections = append(data.Sections, section)
	}
	for _, msg := range project.Chat {
		data.Chat = append(data.Chat, TemplateChatMessage{
			User: msg.User,
			Text: msg.Text,
			Time: msg.Time,
		})
	}

	html, err := RenderProjectHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render project template: %w", err)
	}

	switch format {
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(name) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(html, name)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
