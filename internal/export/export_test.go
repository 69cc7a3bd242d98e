package export

import (
	"strings"
	"testing"

	"autorentool/api/internal/store"
)

func exportFixture() *store.Project {
	p := store.NewProject()
	p.Characters = append(p.Characters,
		store.Entity{ID: "c1", Name: "Eva", Desc: "Heldin", Comments: []string{}},
	)
	p.Chapters = append(p.Chapters,
		store.Entity{ID: "k1", Name: "Kapitel 1", Desc: "Der Anfang", Comments: []string{}},
	)
	p.Chat = append(p.Chat,
		store.ChatMessage{User: "autor1", Text: "Gefällt mir", Time: "2026-01-01 10:00:00.000000"},
	)
	return p
}

func TestExportHTML(t *testing.T) {
	result, err := Export("Roman1", exportFixture(), FormatHTML)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if result.Filename != "Roman1.html" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if !strings.HasPrefix(result.MimeType, "text/html") {
		t.Errorf("unexpected mime type %q", result.MimeType)
	}

	html := string(result.Data)
	for _, want := range []string{"Roman1", "Charaktere", "Eva", "Heldin", "Kapitel 1", "Projekt-Chat", "autor1"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected rendered HTML to contain %q", want)
		}
	}
	// Empty categories stay out of the export.
	if strings.Contains(html, "Orte") {
		t.Error("expected empty category to be omitted")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export("Roman1", exportFixture(), Format("epub")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Roman1":         "Roman1",
		"Mein Projekt":   "Mein-Projekt",
		"Über/Alles!":    "berAlles",
		"":               "projekt",
		"schon_benannt-": "schon_benannt-",
	}
	for input, want := range cases {
		if got := sanitizeFilename(input); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
