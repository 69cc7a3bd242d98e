package search

import (
	"testing"

	"autorentool/api/internal/store"
)

func scanFixture() *store.Document {
	doc := store.NewDocument()

	roman := store.NewProject()
	roman.Characters = append(roman.Characters,
		store.Entity{ID: "c1", Name: "Eva", Desc: "Heldin der Geschichte", Comments: []string{}},
		store.Entity{ID: "c2", Name: "Karl", Desc: "Gegenspieler", Comments: []string{}},
	)
	roman.Places = append(roman.Places,
		store.Entity{ID: "p1", Name: "Hafenstadt", Desc: "Heimat von Eva", Comments: []string{}},
	)
	doc.Projects.Set("Roman1", roman)

	novelle := store.NewProject()
	novelle.Plots = append(novelle.Plots,
		store.Entity{ID: "n1", Name: "Auftakt", Desc: "Eva reist ab", Comments: []string{}},
	)
	doc.Projects.Set("Novelle", novelle)

	return doc
}

func TestScanMatchesNameAndDesc(t *testing.T) {
	doc := scanFixture()

	results, total := Scan(doc, Query{Text: "eva"})
	if total != 3 {
		t.Fatalf("expected 3 hits for eva, got %d", total)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Hits come back in project insertion order, category order within.
	if results[0].ID != "c1" || results[0].Category != "characters" || results[0].Project != "Roman1" {
		t.Errorf("unexpected first hit: %+v", results[0])
	}
	if results[1].ID != "p1" || results[1].Category != "places" {
		t.Errorf("unexpected second hit: %+v", results[1])
	}
	if results[2].ID != "n1" || results[2].Project != "Novelle" {
		t.Errorf("unexpected third hit: %+v", results[2])
	}
}

func TestScanFilterProject(t *testing.T) {
	doc := scanFixture()

	results, total := Scan(doc, Query{Text: "eva", FilterProject: "Novelle"})
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected 1 hit, got total=%d len=%d", total, len(results))
	}
	if results[0].ID != "n1" {
		t.Errorf("unexpected hit: %+v", results[0])
	}
}

func TestScanLimitKeepsTotal(t *testing.T) {
	doc := scanFixture()

	results, total := Scan(doc, Query{Text: "", Limit: 2})
	if total != 4 {
		t.Errorf("expected total 4 for empty query, got %d", total)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results under limit, got %d", len(results))
	}
}

func TestScanNoMatch(t *testing.T) {
	doc := scanFixture()

	results, total := Scan(doc, Query{Text: "drache"})
	if total != 0 || len(results) != 0 {
		t.Errorf("expected no hits, got total=%d len=%d", total, len(results))
	}
}
