package search

import (
	"strings"

	"autorentool/api/internal/store"
)

// Scan walks every entity list in the document and returns the entities
// whose name or description contains the query, case-insensitively. The
// document is small by construction, so this is the exact baseline the
// index only approximates.
func Scan(doc *store.Document, q Query) ([]Result, int) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	limit := q.Limit
	if limit == 0 {
		limit = 50
	}

	var results []Result
	total := 0
	for _, project := range doc.Projects.Keys() {
		if q.FilterProject != "" && q.FilterProject != project {
			continue
		}
		p, _ := doc.Projects.Get(project)
		for _, category := range store.Categories {
			list, _ := p.List(category)
			for _, entity := range *list {
				if needle != "" &&
					!strings.Contains(strings.ToLower(entity.Name), needle) &&
					!strings.Contains(strings.ToLower(entity.Desc), needle) {
					continue
				}
				total++
				if len(results) < limit {
					results = append(results, Result{
						ID:       entity.ID,
						Project:  project,
						Category: category,
						Name:     entity.Name,
						Desc:     entity.Desc,
					})
				}
			}
		}
	}
	return results, total
}
