package search

import (
	"log"

	"autorentool/api/internal/store"
)

// Service is the facade that tries Meilisearch first and falls back to a
// document scan. meili may be nil when Meilisearch is not configured.
type Service struct {
	meili *Meili
}

func NewService(meili *Meili) *Service {
	return &Service{meili: meili}
}

// Search answers q from Meilisearch when it is healthy, otherwise from a
// scan of doc.
func (s *Service) Search(doc *store.Document, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to scan: %v", err)
	}

	results, total := Scan(doc, q)
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexEntity pushes one entity into the index, fire-and-forget.
func (s *Service) IndexEntity(rec EntityRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEntity(rec); err != nil {
			log.Printf("search: index entity %s: %v", rec.ID, err)
		}
	}()
}

// DeleteEntity removes one entity from the index, fire-and-forget.
func (s *Service) DeleteEntity(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteEntity(id); err != nil {
			log.Printf("search: delete entity %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes every entity in the document into the index. Called at
// startup so the index catches up with edits made while it was down.
func (s *Service) ReindexAll(doc *store.Document) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	var records []EntityRecord
	for _, project := range doc.Projects.Keys() {
		p, _ := doc.Projects.Get(project)
		for _, category := range store.Categories {
			list, _ := p.List(category)
			for _, entity := range *list {
				records = append(records, EntityRecord{
					ID:       entity.ID,
					Project:  project,
					Category: category,
					Name:     entity.Name,
					Desc:     entity.Desc,
				})
			}
		}
	}
	if err := s.meili.IndexEntities(records); err != nil {
		log.Printf("search: reindex entities: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
