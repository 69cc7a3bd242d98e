// Package search finds entities across projects. Meilisearch serves the
// query when it is configured and reachable; otherwise a linear scan over
// the loaded document answers it, which is exact on the small lists this
// tool manages.
package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID       string `json:"id"`
	Project  string `json:"project"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Desc     string `json:"desc"`
}

// Query describes a search request.
type Query struct {
	Text          string
	FilterProject string // empty = all projects
	Limit         int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// EntityRecord is the data pushed into the search index per entity.
type EntityRecord struct {
	ID       string `json:"id"`
	Project  string `json:"project"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Desc     string `json:"desc"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}
