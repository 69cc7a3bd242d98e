// Package app wires the document store, the session slot, and the HTTP
// surface together. Every operation runs the same sequence the original
// tool ran: load the whole document, maybe mutate it, maybe save it back.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"autorentool/api/internal/backup"
	"autorentool/api/internal/export"
	"autorentool/api/internal/history"
	"autorentool/api/internal/search"
	"autorentool/api/internal/session"
	"autorentool/api/internal/store"
	"autorentool/api/internal/util"
)

// Service implements the application operations over the file-backed
// document. A single mutex serializes every load-mutate-save sequence, so
// two in-process requests cannot interleave and lose a write. Writers in
// other processes still race at the file level; that stays last-write-wins.
type Service struct {
	store    *store.FileStore
	sessions session.Holder
	search   *search.Service
	history  *history.Service
	backup   *backup.Uploader

	mu sync.Mutex
}

// New assembles a service. uploader may be nil when no object storage is
// configured.
func New(fileStore *store.FileStore, sessions session.Holder, searchSvc *search.Service, historySvc *history.Service, uploader *backup.Uploader) *Service {
	return &Service{
		store:    fileStore,
		sessions: sessions,
		search:   searchSvc,
		history:  historySvc,
		backup:   uploader,
	}
}

// Bootstrap loads the document once at startup so a missing file gets
// seeded and a stale search index gets refilled before the first request.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.search.ReindexAll(doc)
	return nil
}

// CurrentUser returns the username in the session slot, if any.
func (s *Service) CurrentUser(ctx context.Context) (string, bool) {
	return s.sessions.Current(ctx)
}

// Login checks the credentials against the document's user table and, on
// success, takes over the session slot. A second login replaces whoever was
// logged in before; that is the single-slot contract.
func (s *Service) Login(ctx context.Context, user, pass string) error {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	stored, ok := doc.Users.Get(user)
	if !ok || !passwordMatches(stored, pass) {
		return ErrBadCredentials
	}
	return s.sessions.Set(ctx, user)
}

// Logout clears the session slot unconditionally.
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// passwordMatches compares a stored credential with the submitted password.
// A stored bcrypt hash gets a bcrypt comparison; anything else is compared
// verbatim, which keeps the shipped seed accounts working.
func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}

// ListProjects returns the project names in creation order.
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return doc.Projects.Keys(), nil
}

// CreateProject inserts an empty project under name. An existing name is a
// silent no-op, not an error.
func (s *Service) CreateProject(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if doc.Projects.Has(name) {
		return nil
	}
	doc.Projects.Set(name, store.NewProject())
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.recordChange(ctx, doc, fmt.Sprintf("Projekt %q angelegt", name))
	return nil
}

// DeleteProject removes the project and everything in it. An unknown name
// is a no-op.
func (s *Service) DeleteProject(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	project, ok := doc.Projects.Get(name)
	if !ok {
		return nil
	}
	doc.Projects.Delete(name)
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}

	for _, key := range store.Categories {
		list, _ := project.List(key)
		for _, entity := range *list {
			s.search.DeleteEntity(entity.ID)
		}
	}
	s.recordChange(ctx, doc, fmt.Sprintf("Projekt %q gelöscht", name))
	return nil
}

// Project returns the project by name, or a not-found error. The original
// crashed on an unknown name; surfacing it as a rendered 404 is the one
// deliberate behavior upgrade in this rewrite.
func (s *Service) Project(ctx context.Context, name string) (*store.Project, error) {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	project, ok := doc.Projects.Get(name)
	if !ok {
		return nil, domainError(http.StatusNotFound, "UNKNOWN_PROJECT", fmt.Sprintf("Projekt %q existiert nicht", name))
	}
	return project, nil
}

// AppendChat adds a message to the project chat. The sender is whoever
// holds the session slot at this moment.
func (s *Service) AppendChat(ctx context.Context, name, text string) error {
	user, _ := s.sessions.Current(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	project, ok := doc.Projects.Get(name)
	if !ok {
		return domainError(http.StatusNotFound, "UNKNOWN_PROJECT", fmt.Sprintf("Projekt %q existiert nicht", name))
	}
	project.Chat = append(project.Chat, store.ChatMessage{
		User: user,
		Text: text,
		Time: chatTimestamp(),
	})
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.recordChange(ctx, doc, fmt.Sprintf("Chat-Nachricht in %q", name))
	return nil
}

// chatTimestamp formats the current time the way the document has always
// stored it: date, time, microseconds.
func chatTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000000")
}

// Entities lists one category of a project in insertion order.
func (s *Service) Entities(ctx context.Context, name, key string) ([]store.Entity, error) {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	list, err := resolveList(doc, name, key)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// CreateEntity appends a new entity with a fresh id and empty comments.
func (s *Service) CreateEntity(ctx context.Context, name, key, entityName, desc string) (store.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return store.Entity{}, err
	}
	list, err := resolveList(doc, name, key)
	if err != nil {
		return store.Entity{}, err
	}

	entity := store.Entity{
		ID:       util.NewID(),
		Name:     entityName,
		Desc:     desc,
		Comments: []string{},
	}
	*list = append(*list, entity)
	if err := s.store.Save(ctx, doc); err != nil {
		return store.Entity{}, err
	}

	s.search.IndexEntity(search.EntityRecord{
		ID:       entity.ID,
		Project:  name,
		Category: key,
		Name:     entity.Name,
		Desc:     entity.Desc,
	})
	s.recordChange(ctx, doc, fmt.Sprintf("%s in %q angelegt", key, name))
	return entity, nil
}

// Entity returns one entity by id, or ErrEntityNotFound.
func (s *Service) Entity(ctx context.Context, name, key, id string) (store.Entity, error) {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return store.Entity{}, err
	}
	list, err := resolveList(doc, name, key)
	if err != nil {
		return store.Entity{}, err
	}
	for _, entity := range *list {
		if entity.ID == id {
			return entity, nil
		}
	}
	return store.Entity{}, ErrEntityNotFound
}

// UpdateEntity overwrites name and desc of the entity with the given id.
// The id and the comments list are never touched by an edit.
func (s *Service) UpdateEntity(ctx context.Context, name, key, id, entityName, desc string) (store.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return store.Entity{}, err
	}
	list, err := resolveList(doc, name, key)
	if err != nil {
		return store.Entity{}, err
	}

	for i := range *list {
		if (*list)[i].ID != id {
			continue
		}
		(*list)[i].Name = entityName
		(*list)[i].Desc = desc
		if err := s.store.Save(ctx, doc); err != nil {
			return store.Entity{}, err
		}
		updated := (*list)[i]
		s.search.IndexEntity(search.EntityRecord{
			ID:       updated.ID,
			Project:  name,
			Category: key,
			Name:     updated.Name,
			Desc:     updated.Desc,
		})
		s.recordChange(ctx, doc, fmt.Sprintf("%s in %q bearbeitet", key, name))
		return updated, nil
	}
	return store.Entity{}, ErrEntityNotFound
}

// DeleteEntity rebuilds the category list without the given id. An absent
// id is a no-op.
func (s *Service) DeleteEntity(ctx context.Context, name, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	list, err := resolveList(doc, name, key)
	if err != nil {
		return err
	}

	kept := make([]store.Entity, 0, len(*list))
	for _, entity := range *list {
		if entity.ID != id {
			kept = append(kept, entity)
		}
	}
	*list = kept
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}

	s.search.DeleteEntity(id)
	s.recordChange(ctx, doc, fmt.Sprintf("%s in %q gelöscht", key, name))
	return nil
}

// Search answers a query across all projects.
func (s *Service) Search(ctx context.Context, q search.Query) (search.Response, error) {
	s.mu.Lock()
	doc, err := s.store.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return search.Response{}, err
	}
	return s.search.Search(doc, q), nil
}

// ExportProject renders a project for download.
func (s *Service) ExportProject(ctx context.Context, name string, format export.Format) (*export.Result, error) {
	project, err := s.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	return export.Export(name, project, format)
}

// Revisions lists document snapshots, newest first.
func (s *Service) Revisions(ctx context.Context, limit int) ([]history.Revision, error) {
	return s.history.Revisions(limit)
}

// SnapshotContent returns the document as it was at the given snapshot.
func (s *Service) SnapshotContent(ctx context.Context, hash string) ([]byte, error) {
	data, err := s.history.Content(hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "UNKNOWN_SNAPSHOT", fmt.Sprintf("Stand %q existiert nicht", hash))
	}
	return data, nil
}

// resolveList finds the entity list for project/key, turning the original's
// unguarded map and key lookups into typed not-found errors.
func resolveList(doc *store.Document, name, key string) (*[]store.Entity, error) {
	project, ok := doc.Projects.Get(name)
	if !ok {
		return nil, domainError(http.StatusNotFound, "UNKNOWN_PROJECT", fmt.Sprintf("Projekt %q existiert nicht", name))
	}
	list, ok := project.List(key)
	if !ok {
		return nil, domainError(http.StatusNotFound, "UNKNOWN_CATEGORY", fmt.Sprintf("Kategorie %q existiert nicht", key))
	}
	return list, nil
}

// recordChange snapshots the just-saved document into the history log and
// mirrors it to object storage. Both are supporting trails; neither may
// fail the request that caused them.
func (s *Service) recordChange(ctx context.Context, doc *store.Document, message string) {
	data, err := store.Encode(doc)
	if err != nil {
		log.Printf("history: encode snapshot: %v", err)
		return
	}
	author, _ := s.sessions.Current(ctx)
	if author == "" {
		author = "system"
	}
	if err := s.history.Snapshot(data, author, message); err != nil {
		log.Printf("history: %v", err)
	}
	if s.backup != nil {
		s.backup.UploadAsync(data)
	}
}
