// Package store holds the persisted document model and the file-backed
// document store. The whole application state is one JSON document that is
// reloaded and rewritten wholesale around every request.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"autorentool/api/internal/util"
)

// Categories is the closed set of entity list keys inside a project.
var Categories = []string{"characters", "places", "chapters", "plots", "times"}

// Entity is one record in a project category list. Comments is carried for
// forward compatibility; no route writes or reads it.
type Entity struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc"`
	Comments []string `json:"comments"`
}

// ChatMessage is one entry in a project chat log. Time is a preformatted
// string, not a time.Time, to keep the persisted document shape stable.
type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// Project is a named workspace: one chat log plus the five entity lists.
type Project struct {
	Chat       []ChatMessage `json:"chat"`
	Characters []Entity      `json:"characters"`
	Places     []Entity      `json:"places"`
	Chapters   []Entity      `json:"chapters"`
	Plots      []Entity      `json:"plots"`
	Times      []Entity      `json:"times"`
}

// List returns a pointer to the entity list for key, or false when key is
// not one of the five categories.
func (p *Project) List(key string) (*[]Entity, bool) {
	switch key {
	case "characters":
		return &p.Characters, true
	case "places":
		return &p.Places, true
	case "chapters":
		return &p.Chapters, true
	case "plots":
		return &p.Plots, true
	case "times":
		return &p.Times, true
	}
	return nil, false
}

// Document is the entire persisted state.
type Document struct {
	Users    *OrderedMap[string]   `json:"users"`
	Projects *OrderedMap[*Project] `json:"projects"`
}

// NewDocument returns the default seed document: two author accounts and an
// empty project set.
func NewDocument() *Document {
	users := NewOrderedMap[string]()
	users.Set("autor1", "passwort1")
	users.Set("autor2", "passwort2")
	return &Document{
		Users:    users,
		Projects: NewOrderedMap[*Project](),
	}
}

// NewProject returns an empty project with all lists present.
func NewProject() *Project {
	return &Project{
		Chat:       []ChatMessage{},
		Characters: []Entity{},
		Places:     []Entity{},
		Chapters:   []Entity{},
		Plots:      []Entity{},
		Times:      []Entity{},
	}
}

// Repair backfills fields that older document files may be missing: the chat
// list and the five category lists per project, and id/comments per entity.
// It is idempotent; a second pass over a repaired document changes nothing.
func (d *Document) Repair() {
	if d.Users == nil {
		d.Users = NewOrderedMap[string]()
	}
	if d.Projects == nil {
		d.Projects = NewOrderedMap[*Project]()
	}
	for _, name := range d.Projects.Keys() {
		p, _ := d.Projects.Get(name)
		if p == nil {
			p = NewProject()
			d.Projects.Set(name, p)
		}
		if p.Chat == nil {
			p.Chat = []ChatMessage{}
		}
		for _, key := range Categories {
			list, _ := p.List(key)
			if *list == nil {
				*list = []Entity{}
			}
			for i := range *list {
				if (*list)[i].ID == "" {
					(*list)[i].ID = util.NewID()
				}
				if (*list)[i].Comments == nil {
					(*list)[i].Comments = []string{}
				}
			}
		}
	}
}

// OrderedMap is a string-keyed map that preserves insertion order through
// JSON round-trips. Project listing order is observable, and the persisted
// document encodes it as JSON object order, which Go's built-in map would
// scramble.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Get returns the value for key and whether it is present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set inserts or replaces key. A replaced key keeps its original position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key if present.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
// Values are encoded with HTML escaping off; the outer document encoder
// cannot reach inside a custom marshaler, so it has to happen here for
// descriptions and chat text to survive round-trips literally.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeNoEscape(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeNoEscape(&buf, m.values[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeNoEscape(buf *bytes.Buffer, value any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	// Encode appends a newline the object syntax cannot carry.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON reads a JSON object, recording key order as it streams by.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]V)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
