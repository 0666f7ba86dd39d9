package template

import (
	"sync"

	"github.com/example/booking-notifier/internal/event"
)

type key struct {
	eventType string
	channel   event.Channel
	language  string
	programID string
}

// Registry is the in-memory template index. Reads vastly outnumber
// writes; Put and Delete take the write lock, Get only the read lock.
type Registry struct {
	mu        sync.RWMutex
	templates map[key]*Template
	byID      map[string]key
}

func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[key]*Template),
		byID:      make(map[string]key),
	}
}

// Get resolves with scope fallback: a program-scoped template wins,
// otherwise the general one, otherwise nil.
func (r *Registry) Get(eventType string, channel event.Channel, language, programID string) *Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if programID != "" {
		if t, ok := r.templates[key{eventType, channel, language, programID}]; ok {
			return t
		}
	}
	if t, ok := r.templates[key{eventType, channel, language, ""}]; ok {
		return t
	}
	return nil
}

// Put validates and stores. A template with the same scope key
// replaces the previous one; the previous ID mapping is dropped.
func (r *Registry) Put(t *Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	cp := *t
	k := key{cp.EventType, cp.Channel, cp.Language, cp.ProgramID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.templates[k]; ok && prev.ID != cp.ID {
		delete(r.byID, prev.ID)
	}
	if prevKey, ok := r.byID[cp.ID]; ok && prevKey != k {
		delete(r.templates, prevKey)
	}
	r.templates[k] = &cp
	r.byID[cp.ID] = k
	return nil
}

// Delete removes a template by ID. Deleting an unknown ID is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.templates, k)
}

// All snapshots the registry contents, for the admin list endpoint.
func (r *Registry) All() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, *t)
	}
	return out
}
