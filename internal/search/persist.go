package search

import (
	"fmt"
	"net/http"
)

// StateKey is the storage key the browse state lives under.
const StateKey = "searchState"

// Backend stores JSON-able values per visitor. The session manager satisfies
// it.
type Backend interface {
	Load(r *http.Request, key string, dst any) (bool, error)
	Save(w http.ResponseWriter, r *http.Request, key string, value any) error
}

type Persister struct {
	backend Backend
}

func NewPersister(backend Backend) *Persister {
	return &Persister{backend: backend}
}

// Load returns the stored state, or a fresh one when nothing is stored yet.
func (p *Persister) Load(r *http.Request) (State, error) {
	state := NewState()

	ok, err := p.backend.Load(r, StateKey, &state)
	if err != nil {
		return NewState(), fmt.Errorf("failed to load search state: %w", err)
	}
	if !ok {
		return NewState(), nil
	}

	state.Normalize()
	return state, nil
}

func (p *Persister) Save(w http.ResponseWriter, r *http.Request, state State) error {
	if err := p.backend.Save(w, r, StateKey, state); err != nil {
		return fmt.Errorf("failed to save search state: %w", err)
	}
	return nil
}
