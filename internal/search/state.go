// Package search holds the browse state a visitor builds up while filtering
// NGOs or opportunities by tag, and the filter and paging rules applied to
// the listing.
package search

import (
	"fmt"
	"slices"
)

type Mode string

const (
	ModeNGOs          Mode = "ngos"
	ModeOpportunities Mode = "opportunities"
)

func (m Mode) Valid() bool {
	return m == ModeNGOs || m == ModeOpportunities
}

// PageSize is the number of cards on one page.
const PageSize = 4

// State is what a visitor has selected. Its JSON form is the one persisted
// under StateKey.
type State struct {
	SelectedTags []string `json:"selectedTags"`
	CurrentPage  int      `json:"currentPage"`
	Mode         Mode     `json:"mode"`
}

func NewState() State {
	return State{
		SelectedTags: []string{},
		CurrentPage:  1,
		Mode:         ModeNGOs,
	}
}

// Normalize repairs a state read back from storage. Unknown modes fall back
// to ngos and pages start at 1.
func (s *State) Normalize() {
	if !s.Mode.Valid() {
		s.Mode = ModeNGOs
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	if s.SelectedTags == nil {
		s.SelectedTags = []string{}
	}
}

// SetMode switches between listings. Switching clears the tag selection and
// goes back to the first page; setting the current mode again is a no-op.
func (s *State) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown search mode %q", m)
	}
	if m == s.Mode {
		return nil
	}

	s.Mode = m
	s.SelectedTags = []string{}
	s.CurrentPage = 1
	return nil
}

// SelectTag adds a tag to the selection unless it is already there. Either
// way the visitor lands on the first page.
func (s *State) SelectTag(tag string) {
	if !slices.Contains(s.SelectedTags, tag) {
		s.SelectedTags = append(s.SelectedTags, tag)
	}
	s.CurrentPage = 1
}

// RemoveTag drops a tag from the selection. The page is left alone.
func (s *State) RemoveTag(tag string) {
	out := make([]string, 0, len(s.SelectedTags))
	for _, t := range s.SelectedTags {
		if t != tag {
			out = append(out, t)
		}
	}
	s.SelectedTags = out
}

func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.CurrentPage = page
}

// Query is the set of changes a single /api/search request asks for.
type Query struct {
	Mode   string   `form:"mode"`
	Tag    []string `form:"tag"`
	Remove []string `form:"remove"`
	Page   int      `form:"page"`
}

// Apply folds a query into the state in the order a visitor would click:
// mode first, then added tags, then removed tags, then the page.
func (s *State) Apply(q Query) error {
	if q.Mode != "" {
		if err := s.SetMode(Mode(q.Mode)); err != nil {
			return err
		}
	}

	for _, t := range q.Tag {
		if t == "" {
			continue
		}
		s.SelectTag(t)
	}

	for _, t := range q.Remove {
		s.RemoveTag(t)
	}

	if q.Page > 0 {
		s.SetPage(q.Page)
	}

	return nil
}
