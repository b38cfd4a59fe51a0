package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ngolib/internal/search"
	"ngolib/internal/tags"
	"ngolib/pkg/types"
)

const ngoDetailTimeout = 10 * time.Second

type ngoListResponse struct {
	NGOs []*types.NGO `json:"ngos"`
	Tags []string     `json:"tags"`
}

type opportunityListResponse struct {
	Opportunities []*types.Opportunity `json:"opportunities"`
	Tags          []string             `json:"tags"`
}

// taggedNGOs loads every NGO with its tag names, plus the tag vocabulary.
func (s *Service) taggedNGOs(ctx context.Context) ([]*types.NGO, []string, error) {
	ngos, err := s.ngos.AllNGOs(ctx)
	if err != nil {
		return nil, nil, err
	}

	all, err := s.tags.AllTags(ctx)
	if err != nil {
		return nil, nil, err
	}

	pairs, err := s.tags.NGOPairs(ctx)
	if err != nil {
		return nil, nil, err
	}

	tags.Aggregate(all, pairs).ApplyNGOs(ngos)
	return ngos, tags.Names(all), nil
}

func (s *Service) taggedOpportunities(ctx context.Context) ([]*types.Opportunity, []string, error) {
	opps, err := s.opportunities.AllOpportunities(ctx)
	if err != nil {
		return nil, nil, err
	}

	all, err := s.tags.AllTags(ctx)
	if err != nil {
		return nil, nil, err
	}

	pairs, err := s.tags.OpportunityPairs(ctx)
	if err != nil {
		return nil, nil, err
	}

	tags.Aggregate(all, pairs).ApplyOpportunities(opps)
	return opps, tags.Names(all), nil
}

func (s *Service) handleListNGOs(w http.ResponseWriter, r *http.Request) {
	ngos, names, err := s.taggedNGOs(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list ngos")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, ngoListResponse{NGOs: ngos, Tags: names})
}

func (s *Service) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, names, err := s.taggedOpportunities(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list opportunities")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, opportunityListResponse{Opportunities: opps, Tags: names})
}

func (s *Service) handleNGODetail(w http.ResponseWriter, r *http.Request) {
	ngoID, ok := parseID(r.PathValue("id"))
	if !ok {
		s.writeMessage(w, http.StatusBadRequest, "Invalid NGO ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ngoDetailTimeout)
	defer cancel()

	ngo, err := s.ngos.DisplayInfo(ctx, ngoID)
	if err != nil {
		if errors.Is(err, types.ErrNGONotFound) {
			s.writeMessage(w, http.StatusNotFound, "NGO not found")
			return
		}
		s.logger.WithError(err).WithField("ngo_id", ngoID).Error("failed to fetch ngo")
		s.internalServerError(w)
		return
	}

	all, err := s.tags.AllTags(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("ngo_id", ngoID).Error("failed to fetch tags")
		s.internalServerError(w)
		return
	}

	pairs, err := s.tags.NGOPairs(ctx, ngoID)
	if err != nil {
		s.logger.WithError(err).WithField("ngo_id", ngoID).Error("failed to fetch ngo tags")
		s.internalServerError(w)
		return
	}

	ngo.Tags = tags.Aggregate(all, pairs).For(ngo.ID)

	s.writeJSON(w, http.StatusOK, ngo)
}

// handleSearch applies one browse step to the visitor's stored search state
// and returns the resulting page.
func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q search.Query
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid search parameters")
		return
	}

	state, err := s.searchState.Load(r)
	if err != nil {
		// a state we cannot read is replaced, not fatal
		s.logger.WithError(err).Warn("resetting unreadable search state")
		state = search.NewState()
	}

	if err := state.Apply(q); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid search mode")
		return
	}

	ctx := r.Context()

	var (
		items []search.Item
		names []string
	)
	switch state.Mode {
	case search.ModeOpportunities:
		var opps []*types.Opportunity
		opps, names, err = s.taggedOpportunities(ctx)
		items = search.OpportunityItems(opps)
	default:
		var ngos []*types.NGO
		ngos, names, err = s.taggedNGOs(ctx)
		items = search.NGOItems(ngos)
	}
	if err != nil {
		s.logger.WithError(err).WithField("mode", state.Mode).Error("failed to load search items")
		s.internalServerError(w)
		return
	}

	result := search.Run(state, items, names)

	if err := s.searchState.Save(w, r, state); err != nil {
		s.logger.WithError(err).Error("failed to save search state")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
