package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ngolib/internal/tags"
	"ngolib/internal/utils"
	"ngolib/pkg/types"
)

type postOpportunityRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Tags        []string `json:"tags"`
}

type postOpportunityResponse struct {
	Message       string `json:"message"`
	OpportunityID int64  `json:"opportunityId"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate reads an optional date. Empty input yields nil.
func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognised date %q", v)
}

// handlePostOpportunity creates an opportunity for the NGO owned by the
// caller. Contact details always come from the NGO row, never the body.
func (s *Service) handlePostOpportunity(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())
	ctx := r.Context()

	contact, err := s.ngos.ContactByOwner(ctx, principal.ID)
	if err != nil && !errors.Is(err, types.ErrNGONotFound) {
		s.logger.WithError(err).WithField("user_id", principal.ID).Error("failed to fetch ngo contact")
		s.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if contact == nil || utils.PtrString(contact.ContactEmail) == "" {
		s.writeError(w, http.StatusBadRequest, "NGO contact information not found")
		return
	}

	var req postOpportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !required(req.Title) || !required(req.Location) {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	start, err := parseDate(req.Start)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid end date")
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		s.writeError(w, http.StatusBadRequest, "End date is before start date")
		return
	}

	var tagIDs []int64
	if len(req.Tags) > 0 {
		all, err := s.tags.AllTags(ctx)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch tags")
			s.writeError(w, http.StatusInternalServerError, "Server error")
			return
		}

		var unknown []string
		tagIDs, unknown = tags.IDs(all, req.Tags)
		if len(unknown) > 0 {
			s.writeError(w, http.StatusBadRequest, "Unknown tags: "+strings.Join(unknown, ", "))
			return
		}
	}

	opp := &types.Opportunity{
		NGOID:        contact.NGOID,
		Title:        strings.TrimSpace(req.Title),
		Location:     strings.TrimSpace(req.Location),
		Start:        start,
		End:          end,
		ContactEmail: contact.ContactEmail,
		ContactPhone: contact.PhoneNr,
	}
	if required(req.Description) {
		opp.Description = utils.StringPtr(strings.TrimSpace(req.Description))
	}

	id, err := s.opportunities.CreateOpportunity(ctx, opp, tagIDs)
	if err != nil {
		s.logger.WithError(err).WithField("ngo_id", contact.NGOID).Error("failed to create opportunity")
		s.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	s.writeJSON(w, http.StatusCreated, postOpportunityResponse{
		Message:       "Opportunity posted successfully",
		OpportunityID: id,
	})
}
