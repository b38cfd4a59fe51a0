package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ngolib/internal/tags"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	"github.com/sirupsen/logrus"
)

// adminResult is the envelope the tag endpoints answer with.
type adminResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// recordAdminAction writes an audit row for the calling admin. Failures are
// logged and never change the response.
func (s *Service) recordAdminAction(ctx context.Context, principal *types.Principal, ngoID *int64, actionType, details string) {
	entry := s.logger.WithFields(logrus.Fields{
		"user_id":     principal.ID,
		"action_type": actionType,
	})

	adminID, err := s.admins.AdminID(ctx, principal.ID)
	if err != nil {
		entry.WithError(err).Warn("failed to resolve admin for audit log")
		return
	}

	_, err = s.admins.LogAction(ctx, &types.AdminAction{
		AdminID:       adminID,
		NGOID:         ngoID,
		ActionType:    actionType,
		ActionDetails: utils.StringPtr(details),
	})
	if err != nil {
		entry.WithError(err).Warn("failed to record admin action")
	}
}

type addTagRequest struct {
	Tag string `json:"tag"`
}

func (s *Service) handleAddTag(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	var req addTagRequest
	if err := decodeJSON(w, r, &req); err != nil || !required(req.Tag) {
		s.writeJSON(w, http.StatusBadRequest, adminResult{
			Error:   "invalid_tag",
			Message: "A tag name is required",
		})
		return
	}

	name := strings.TrimSpace(req.Tag)

	id, err := s.tags.CreateTag(r.Context(), name)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateTag) {
			s.writeJSON(w, http.StatusConflict, adminResult{
				Error:   "duplicate_tag",
				Message: "This tag already exists",
			})
			return
		}
		s.logger.WithError(err).WithField("tag", name).Error("failed to add tag")
		s.writeJSON(w, http.StatusInternalServerError, adminResult{
			Error:   "database_error",
			Message: "An error occurred while adding the tag",
		})
		return
	}

	s.recordAdminAction(r.Context(), principal, nil, types.ActionTagAdded, name)

	s.writeJSON(w, http.StatusCreated, adminResult{
		Success: true,
		ID:      id,
		Message: "Tag added successfully",
	})
}

type deleteTagRequest struct {
	TagID flexID `json:"tag_id"`
}

func (s *Service) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	var req deleteTagRequest
	if err := decodeJSON(w, r, &req); err != nil || req.TagID == 0 {
		s.writeJSON(w, http.StatusBadRequest, adminResult{
			Error:   "invalid_id",
			Message: "Invalid tag ID provided",
		})
		return
	}

	tagID := int64(req.TagID)

	err := s.tags.DeleteTag(r.Context(), tagID)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrTagInUse):
		s.writeJSON(w, http.StatusConflict, adminResult{
			Error:   "tag_in_use",
			Message: "Cannot delete a tag that is currently in use by one or more NGOs",
		})
		return
	case errors.Is(err, types.ErrTagNotFound):
		s.writeJSON(w, http.StatusNotFound, adminResult{
			Error:   "tag_not_found",
			Message: "Tag not found",
		})
		return
	default:
		s.logger.WithError(err).WithField("tag_id", tagID).Error("failed to delete tag")
		s.writeJSON(w, http.StatusInternalServerError, adminResult{
			Error:   "database_error",
			Message: "An error occurred while deleting the tag",
		})
		return
	}

	s.recordAdminAction(r.Context(), principal, nil, types.ActionTagDeleted, strconv.FormatInt(tagID, 10))

	s.writeJSON(w, http.StatusOK, adminResult{
		Success: true,
		Message: "Tag deleted successfully",
	})
}

type subscriptionStatusRequest struct {
	Status types.SubscriptionStatus `json:"status"`
}

func (s *Service) handleUpdateSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	subscriptionID, ok := parseID(r.PathValue("id"))
	if !ok {
		s.writeMessage(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	var req subscriptionStatusRequest
	if err := decodeJSON(w, r, &req); err != nil || !req.Status.Valid() {
		s.writeMessage(w, http.StatusBadRequest, "Status must be active or canceled")
		return
	}

	ngoID, err := s.subscriptions.UpdateSubscriptionStatus(r.Context(), subscriptionID, req.Status)
	if err != nil {
		if errors.Is(err, types.ErrSubscriptionNotFound) {
			s.writeMessage(w, http.StatusNotFound, "Subscription not found")
			return
		}
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).Error("failed to update subscription status")
		s.internalServerError(w)
		return
	}

	s.recordAdminAction(r.Context(), principal, &ngoID, types.ActionSubscriptionStatusChange, string(req.Status))

	s.writeMessage(w, http.StatusOK, "Subscription status updated")
}

type logActionRequest struct {
	AdminID       flexID `json:"admin_id"`
	NGOID         flexID `json:"ngo_id"`
	ActionType    string `json:"action_type" validate:"required"`
	ActionDetails string `json:"action_details"`
}

type logActionResponse struct {
	Message  string `json:"message"`
	ActionID int64  `json:"action_id"`
}

func (s *Service) handleLogAction(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())
	ctx := r.Context()

	var req logActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ActionType = strings.TrimSpace(req.ActionType)
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Action type is required")
		return
	}

	adminID := int64(req.AdminID)
	if adminID == 0 {
		var err error
		adminID, err = s.admins.AdminID(ctx, principal.ID)
		if err != nil {
			if errors.Is(err, types.ErrAdminNotFound) {
				s.writeMessage(w, http.StatusForbidden, "Admin record not found")
				return
			}
			s.logger.WithError(err).WithField("user_id", principal.ID).Error("failed to resolve admin")
			s.internalServerError(w)
			return
		}
	}

	action := &types.AdminAction{
		AdminID:    adminID,
		ActionType: req.ActionType,
	}
	if req.NGOID != 0 {
		action.NGOID = utils.Int64Ptr(int64(req.NGOID))
	}
	if required(req.ActionDetails) {
		action.ActionDetails = utils.StringPtr(req.ActionDetails)
	}

	id, err := s.admins.LogAction(ctx, action)
	if err != nil {
		s.logger.WithError(err).WithField("admin_id", adminID).Error("failed to log admin action")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, logActionResponse{Message: "Admin action logged", ActionID: id})
}

type pendingNGOsResponse struct {
	NGOs []*types.NGO `json:"ngos"`
}

func (s *Service) handlePendingNGOs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ngos, err := s.ngos.PendingVerifications(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch pending ngos")
		s.internalServerError(w)
		return
	}

	all, err := s.tags.AllTags(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch tags")
		s.internalServerError(w)
		return
	}

	ids := make([]int64, 0, len(ngos))
	for _, n := range ngos {
		ids = append(ids, n.ID)
	}

	// no pending ngos means no pair lookup; an empty id list would match all
	if len(ids) > 0 {
		pairs, err := s.tags.NGOPairs(ctx, ids...)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch ngo tags")
			s.internalServerError(w)
			return
		}
		tags.Aggregate(all, pairs).ApplyNGOs(ngos)
	}

	s.writeJSON(w, http.StatusOK, pendingNGOsResponse{NGOs: ngos})
}

func (s *Service) handleApproveNGO(w http.ResponseWriter, r *http.Request) {
	s.setVerification(w, r, true)
}

func (s *Service) handleRejectNGO(w http.ResponseWriter, r *http.Request) {
	s.setVerification(w, r, false)
}

func (s *Service) setVerification(w http.ResponseWriter, r *http.Request, verified bool) {
	principal, _ := principalFromContext(r.Context())

	ngoID, ok := parseID(r.PathValue("id"))
	if !ok {
		s.writeMessage(w, http.StatusBadRequest, "Invalid NGO ID format")
		return
	}

	if err := s.ngos.SetVerified(r.Context(), ngoID, verified); err != nil {
		if errors.Is(err, types.ErrNGONotFound) {
			s.writeMessage(w, http.StatusNotFound, "NGO not found")
			return
		}
		s.logger.WithError(err).WithField("ngo_id", ngoID).Error("failed to update ngo verification")
		s.internalServerError(w)
		return
	}

	action, msg := types.ActionNGOApproved, "NGO approved"
	if !verified {
		action, msg = types.ActionNGORejected, "NGO rejected"
	}

	s.recordAdminAction(r.Context(), principal, &ngoID, action, msg)

	s.writeMessage(w, http.StatusOK, msg)
}
