package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"ngolib/internal/payment"
	"ngolib/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	body, err := s.profiles.Build(r.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUserNotFound):
			s.writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, types.ErrUnknownRole):
			s.writeMessage(w, http.StatusForbidden, "Unknown account type")
		default:
			s.logger.WithError(err).WithField("user_id", principal.ID).Error("failed to build profile")
			s.internalServerError(w)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, body)
}

type profileImageRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type profileImageResponse struct {
	Message      string `json:"message"`
	AffectedRows int64  `json:"affectedRows"`
}

// decodeImage accepts raw base64 or a data URL and returns the bytes.
func decodeImage(v string) ([]byte, error) {
	if _, payload, ok := strings.Cut(v, ","); ok {
		v = payload
	}

	return base64.StdEncoding.DecodeString(strings.TrimSpace(v))
}

func (s *Service) handlePostProfileImage(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	var req profileImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !required(req.ImageBase64) {
		s.writeMessage(w, http.StatusBadRequest, "No image provided")
		return
	}

	image, err := decodeImage(req.ImageBase64)
	if err != nil || len(image) == 0 {
		s.writeMessage(w, http.StatusBadRequest, "Invalid image data")
		return
	}

	affected, err := s.images.StoreImage(r.Context(), principal.ID, image)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", principal.ID).Error("failed to store profile image")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, profileImageResponse{
		Message:      "Image uploaded successfully",
		AffectedRows: affected,
	})
}

type ngoRequest struct {
	NGOID flexID `json:"ngoId"`
}

// ngoFromBody reads {ngoId} and writes the 400 itself when it is missing.
func (s *Service) ngoFromBody(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req ngoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid NGO ID")
		return 0, false
	}

	if req.NGOID == 0 {
		s.writeMessage(w, http.StatusBadRequest, "NGO ID is required")
		return 0, false
	}

	return int64(req.NGOID), true
}

func (s *Service) handleFollow(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	ngoID, ok := s.ngoFromBody(w, r)
	if !ok {
		return
	}

	if err := s.followers.Follow(r.Context(), principal.ID, ngoID); err != nil {
		if errors.Is(err, types.ErrNGONotFound) {
			s.writeMessage(w, http.StatusNotFound, "NGO not found")
			return
		}
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": principal.ID,
			"ngo_id":  ngoID,
		}).Error("failed to follow ngo")
		s.internalServerError(w)
		return
	}

	s.writeMessage(w, http.StatusOK, "Followed successfully")
}

func (s *Service) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	ngoID, ok := s.ngoFromBody(w, r)
	if !ok {
		return
	}

	if _, err := s.followers.Unfollow(r.Context(), principal.ID, ngoID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": principal.ID,
			"ngo_id":  ngoID,
		}).Error("failed to unfollow ngo")
		s.internalServerError(w)
		return
	}

	s.writeMessage(w, http.StatusOK, "Unfollowed successfully")
}

func (s *Service) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	ngoID, ok := s.ngoFromBody(w, r)
	if !ok {
		return
	}

	if _, err := s.subscriptions.CancelSubscription(r.Context(), principal.ID, ngoID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": principal.ID,
			"ngo_id":  ngoID,
		}).Error("failed to cancel subscription")
		s.internalServerError(w)
		return
	}

	s.writeMessage(w, http.StatusOK, "Unsubscribed successfully")
}

type paymentRequest struct {
	NGOID  flexID       `json:"ngo_id"`
	Amount types.Amount `json:"amount"`
}

type paymentResponse struct {
	Message string          `json:"message"`
	Payment *payment.Intent `json:"payment,omitempty"`
}

// handlePayment records a donation. With a payment processor configured the
// charge is created first and nothing is recorded when it fails.
func (s *Service) handlePayment(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.NGOID == 0 || req.Amount == "" {
		s.writeMessage(w, http.StatusBadRequest, "NGO ID and amount are required")
		return
	}

	if !req.Amount.Valid() {
		s.writeMessage(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	ctx := r.Context()
	ngoID := int64(req.NGOID)
	entry := s.logger.WithFields(logrus.Fields{
		"user_id": principal.ID,
		"ngo_id":  ngoID,
	})

	var intent *payment.Intent
	if s.payments != nil {
		var err error
		intent, err = s.payments.Charge(ctx, principal.ID, ngoID, req.Amount)
		if err != nil {
			if errors.Is(err, payment.ErrNotChargeable) {
				s.writeMessage(w, http.StatusBadRequest, "Invalid amount")
				return
			}
			entry.WithError(err).Error("failed to charge donation")
			s.writeMessage(w, http.StatusBadGateway, "Payment failed")
			return
		}
	}

	if err := s.donations.CreateDonation(ctx, principal.ID, ngoID, req.Amount); err != nil {
		if errors.Is(err, types.ErrNGONotFound) {
			s.writeMessage(w, http.StatusNotFound, "NGO not found")
			return
		}
		entry.WithError(err).Error("failed to record donation")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, paymentResponse{Message: "Donate successful", Payment: intent})
}

func (s *Service) handleNGOContact(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	contact, err := s.ngos.ContactByOwner(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, types.ErrNGONotFound) {
			s.writeMessage(w, http.StatusNotFound, "NGO not found")
			return
		}
		s.logger.WithError(err).WithField("user_id", principal.ID).Error("failed to fetch ngo contact")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, contact)
}
