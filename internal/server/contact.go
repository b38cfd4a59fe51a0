package server

import (
	"net/http"
	"strings"

	"ngolib/internal/mail"
)

type contactRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// handleContactForm forwards a visitor message to the contact inbox. to only
// labels who the visitor meant to reach; the mail always goes to the inbox.
// Every message is recorded before sending so failed deliveries are kept.
func (s *Service) handleContactForm(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !required(req.To) {
		s.writeMessage(w, http.StatusBadRequest, "Recipient email is required")
		return
	}
	if !required(req.Message) {
		s.writeMessage(w, http.StatusBadRequest, "Email message is required")
		return
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = mail.DefaultContactSubject
	}
	body := mail.ContactBody(req.Message, req.To)

	ctx := r.Context()
	entry := s.logger.WithField("recipient", req.To)

	var senderID *int64
	if principal, ok := s.sessions.Principal(r); ok {
		senderID = &principal.ID
	}

	var messageID string
	if s.contacts != nil {
		id, err := s.contacts.RecordContactMessage(ctx, senderID, req.To, subject, body, false)
		if err != nil {
			entry.WithError(err).Warn("failed to record contact message")
		}
		messageID = id
	}

	if err := s.mailer.Send(ctx, s.config.ContactInbox, subject, body); err != nil {
		entry.WithError(err).Error("failed to send contact message")
		s.writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if messageID != "" {
		if err := s.contacts.MarkDelivered(ctx, messageID); err != nil {
			entry.WithError(err).WithField("message_id", messageID).Warn("failed to mark contact message delivered")
		}
	}

	s.writeMessage(w, http.StatusOK, "Email sent successfully")
}
