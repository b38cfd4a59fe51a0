package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ngolib/internal/mail"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email" validate:"required"`
	Password       string `json:"password" validate:"required"`
	PasswordRep    string `json:"password_rep" validate:"required"`
	IsNGO          bool   `json:"isNGO"`
	NGOName        string `json:"ngoName" validate:"required_if=IsNGO true"`
	NGOEmail       string `json:"ngoEmail"`
	NGOWebsite     string `json:"ngoWebsite"`
	NGOPhone       string `json:"ngoPhone"`
	NGODescription string `json:"ngoDescription"`
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if req.Password != req.PasswordRep {
		s.writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	user := &types.User{
		Email:  req.Email,
		PwHash: string(hash),
		Type:   string(types.RoleUser),
	}
	if required(req.Username) {
		user.Username = utils.StringPtr(strings.TrimSpace(req.Username))
	}

	var ngo *types.NewNGO
	if req.IsNGO {
		user.Type = string(types.RoleNGO)
		ngo = &types.NewNGO{
			Name:         strings.TrimSpace(req.NGOName),
			Description:  strings.TrimSpace(req.NGODescription),
			ContactEmail: strings.TrimSpace(req.NGOEmail),
			WebsiteURL:   strings.TrimSpace(req.NGOWebsite),
			PhoneNr:      strings.TrimSpace(req.NGOPhone),
		}
	}

	_, err = s.users.Create(r.Context(), user, ngo)
	if err != nil {
		if errors.Is(err, types.ErrEmailInUse) {
			s.writeMessage(w, http.StatusBadRequest, "Email already in use")
			return
		}
		s.logger.WithError(err).WithField("email", req.Email).Error("failed to register user")
		s.internalServerError(w)
		return
	}

	msg := "User registered successfully"
	if req.IsNGO {
		msg = "User and NGO registered successfully"
	}

	s.writeMessage(w, http.StatusCreated, msg)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := s.users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user for login")
		s.internalServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PwHash), []byte(req.Password)); err != nil {
		s.writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	role, err := user.Role()
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("user has an unknown account type")
		s.internalServerError(w)
		return
	}

	principal := &types.Principal{
		ID:    user.ID,
		Name:  utils.PtrString(user.Username),
		Email: user.Email,
		Type:  role,
	}

	if err := s.sessions.Login(w, r, principal); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to start session")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Type: user.Type})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.logger.WithError(err).Error("failed to destroy session")
		s.internalServerError(w)
		return
	}

	s.writeMessage(w, http.StatusOK, "Logout successful")
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.sessions.Principal(r)
	if !ok {
		s.writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.writeJSON(w, http.StatusOK, principal)
}

// hashToken is what reset tokens are stored and looked up as.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", fmt.Errorf("failed to generate reset token")
	}
	return hex.EncodeToString(b), nil
}

func (s *Service) resetLink(token string) string {
	base := strings.TrimSuffix(s.config.PublicBaseURL, "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (s *Service) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx := r.Context()

	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch user for password reset")
		s.internalServerError(w)
		return
	}

	token, err := newResetToken()
	if err != nil {
		s.logger.WithError(err).Error("failed to create reset token")
		s.internalServerError(w)
		return
	}

	expiresAt := s.now().Add(time.Duration(s.config.ResetTokenTTLMin) * time.Minute)
	if err := s.resets.StoreToken(ctx, user.ID, hashToken(token), expiresAt); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to store reset token")
		s.internalServerError(w)
		return
	}

	err = s.mailer.Send(ctx, user.Email, mail.ResetSubject, mail.ResetBody(s.resetLink(token)))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to send reset email")
		s.writeMessage(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	s.writeMessage(w, http.StatusOK, "Reset email sent")
}

type findUserRequest struct {
	Token string `json:"token"`
}

type findUserResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func (s *Service) handleFindUser(w http.ResponseWriter, r *http.Request) {
	var req findUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !required(req.Token) {
		s.writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	reset, err := s.resets.UserByToken(r.Context(), hashToken(strings.TrimSpace(req.Token)), s.now())
	if err != nil {
		if errors.Is(err, types.ErrResetTokenInvalid) {
			s.writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		s.logger.WithError(err).Error("failed to resolve reset token")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, findUserResponse{UserID: reset.UserID, Email: reset.Email})
}

type resetPasswordRequest struct {
	UserID      flexID `json:"userId"`
	Token       string `json:"token"`
	Password    string `json:"password"`
	PasswordRep string `json:"password_rep"`
}

// handleResetPassword sets a new password for the user a live reset token
// belongs to. The request carries the token itself, or only the userId whose
// outstanding token is still live. The token is consumed on success.
func (s *Service) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !required(req.Password) || !required(req.PasswordRep) {
		s.writeMessage(w, http.StatusBadRequest, "Repeat the password")
		return
	}

	if req.Password != req.PasswordRep {
		s.writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	ctx := r.Context()

	var (
		reset *types.PasswordReset
		err   error
	)
	switch {
	case required(req.Token):
		reset, err = s.resets.UserByToken(ctx, hashToken(strings.TrimSpace(req.Token)), s.now())
	case req.UserID != 0:
		reset, err = s.resets.TokenByUser(ctx, int64(req.UserID), s.now())
	default:
		err = types.ErrResetTokenInvalid
	}
	if err != nil {
		if errors.Is(err, types.ErrResetTokenInvalid) {
			s.writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		s.logger.WithError(err).Error("failed to resolve reset token")
		s.internalServerError(w)
		return
	}

	if req.UserID != 0 && int64(req.UserID) != reset.UserID {
		s.writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	if err := s.users.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.WithError(err).WithField("user_id", reset.UserID).Error("failed to update password")
		s.internalServerError(w)
		return
	}

	if err := s.resets.ConsumeToken(ctx, reset.UserID); err != nil {
		s.logger.WithError(err).WithField("user_id", reset.UserID).Warn("failed to consume reset token")
	}

	s.writeMessage(w, http.StatusOK, "Password updated successfully")
}


