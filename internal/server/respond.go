package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds JSON bodies; base64 profile images are the largest.
const maxBodyBytes = 10 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to write response")
	}
}

func (s *Service) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, messageResponse{Message: msg})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// internalServerError never carries the underlying error; callers log it.
func (s *Service) internalServerError(w http.ResponseWriter) {
	s.writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

var errBadBody = errors.New("invalid request body")

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadBody, err)
	}

	return nil
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

// parseID parses a positive decimal id. Signs and other characters are
// rejected.
func parseID(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// flexID accepts ids sent either as JSON numbers or as numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}

	id, ok := parseID(raw)
	if !ok {
		return fmt.Errorf("invalid id %q", raw)
	}

	*f = flexID(id)
	return nil
}
