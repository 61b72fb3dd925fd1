package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"subsync/internal/fileutil"
	"subsync/internal/services"
	"subsync/internal/srt"
)

const subripContentType = "application/x-subrip; charset=utf-8"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps an error to its HTTP status. Malformed subtitles are 422.
func statusFor(err error) int {
	if errors.Is(err, srt.ErrParse) {
		return http.StatusUnprocessableEntity
	}
	return services.HTTPStatus(err)
}

// serverErrorMessages replace error text for 5xx answers; the full error is
// only logged.
var serverErrorMessages = map[int]string{
	http.StatusBadGateway:         "upstream service request failed",
	http.StatusServiceUnavailable: "service is not configured for this request",
	http.StatusGatewayTimeout:     "upstream service timed out",
}

func errorMessage(r *http.Request, status int, err error) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	message, ok := serverErrorMessages[status]
	if !ok {
		message = "internal server error"
	}
	if id, ok := services.RequestIDFromContext(r.Context()); ok {
		message += " (request " + id + ")"
	}
	return message
}

func writeSubtitle(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", subripContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// subtitleFilename picks a safe .srt name from the request, falling back to the
// provider's file name, and adds suffix to the stem.
func subtitleFilename(requested, fromProvider, suffix string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = strings.TrimSpace(fromProvider)
	}
	name = fileutil.SafeFileName(name, "subtitle.srt")
	stem := strings.TrimSuffix(name, path.Ext(name))
	if stem == "" {
		stem = "subtitle"
	}
	if suffix != "" && !strings.HasSuffix(stem, suffix) {
		stem += suffix
	}
	return fmt.Sprintf("%s.srt", stem)
}
