package server

import (
	"errors"
	"net/http"

	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/pkg/detag"
)

// requestError is a client mistake detected before conversion starts.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusFor maps an error onto the HTTP status returned to the client.
func statusFor(err error) int {
	var (
		re  *requestError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &re), detag.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// message renders err for the response body. Internal failures carry the
// generic prefix the upload page shows to users.
func message(status int, err error) string {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return "file too large: limit is " + formatBytes(mbe.Limit)
	case status >= http.StatusInternalServerError:
		return "Error processing files: " + err.Error()
	default:
		return err.Error()
	}
}

// writeError sends err as a plain-text response and returns the status used.
func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusFor(err)
	msg := message(status, err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	} else {
		log.Warn("request rejected", "status", status, "error", err)
	}

	w.Header().Del("Content-Disposition")
	http.Error(w, msg, status)
	return status
}
