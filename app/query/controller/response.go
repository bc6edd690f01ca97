package controller

import (
	"errors"
	"net/http"

	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/go-jose/go-jose/v4/json"
	"go.uber.org/zap"
)

func (c *Controller) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (c *Controller) writeError(w http.ResponseWriter, statusCode int, message string) {
	c.writeJSON(w, statusCode, map[string]string{"error": message})
}

// fail maps a service error to a response. what names the resource in
// messages, e.g. "area profile". Store failures are logged and answered
// with a generic message.
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	var perr *parseError
	switch {
	case errors.As(err, &perr):
		c.writeError(w, http.StatusBadRequest, perr.msg)
	case errors.Is(err, report.ErrInvalidFilterType):
		c.writeError(w, http.StatusBadRequest, errInvalidType.msg)
	case errors.Is(err, report.ErrInvalidParams):
		c.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrNotFound):
		c.writeError(w, http.StatusNotFound, capitalize(what)+" not found")
	default:
		c.Logger.Error("Request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Bool("store_failure", report.IsStoreFailure(err)),
			zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "Failed to fetch "+what)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
