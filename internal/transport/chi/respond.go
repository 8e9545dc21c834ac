package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	domsearch "github.com/opendossier/docsearch/internal/domain/search"
)

// rateInfo is the rate-limit section of a response envelope.
type rateInfo struct {
	Remaining int64     `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// envelope is the JSON body of every API response.
type envelope struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Pagination *domsearch.Pagination `json:"pagination,omitempty"`
	RateLimit  *rateInfo            `json:"rateLimit,omitempty"`
	Error      string               `json:"error,omitempty"`
	RetryAfter string               `json:"retryAfter,omitempty"`
	RequestID  string               `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, envelope{
		Success:   false,
		Error:     msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// sentinelHandler maps a sentinel error to an HTTP status, surfacing the
// error message for client faults.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, r, status, sentinel.Error())
		return true
	}
}
