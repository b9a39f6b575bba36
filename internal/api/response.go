package api

import (
	"encoding/json"
	"net/http"

	"github.com/juju/errors"

	"service-mesh/internal/schema"
)

type detail struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("encoding response: %v", err)
		status = http.StatusInternalServerError
		data = []byte(`{"detail":"Internal Server Error"}`)
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// writeError maps the error kinds produced by schema and service onto
// status codes. Anything unexpected is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, detail{Detail: "Validation error", Errors: verr.Fields})
	case errors.Is(err, errors.NotFound):
		writeJSON(w, http.StatusNotFound, detail{Detail: err.Error()})
	case errors.Is(err, errors.AlreadyExists), errors.Is(err, errors.BadRequest):
		writeJSON(w, http.StatusBadRequest, detail{Detail: err.Error()})
	default:
		logger.Errorf("%s %s [%s]: %s", r.Method, r.URL.Path, requestID(r.Context()), errors.ErrorStack(err))
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "Internal Server Error"})
	}
}

func writeEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
