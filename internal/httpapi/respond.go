package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeHeader  = "Content-Type"
	contentTypeOptions = "X-Content-Type-Options"
)

var (
	jsonContentType           = []string{"application/json; charset=utf-8"}
	nosniffContentTypeOptions = []string{"nosniff"}
)

// apiError is the JSON body of every non-2xx response.
type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e apiError) Error() string { return e.Message }

func addHeaderIfNotSet(w http.ResponseWriter, key string, value []string) {
	header := w.Header()
	if val := header[key]; len(val) == 0 {
		header[key] = value
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	addHeaderIfNotSet(w, contentTypeHeader, jsonContentType)
	addHeaderIfNotSet(w, contentTypeOptions, nosniffContentTypeOptions)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Status: status, Message: msg})
}

// decodeJSON reads a small JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apiError{Status: http.StatusBadRequest, Message: "invalid JSON body"}
	}
	return nil
}
