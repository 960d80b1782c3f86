package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medrx_backend/internal/model"
)

// decodeJSON reads the request body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return model.ParseID(chi.URLParam(r, name))
}
