package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
)

type errorBody struct {
	OK        bool           `json:"ok"`
	ErrorKind appErrors.Kind `json:"error_kind"`
	Message   string         `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"ok": true, "data": data})
}

func writeError(w http.ResponseWriter, err error) {
	kind := appErrors.KindOf(err)
	writeJSON(w, appErrors.HTTPStatus(kind), errorBody{
		ErrorKind: kind,
		Message:   appErrors.Message(err),
	})
}

func idParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, appErrors.NewValidation(fmt.Sprintf("invalid %s %q", name, raw))
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("invalid body: " + err.Error())
	}
	return nil
}
