package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// WriteMessage writes a {"message": ...} body.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// WriteError renders err as {"message": ...}. Store failures are logged and
// reported with their generic message only.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{Kind: KindStore, Message: "Internal Server Error", Err: err}
	}
	if appErr.Kind == KindStore {
		logrus.WithError(appErr.Err).
			WithField("path", r.URL.Path).
			WithField("method", r.Method).
			Error(appErr.Message)
	}
	WriteMessage(w, appErr.Status(), appErr.Message)
}
