package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"devlink-social-network/middleware"
	"devlink-social-network/models"
	"devlink-social-network/store"
)

// Posts is the engagement store shared by the handlers, wired up in main.
var Posts *store.Store

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMsg writes the {"msg": ...} body used for domain-level outcomes.
func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Msg: msg})
}

// serverError is the opaque 500 response; the real cause goes to the log,
// never to the caller.
func serverError(w http.ResponseWriter) {
	http.Error(w, "Server Error", http.StatusInternalServerError)
}

// userIDFrom pulls the authenticated user id placed in the context by
// AuthMiddleware.
func userIDFrom(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	return userID, ok && userID != 0
}

// pathID parses a numeric id out of a path segment.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
