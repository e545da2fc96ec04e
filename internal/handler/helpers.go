package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// householdIDParam reads the household scoping parameter from the query
// string.
func householdIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("household_id")
	if raw == "" {
		return 0, fmt.Errorf("household_id is required")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
