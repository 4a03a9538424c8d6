package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"chatsql_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

// decodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
	return false
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}
