package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mvdbrink/pubtube/model"
)

func Index(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]string{"message": "pubtube index"})
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	raw, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintf(w, `{"error": %q}`, err.Error())
		return
	}
	w.Write(raw)
}

func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// statusFor maps the publish error taxonomy onto HTTP statuses: rejected
// authorization is 401, a violated local precondition 400, an impossible
// state transition 409 and everything else 500.
func statusFor(err error) int {
	switch model.KindOf(err) {
	case model.KindAuthorization:
		return http.StatusUnauthorized
	case model.KindPrecondition:
		return http.StatusBadRequest
	case model.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
