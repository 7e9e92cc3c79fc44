package api

import "net/http"

// userHeader identifies the acting user. Authentication is delegated to the
// gateway in front of this service; the engine only needs the identity.
const userHeader = "X-User-ID"

func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userHeader) == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + userHeader + " header"})
			return
		}
		next(w, r)
	}
}
