package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
)

// adminOnly guards a back-office endpoint behind the configured admin key.
// Keys are compared through their SHA-256 digests with a constant-time
// comparison so neither length nor prefix leaks through timing.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	expected := sha256.Sum256([]byte(h.cfg.AdminKey))

	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.AdminKey == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		got := sha256.Sum256([]byte(r.Header.Get("X-Admin-Key")))
		if !hmac.Equal(got[:], expected[:]) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next(w, r)
	}
}
