// Package recovery turns handler panics into JSON 500 replies.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/journallm/journallm/internal/api/respond"
)

// Middleware recovers panics from downstream handlers. The panic is logged
// through the request logger when one is attached, so the entry carries the
// request id. http.ErrAbortHandler is re-raised for net/http to handle.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			l := zerolog.Ctx(r.Context())
			if l.GetLevel() == zerolog.Disabled {
				l = &log.Logger
			}
			l.Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			respond.WriteInternalError(w, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
