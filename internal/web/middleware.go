package web

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaunplee/superlists/internal/lists"
)

type ctxKey int

const identityKey ctxKey = iota

const sessionCookie = "superlists_session"

// identityFrom returns the authenticated identity threaded through the
// request context, or Anonymous.
func identityFrom(ctx context.Context) lists.Identity {
	if identity, ok := ctx.Value(identityKey).(lists.Identity); ok {
		return identity
	}
	return lists.Anonymous
}

// withIdentity resolves the session cookie to an identity and attaches it to
// the request context. Missing, expired, or revoked sessions yield Anonymous.
func (h *Handlers) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := lists.Anonymous
		if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			if user, err := h.accounts.SessionUser(r.Context(), cookie.Value); err == nil {
				identity = lists.Identity{Email: user.Email}
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// requestLogger emits one structured log line per request, with the trace id
// when tracing is active.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			traceID := ""
			if spanCtx := trace.SpanFromContext(r.Context()).SpanContext(); spanCtx.IsValid() {
				traceID = spanCtx.TraceID().String()
			}

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Str("trace_id", traceID).
				Msg("request")
		})
	}
}
