package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/auth"
	"github.com/google/uuid"
)

// requestInfo travels in the request context so that inner middleware can
// report back to the access log.
type requestInfo struct {
	id     string
	userID int64
}

type requestInfoKey struct{}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestID returns the caller's X-Request-ID when it is a UUID, and a
// fresh one otherwise.
func requestID(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(common.RequestIDHeaderName)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// logging assigns a request id, echoes it back and writes one access log
// line per request.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := &requestInfo{id: requestID(r)}
		w.Header().Set(common.RequestIDHeaderName, info.id)
		ctx := context.WithValue(r.Context(), requestInfoKey{}, info)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		args := []any{
			"request_id", info.id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		}
		if info.userID != 0 {
			args = append(args, "user_id", info.userID)
		}
		s.logger.Info(ctx, "request", args...)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// authenticate admits only requests carrying a valid access token and puts
// the resolved user into the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.Authenticate(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.writeError(w, r, err, subjectUser)
			return
		}
		if info := requestInfoFrom(r.Context()); info != nil {
			info.userID = user.ID
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}
