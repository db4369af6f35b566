package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds client-supplied ids; longer ones are replaced.
const maxRequestIDLen = 128

// requestInfo is shared by the middleware chain for one request. The
// dispatcher fills view; outer middleware read it after the call returns.
type requestInfo struct {
	id   string
	view string
}

type requestInfoKey struct{}

// RequestID reuses the caller's X-Request-Id or generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestInfoKey{}, &requestInfo{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts non-empty printable ASCII up to maxRequestIDLen.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}

// RequestIDFromContext returns the request id, or "unknown" outside RequestID.
func RequestIDFromContext(ctx context.Context) string {
	if info := infoFrom(ctx); info != nil && info.id != "" {
		return info.id
	}
	return "unknown"
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

func setView(ctx context.Context, view string) {
	if info := infoFrom(ctx); info != nil {
		info.view = view
	}
}

func viewFrom(ctx context.Context) string {
	if info := infoFrom(ctx); info != nil && info.view != "" {
		return info.view
	}
	return "unknown"
}
