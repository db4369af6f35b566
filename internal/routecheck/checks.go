package routecheck

import "net/http"

// DefaultChecks covers both root entries, the not-found path and, when
// appendSlash is set, the trailing-slash redirects.
func DefaultChecks(appendSlash bool) []Check {
	checks := []Check{
		{Name: "health", Method: http.MethodGet, Path: "/health/", WantStatus: http.StatusOK},
		{Name: "health method", Method: http.MethodPost, Path: "/health/", WantStatus: http.StatusMethodNotAllowed},
		{Name: "api root", Method: http.MethodGet, Path: "/api/users/", WantStatus: http.StatusOK},
		{Name: "not found", Method: http.MethodGet, Path: missingPath, WantStatus: http.StatusNotFound},
	}
	if appendSlash {
		return append(checks,
			Check{Name: "health slash", Method: http.MethodGet, Path: "/health", WantStatus: http.StatusMovedPermanently, WantLocation: "/health/"},
			Check{Name: "api slash", Method: http.MethodPost, Path: "/api/users", WantStatus: http.StatusPermanentRedirect, WantLocation: "/api/users/"},
		)
	}
	return append(checks,
		Check{Name: "health no slash", Method: http.MethodGet, Path: "/health", WantStatus: http.StatusNotFound},
	)
}
