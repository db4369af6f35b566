// Package urls declares the process-wide root route table.
package urls

import (
	"fmt"
	"net/http"

	"github.com/okian/waypoint/internal/routing"
)

// Root table declarations. Paths carry no leading slash.
const (
	APIPrefix    = "api/users/"
	APINamespace = "api"
	HealthPath   = "health/"
	HealthName   = "health"
)

// Root builds the root table from its two collaborators: the users API
// router, mounted under the api namespace, and the health handler.
func Root(users routing.Resolver, health http.Handler) (*routing.Table, error) {
	t, err := routing.New(
		routing.Include(APIPrefix, users, APINamespace),
		routing.Path(HealthPath, health, HealthName),
	)
	if err != nil {
		return nil, fmt.Errorf("build root urls: %w", err)
	}
	return t, nil
}
