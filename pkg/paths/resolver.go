package paths

import (
	"path/filepath"
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
)

// AppsKeyPrefix marks a symbolic path key that fans out across every
// configured workspace application.
const AppsKeyPrefix = "@apps/"

// Resolver turns symbolic path keys into concrete paths. A key under
// AppsKeyPrefix yields one path per workspace app; any other key resolves
// to itself.
type Resolver struct {
	apps []string
}

// NewResolver creates a resolver over the configured workspace app
// directories, e.g. ["apps/web", "apps/admin"].
func NewResolver(apps []string) *Resolver {
	return &Resolver{apps: apps}
}

// Resolve implements types.PathResolver.
func (r *Resolver) Resolve(key string) ([]string, error) {
	if key == "" {
		return nil, errors.New(errors.ErrInvalidInput, "path key must not be empty")
	}

	if rel, ok := strings.CutPrefix(key, AppsKeyPrefix); ok {
		if len(r.apps) == 0 {
			return nil, errors.Newf(errors.ErrNotFound,
				"path key '%s' fans out over workspace apps, but none are configured", key)
		}
		paths := make([]string, len(r.apps))
		for i, app := range r.apps {
			paths[i] = filepath.Join(app, rel)
		}
		return paths, nil
	}

	return []string{key}, nil
}
