package vfs

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath maps every supported path spelling onto the canonical form
// used as the overlay key. Rules:
//
//   - monorepo-absolute paths (first segment is a known package-root
//     segment) stay as-is, unless they fall inside the context root, in
//     which case they are rewritten relative to it;
//   - OS-absolute paths are rewritten relative to the context root;
//   - anything else is treated as already relative to the context root.
//
// A path equal to the context root itself normalizes to ".".
func (v *VFS) NormalizePath(p string) string {
	p = path.Clean(filepath.ToSlash(p))

	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		// An absolute spelling of a monorepo file must land on the same
		// overlay key as its monorepo-absolute spelling.
		if rel, err := filepath.Rel(v.projectRoot, filepath.FromSlash(p)); err == nil {
			relSlash := path.Clean(filepath.ToSlash(rel))
			if v.isPackagePrefixed(relSlash) {
				return v.stripContextRoot(relSlash)
			}
		}

		absRoot := filepath.ToSlash(filepath.Join(v.projectRoot, v.contextRoot))
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return p
		}
		return path.Clean(filepath.ToSlash(rel))
	}

	if v.isPackagePrefixed(p) {
		return v.stripContextRoot(p)
	}

	return p
}

// stripContextRoot rewrites a package-prefixed path relative to the
// context root when it falls inside it; outside paths stay as-is.
func (v *VFS) stripContextRoot(p string) string {
	if v.contextRoot != "" {
		ctx := path.Clean(filepath.ToSlash(v.contextRoot))
		if p == ctx {
			return "."
		}
		if strings.HasPrefix(p, ctx+"/") {
			return p[len(ctx)+1:]
		}
	}
	return p
}

// isPackagePrefixed reports whether the first path segment names a known
// top-level package root (e.g. "packages" or "apps").
func (v *VFS) isPackagePrefixed(p string) bool {
	first, _, _ := strings.Cut(p, "/")
	for _, root := range v.packageRoots {
		if first == root {
			return true
		}
	}
	return false
}

// ResolveAbsolute maps a path (in any supported spelling) to its absolute
// location on disk. Monorepo-absolute paths resolve against the project
// root; everything else resolves against the context root.
func (v *VFS) ResolveAbsolute(p string) string {
	n := v.NormalizePath(p)
	if v.isPackagePrefixed(n) {
		return filepath.Join(v.projectRoot, filepath.FromSlash(n))
	}
	return filepath.Join(v.projectRoot, filepath.FromSlash(v.contextRoot), filepath.FromSlash(n))
}
