package assets

import (
	"path/filepath"
)

// DefaultExtensions are probed in order when no extensions are configured.
var DefaultExtensions = []string{".jpg", ".png", ".jpeg"}

// Resolver locates <Root>/<id><ext> for the first extension that exists.
type Resolver struct {
	Root       string
	Extensions []string
}

// NewResolver returns a resolver over root. Empty exts means DefaultExtensions.
func NewResolver(root string, exts []string) *Resolver {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Resolver{Root: root, Extensions: append([]string(nil), exts...)}
}

// Resolve returns the first existing regular file for id.
func (r *Resolver) Resolve(id string) (string, bool) {
	if id == "" || id != filepath.Base(id) {
		return "", false
	}
	for _, ext := range r.Extensions {
		candidate := filepath.Join(r.Root, id+ext)
		if isRegular(candidate) {
			return candidate, true
		}
	}
	return "", false
}
