package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrSourceNotAllowed = errors.New("source not allowed")

// Policy restricts which sources a caller may load. Local paths must resolve
// inside Dir; http(s) URLs are refused unless AllowRemote is set.
type Policy struct {
	Dir         string
	AllowRemote bool
}

// Resolve returns the path or URL to pass to Load for src. Relative paths are
// taken relative to Dir.
func (p Policy) Resolve(src string) (string, error) {
	if isRemote(src) {
		if !p.AllowRemote {
			return "", fmt.Errorf("%w: remote sources are disabled", ErrSourceNotAllowed)
		}
		return src, nil
	}
	if p.Dir == "" {
		return "", fmt.Errorf("%w: no source directory configured", ErrSourceNotAllowed)
	}

	base, err := filepath.Abs(p.Dir)
	if err != nil {
		return "", fmt.Errorf("resolve source directory: %w", err)
	}
	target := src
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside the source directory", ErrSourceNotAllowed, src)
	}
	return target, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
