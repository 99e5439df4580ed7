package convert

import "strings"

// NormalizePath converts a file path or URL reference into the canonical
// form used for matching HTML references against uploaded images: forward
// slashes, lowercase, at most one leading "./" or "../" stripped, and
// everything before an interior "images/" segment truncated.
//
// Both sides of every comparison must pass through this function, so that
// an <img src> and the path an image was uploaded under can be matched by
// plain string equality. It accepts any string, including empty, and is
// deterministic.
func NormalizePath(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	if strings.HasPrefix(p, "./") {
		p = p[len("./"):]
	} else if strings.HasPrefix(p, "../") {
		p = p[len("../"):]
	}
	if idx := strings.Index(p, "images/"); idx > 0 {
		p = p[idx:]
	}
	return p
}

// Basename returns the final path segment, splitting on either separator
// so backslash-separated archive entries resolve the same as forward-slash
// ones. Used to rebuild the canonical "images/<name>" upload key
// regardless of how the bundle nested its images directory.
func Basename(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
