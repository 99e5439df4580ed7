package convert

import "strings"

// SelectDocument picks the single HTML entry to treat as the email body.
//
// Canva's export naming is not guaranteed, so selection is a fixed
// tie-break heuristic: a path containing "index.html" wins, then a path
// containing "email.html", then the first entry whose final segment ends
// in ".html". Matching is case-insensitive and the first two rules accept
// a substring match anywhere in the path, not just the basename.
func SelectDocument(entries []Entry) (Entry, bool) {
	for _, rule := range []func(Entry) bool{
		func(e Entry) bool { return strings.Contains(lowerPath(e), "index.html") },
		func(e Entry) bool { return strings.Contains(lowerPath(e), "email.html") },
		func(e Entry) bool { return strings.HasSuffix(Basename(lowerPath(e)), ".html") },
	} {
		for _, entry := range entries {
			if entry.Dir {
				continue
			}
			if rule(entry) {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

func lowerPath(e Entry) string {
	return strings.ToLower(strings.ReplaceAll(e.Path, "\\", "/"))
}
