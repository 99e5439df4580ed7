// Package convert implements the Canva email bundle conversion pipeline:
// document selection, image collection, content-addressed upload fan-out,
// and HTML rewriting against the resulting URL map.
package convert

// Entry is one logical file from the user's uploaded bundle, either
// extracted from an archive or submitted directly as a multipart part.
type Entry struct {
	// Path is the original path, possibly backslash-separated. For direct
	// multipart parts this is the part's filename.
	Path string

	// Field is the multipart field name the entry arrived under, empty for
	// archive entries. A part tagged "images" counts as an image candidate
	// regardless of its path.
	Field string

	// Dir marks directory entries carried over from archive listings.
	Dir bool

	Data []byte
}

// Result is the final payload of a conversion: the rewritten document and
// the number of images that were collected and uploaded.
type Result struct {
	HTML       string `json:"html"`
	ImageCount int    `json:"imageCount"`
}
