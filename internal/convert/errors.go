package convert

import (
	"errors"
	"fmt"
)

// Domain error sentinels for the conversion pipeline. These enable
// consistent HTTP status mapping via errors.Is().

var (
	// ErrNoFilesUploaded indicates the request carried no files at all.
	ErrNoFilesUploaded = errors.New("no files uploaded")

	// ErrNoDocumentFound indicates no HTML candidate exists in the bundle.
	ErrNoDocumentFound = errors.New("no html document found")

	// ErrEmptyDocument indicates the selected document has no content.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrNoImagesFound indicates the bundle has no eligible image entries.
	ErrNoImagesFound = errors.New("no images found")

	// ErrParseFailed indicates the document could not be parsed at all.
	ErrParseFailed = errors.New("html parse failed")
)

// ParseError wraps ErrParseFailed with the underlying parser failure.
func ParseError(err error) error {
	return fmt.Errorf("%w: %v", ErrParseFailed, err)
}
