package convert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mailforge/internal/logging"
)

// Uploader persists image bytes and returns a permanent URL. Identical
// bytes must resolve to the same URL no matter how often they are
// submitted; the implementation owns deduplication.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Converter composes the pipeline stages into one request/response cycle.
type Converter struct {
	uploader Uploader
	logger   logging.Logger
}

// New creates a Converter backed by the given uploader.
func New(uploader Uploader, logger logging.Logger) *Converter {
	return &Converter{
		uploader: uploader,
		logger:   logging.OrNop(logger),
	}
}

// Convert runs the full pipeline over a bundle's entries and returns the
// rewritten document. It never returns partial HTML: any upload failure
// fails the whole conversion, though sibling uploads already in flight are
// allowed to finish so the backend cache still warms up.
func (c *Converter) Convert(ctx context.Context, entries []Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, ErrNoFilesUploaded
	}

	document, ok := SelectDocument(entries)
	if !ok {
		return nil, ErrNoDocumentFound
	}
	html := string(document.Data)
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%s: %w", document.Path, ErrEmptyDocument)
	}

	images, err := CollectImages(entries)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Selected %s, collected %d images", document.Path, len(images))

	urls := make(map[string]string, len(images))
	var mu sync.Mutex

	// Plain errgroup, no shared cancellation: siblings run to completion
	// even when one upload fails.
	g := new(errgroup.Group)
	for _, image := range images {
		image := image
		g.Go(func() error {
			url, err := c.uploader.Upload(ctx, image.Data)
			if err != nil {
				return fmt.Errorf("upload %s: %w", image.Path, err)
			}
			key := NormalizePath("images/" + Basename(image.Path))
			mu.Lock()
			urls[key] = url
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := RewriteHTML(html, urls)
	if err != nil {
		return nil, err
	}

	return &Result{HTML: out, ImageCount: len(images)}, nil
}
