// Package archive expands uploaded ZIP bundles into conversion entries.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"mailforge/internal/convert"
	"mailforge/internal/logging"
)

// IsArchive reports whether name looks like a ZIP bundle.
func IsArchive(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

// Expand decodes a ZIP payload into entries. An unreadable archive is an
// error; an unreadable entry inside it is logged and skipped, since any
// entry that matters to the conversion is re-validated downstream.
func Expand(data []byte, logger logging.Logger) ([]convert.Entry, error) {
	logger = logging.OrNop(logger)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	entries := make([]convert.Entry, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			entries = append(entries, convert.Entry{Path: file.Name, Dir: true})
			continue
		}
		rc, err := file.Open()
		if err != nil {
			logger.Warn("Skipping unreadable archive entry %s: %v", file.Name, err)
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Warn("Skipping unreadable archive entry %s: %v", file.Name, err)
			continue
		}
		entries = append(entries, convert.Entry{Path: file.Name, Data: content})
	}
	return entries, nil
}
