package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"mailforge/internal/archive"
	"mailforge/internal/convert"
	"mailforge/internal/storage"
	"mailforge/internal/upload"
)

// archiveFieldName marks a multipart part as a ZIP bundle to expand.
const archiveFieldName = "archive"

func (s *Server) handleConvert(c *gin.Context) {
	started := time.Now()

	form, err := c.MultipartForm()
	if err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid multipart request: %w", err))
		s.metrics.observeConversion(time.Since(started), "rejected")
		return
	}

	entries, err := s.entriesFromForm(form)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		s.metrics.observeConversion(time.Since(started), "rejected")
		return
	}

	result, err := s.converter.Convert(c.Request.Context(), entries)
	if err != nil {
		s.respondError(c, statusForError(err), err)
		s.metrics.observeConversion(time.Since(started), "failed")
		return
	}

	s.metrics.observeConversion(time.Since(started), "ok")
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: result})
}

// entriesFromForm turns the multipart form into conversion entries,
// enforcing the per-file and aggregate size caps before any conversion
// work starts. A lone ZIP part (or one under the "archive" field) is
// expanded into its contained entries.
func (s *Server) entriesFromForm(form *multipart.Form) ([]convert.Entry, error) {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var entries []convert.Entry
	var total int64
	fileCount := 0
	for _, field := range fields {
		for _, header := range form.File[field] {
			fileCount++
			if header.Size > s.cfg.MaxFileBytes {
				return nil, fmt.Errorf("file %s exceeds the %d byte limit", header.Filename, s.cfg.MaxFileBytes)
			}
			total += header.Size
			if total > s.cfg.MaxTotalBytes {
				return nil, fmt.Errorf("upload exceeds the %d byte total limit", s.cfg.MaxTotalBytes)
			}
			data, err := readPart(header)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", header.Filename, err)
			}
			entries = append(entries, convert.Entry{
				Path:  header.Filename,
				Field: field,
				Data:  data,
			})
		}
	}

	if fileCount == 1 && (entries[0].Field == archiveFieldName || archive.IsArchive(entries[0].Path)) {
		expanded, err := archive.Expand(entries[0].Data, s.logger)
		if err != nil {
			return nil, err
		}
		return s.capEntries(expanded)
	}
	return entries, nil
}

// capEntries re-applies the size caps to archive contents, which bypass
// the multipart header checks.
func (s *Server) capEntries(entries []convert.Entry) ([]convert.Entry, error) {
	var total int64
	for _, entry := range entries {
		size := int64(len(entry.Data))
		if size > s.cfg.MaxFileBytes {
			return nil, fmt.Errorf("archive entry %s exceeds the %d byte limit", entry.Path, s.cfg.MaxFileBytes)
		}
		total += size
		if total > s.cfg.MaxTotalBytes {
			return nil, fmt.Errorf("archive exceeds the %d byte total limit", s.cfg.MaxTotalBytes)
		}
	}
	return entries, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("HTTP %d - %v", status, err)
	} else {
		s.logger.Warn("HTTP %d - %v", status, err)
	}
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

// statusForError maps pipeline errors onto HTTP status classes: bundle
// problems are the caller's to fix, credential problems are ours, and
// backend failures are upstream.
func statusForError(err error) int {
	switch {
	case errors.Is(err, convert.ErrNoFilesUploaded),
		errors.Is(err, convert.ErrNoDocumentFound),
		errors.Is(err, convert.ErrEmptyDocument),
		errors.Is(err, convert.ErrNoImagesFound),
		errors.Is(err, convert.ErrParseFailed),
		errors.Is(err, upload.ErrEmptyAsset):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrAuth):
		return http.StatusInternalServerError
	case errors.Is(err, storage.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
