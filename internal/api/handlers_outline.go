package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// handleOutline extracts the outline of an uploaded file synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ex, err := s.orchestrator.Extractor().ExtractBytes(r.Context(), filename, data)
	if err != nil {
		s.extractionError(w, filename, err)
		return
	}
	writeOutline(w, r, ex)
}

// handleOutlineBlocks classifies blocks posted as {"blocks": [...]}.
func (s *Server) handleOutlineBlocks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	blocks, err := parser.DecodeBlocks(r.Body)
	if err != nil {
		s.extractionError(w, "blocks", err)
		return
	}
	ex, err := s.orchestrator.Extractor().ExtractBlocks(r.Context(), blocks)
	if err != nil {
		s.extractionError(w, "blocks", err)
		return
	}
	writeOutline(w, r, ex)
}

// writeOutline writes the flat result, or the nested tree when the request
// asks for ?format=tree.
func writeOutline(w http.ResponseWriter, r *http.Request, ex *pipeline.Extraction) {
	if ex.Cached {
		w.Header().Set("X-Outline-Cache", "hit")
	}
	if r.URL.Query().Get("format") == "tree" {
		writeJSON(w, http.StatusOK, doctree.Build(ex.Result))
		return
	}
	writeJSON(w, http.StatusOK, ex.Result)
}

// readUpload reads the multipart "file" field. On failure it has already
// written the error response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

// extractionError maps extraction failures to status codes.
func (s *Server) extractionError(w http.ResponseWriter, filename string, err error) {
	var (
		invalid  *outline.InvalidBlockError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &invalid):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Warn("extraction failed", "file", filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
