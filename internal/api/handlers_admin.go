package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/caseblog/internal/importer"
	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/questionnaire"
	"github.com/dgallion1/caseblog/internal/toc"
	"github.com/dgallion1/caseblog/internal/warmer"
	"github.com/go-chi/chi/v5"
)

type previewResponse struct {
	HTML             string      `json:"html"`
	Headings         toc.Outline `json:"headings"`
	SplitIndex       int         `json:"split_index"`
	Blocks           int         `json:"blocks"`
	QuestionnaireURL string      `json:"questionnaire_url"`
	CategoryName     string      `json:"category_name"`
}

// handlePreview renders an uploaded draft the way it would appear in a post.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	isJSON := strings.EqualFold(filepath.Ext(filename), ".json")
	if !isJSON && !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	var doc portabletext.Document
	if isJSON {
		doc, err = portabletext.Unmarshal(data)
	} else {
		doc, err = importer.ImportFile(bytes.NewReader(data), filename)
	}
	if err != nil {
		jsonError(w, "could not read draft: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	body, err := s.site.Pages().RenderBody(doc, questionnaire.ParseCategories(r.FormValue("categories")))
	if err != nil {
		s.log.Error("preview render failed", "filename", filename, "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}

	headings := body.Headings
	if headings == nil {
		headings = toc.Outline{}
	}
	writeJSON(w, http.StatusOK, previewResponse{
		HTML:             string(body.HTML()),
		Headings:         headings,
		SplitIndex:       body.SplitIndex,
		Blocks:           len(doc),
		QuestionnaireURL: body.QuestionnaireURL,
		CategoryName:     body.CategoryName,
	})
}

// revalidateRequest accepts both {"slug":"x"} and a webhook projection with
// {"slug":{"current":"x"}}.
type revalidateRequest struct {
	Slug json.RawMessage `json:"slug"`
}

func (req revalidateRequest) slug() (string, error) {
	if len(req.Slug) == 0 || string(req.Slug) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(req.Slug, &s); err == nil {
		return s, nil
	}
	var obj portabletext.Slug
	if err := json.Unmarshal(req.Slug, &obj); err != nil {
		return "", errors.New("slug must be a string or {\"current\": string}")
	}
	return obj.Current, nil
}

func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	var req revalidateRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	slug, err := req.slug()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := warmer.NewJob(slug, "api")
	if err := s.warmer.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"kind":     snap.Kind,
		"slug":     snap.Slug,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/revalidate/%s/status", snap.ID),
	})
}

func (s *Server) handleRevalidateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.warmer.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleUpstreamStats(w http.ResponseWriter, r *http.Request) {
	if s.upstream == nil {
		jsonError(w, "upstream stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queries":     s.upstream.Snapshot(),
		"cache":       s.site.CacheStats(),
		"queue_depth": s.warmer.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
